package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTPDigits is the length of generated one-time codes.
const OTPDigits = 4

// GenerateOTP returns a random numeric one-time code of OTPDigits digits,
// zero-padded. Codes are short-lived and single-use so four digits is
// enough when paired with rate limiting on the verify endpoints.
func GenerateOTP() (string, error) {
	limit := big.NewInt(1)
	for range OTPDigits {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPDigits, n), nil
}
