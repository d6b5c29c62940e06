// Package notify delivers one-time codes to users. The services only see
// the Notifier interface; SMTP and log-only implementations live here.
package notify

import (
	"context"
	"errors"
)

// ErrDelivery wraps any transport failure. The caller decides whether a
// failed delivery is fatal; the issued code stays valid either way.
var ErrDelivery = errors.New("notify: delivery failed")

type Notifier interface {
	// SendVerificationCode emails an email-verification code.
	SendVerificationCode(ctx context.Context, email, code string) error

	// SendPasswordResetCode emails a password-reset code.
	SendPasswordResetCode(ctx context.Context, email, code string) error
}
