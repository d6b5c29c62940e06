package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/showreelhq/showreel/internal/auth/domain"
	"github.com/showreelhq/showreel/internal/auth/notify"
	"github.com/showreelhq/showreel/internal/auth/store"
	"github.com/showreelhq/showreel/pkg/cryptox"
	"github.com/showreelhq/showreel/pkg/slogx"
)

var (
	ErrNoCodePending   = errors.New("no_code_pending")
	ErrCodeMismatch    = errors.New("code_mismatch")
	ErrCodeExpired     = errors.New("code_expired")
	ErrAlreadyVerified = errors.New("email_already_verified")
	ErrDeliveryFailed  = errors.New("delivery_failed")
)

// DefaultOTPTTL is how long issued codes stay valid.
const DefaultOTPTTL = 2 * time.Minute

// VerificationService issues and checks the one-time codes for email
// verification and password reset. Each kind has its own slot on the user;
// issuing a new code overwrites whatever was there.
type VerificationService struct {
	Store    store.Store
	Notifier notify.Notifier
	OTPTTL   time.Duration
}

func (s *VerificationService) ttl() time.Duration {
	if s.OTPTTL > 0 {
		return s.OTPTTL
	}
	return DefaultOTPTTL
}

// IssueVerification mints a verification code for the user, persists it
// and mails it. The code is stored before the send, so a mail failure
// leaves a resendable code behind ("fire and trust"); the failure still
// surfaces as ErrDeliveryFailed.
func (s *VerificationService) IssueVerification(ctx context.Context, user domain.User) error {
	code, err := cryptox.GenerateOTP()
	if err != nil {
		return err
	}

	otp := &domain.OTP{Code: code, ExpiresAt: time.Now().UTC().Add(s.ttl())}
	if err := s.Store.Users().SetVerifyOTP(ctx, user.ID, otp); err != nil {
		return err
	}

	if err := s.Notifier.SendVerificationCode(ctx, user.Email, code); err != nil {
		slogx.FromContext(ctx).Error("verification code delivery failed",
			"user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}

// ResendVerification re-issues the verification code for an unverified
// account.
func (s *VerificationService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}
	return s.IssueVerification(ctx, user)
}

// VerifyEmail checks the presented code against the user's verification
// slot and, on success, marks the address verified and clears the slot.
func (s *VerificationService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}
	if err := checkOTP(user.VerifyOTP, code); err != nil {
		return err
	}
	return s.Store.Users().MarkEmailVerified(ctx, user.ID)
}

// ForgotPassword issues a password-reset code. An unknown email returns
// nil all the same: the caller's acknowledgment must not reveal whether
// the account exists.
func (s *VerificationService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	code, err := cryptox.GenerateOTP()
	if err != nil {
		return err
	}
	otp := &domain.OTP{Code: code, ExpiresAt: time.Now().UTC().Add(s.ttl())}
	if err := s.Store.Users().SetResetOTP(ctx, user.ID, otp); err != nil {
		return err
	}

	if err := s.Notifier.SendPasswordResetCode(ctx, user.Email, code); err != nil {
		slogx.FromContext(ctx).Error("reset code delivery failed",
			"user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}

// VerifyResetCode checks a reset code without consuming it, so a client
// can validate the code before prompting for the new password.
func (s *VerificationService) VerifyResetCode(ctx context.Context, email, code string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return checkOTP(user.ResetOTP, code)
}

// ResetPassword validates the reset code, installs the new password hash,
// clears the reset slot and revokes every session for the user. A changed
// password must log out every device, including the one that changed it.
func (s *VerificationService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := checkOTP(user.ResetOTP, code); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.Store.Users().SetResetOTP(ctx, user.ID, nil); err != nil {
		return err
	}
	return s.Store.Sessions().DeleteByUser(ctx, user.ID)
}

// checkOTP applies the shared slot checks: a code must be pending, match
// exactly and be within its expiry. Mismatch is reported before expiry so
// a superseded code fails as a mismatch.
func checkOTP(otp *domain.OTP, code string) error {
	if otp == nil {
		return ErrNoCodePending
	}
	if otp.Code != code {
		return ErrCodeMismatch
	}
	if otp.Expired(time.Now().UTC()) {
		return ErrCodeExpired
	}
	return nil
}
