package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig carries the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // e.g. "Showreel <no-reply@showreel.app>"
}

// SMTPNotifier sends the OTP mails through a plain SMTP relay with AUTH
// PLAIN over STARTTLS-capable port 587 relays.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(
		"Your verification code is: %s\n\n"+
			"This code will expire in 2 minutes.\n\n"+
			"If you didn't create an account, please ignore this email.",
		code,
	)
	return n.send(ctx, email, "Email Verification Code - Showreel", body)
}

func (n *SMTPNotifier) SendPasswordResetCode(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(
		"Your password reset code is: %s\n\n"+
			"This code will expire in 2 minutes.\n\n"+
			"If you didn't request a password reset, please ignore this email.",
		code,
	)
	return n.send(ctx, email, "Password Reset Code - Showreel", body)
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}
