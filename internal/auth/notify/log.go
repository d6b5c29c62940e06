package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes codes to the log instead of sending mail. Used in dev
// deployments without an SMTP relay.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	n.Logger.Info("verification code issued", "email", email, "code", code)
	return nil
}

func (n *LogNotifier) SendPasswordResetCode(ctx context.Context, email, code string) error {
	n.Logger.Info("password reset code issued", "email", email, "code", code)
	return nil
}
