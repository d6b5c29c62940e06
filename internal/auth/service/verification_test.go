package service

import (
	"testing"
	"time"

	"github.com/showreelhq/showreel/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestVerifyEmailFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)
	res := env.register(t, "oona@example.com", "hunter22")

	code := env.notifier.lastVerifyCode("oona@example.com")
	require.Len(t, code, 4)

	require.NoError(t, env.verification.VerifyEmail(t.Context(), "oona@example.com", code))

	user, err := env.store.Users().GetUserByID(t.Context(), res.User.ID)
	require.NoError(t, err)
	require.True(t, user.Verified)
	require.Nil(t, user.VerifyOTP)

	// A second attempt finds nothing left to verify.
	err = env.verification.VerifyEmail(t.Context(), "oona@example.com", code)
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)
	env.register(t, "pete@example.com", "hunter22")

	code := env.notifier.lastVerifyCode("pete@example.com")
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	err := env.verification.VerifyEmail(t.Context(), "pete@example.com", wrong)
	require.ErrorIs(t, err, ErrCodeMismatch)

	// The slot survives a failed attempt; the real code still works.
	require.NoError(t, env.verification.VerifyEmail(t.Context(), "pete@example.com", code))
}

func TestVerifyEmailUnknownUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)

	err := env.verification.VerifyEmail(t.Context(), "ghost@example.com", "1234")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyEmailNoCodePending(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)
	res := env.register(t, "quin@example.com", "hunter22")

	require.NoError(t, env.store.Users().SetVerifyOTP(t.Context(), res.User.ID, nil))

	err := env.verification.VerifyEmail(t.Context(), "quin@example.com", "1234")
	require.ErrorIs(t, err, ErrNoCodePending)
}

func TestResendInvalidatesPreviousCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)
	env.register(t, "rosa@example.com", "hunter22")

	first := env.notifier.lastVerifyCode("rosa@example.com")
	require.NoError(t, env.verification.ResendVerification(t.Context(), "rosa@example.com"))
	second := env.notifier.lastVerifyCode("rosa@example.com")

	if first != second {
		err := env.verification.VerifyEmail(t.Context(), "rosa@example.com", first)
		require.ErrorIs(t, err, ErrCodeMismatch)
	}
	require.NoError(t, env.verification.VerifyEmail(t.Context(), "rosa@example.com", second))
}

func TestResendAfterVerified(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)
	env.register(t, "sven@example.com", "hunter22")

	code := env.notifier.lastVerifyCode("sven@example.com")
	require.NoError(t, env.verification.VerifyEmail(t.Context(), "sven@example.com", code))

	err := env.verification.ResendVerification(t.Context(), "sven@example.com")
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestExpiredCodeRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)
	res := env.register(t, "tara@example.com", "hunter22")

	code := env.notifier.lastVerifyCode("tara@example.com")

	// Backdate the slot past its window; the matching code is now dead.
	stale := &domain.OTP{Code: code, ExpiresAt: time.Now().UTC().Add(-time.Second)}
	require.NoError(t, env.store.Users().SetVerifyOTP(t.Context(), res.User.ID, stale))

	err := env.verification.VerifyEmail(t.Context(), "tara@example.com", code)
	require.ErrorIs(t, err, ErrCodeExpired)
}

func TestMismatchReportedBeforeExpiry(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)
	res := env.register(t, "ursa@example.com", "hunter22")

	stale := &domain.OTP{Code: "1234", ExpiresAt: time.Now().UTC().Add(-time.Second)}
	require.NoError(t, env.store.Users().SetVerifyOTP(t.Context(), res.User.ID, stale))

	// Wrong code on an expired slot reports the mismatch, not the expiry.
	err := env.verification.VerifyEmail(t.Context(), "ursa@example.com", "9999")
	require.ErrorIs(t, err, ErrCodeMismatch)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)

	// Unknown addresses succeed quietly so the endpoint cannot be used to
	// enumerate accounts.
	require.NoError(t, env.verification.ForgotPassword(t.Context(), "ghost@example.com"))
	require.Zero(t, env.notifier.sentCount())
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	res := env.register(t, "vera@example.com", "hunter22")

	require.NoError(t, env.verification.ForgotPassword(t.Context(), "vera@example.com"))
	code := env.notifier.lastResetCode("vera@example.com")
	require.Len(t, code, 4)

	// The pre-check does not consume the slot.
	require.NoError(t, env.verification.VerifyResetCode(t.Context(), "vera@example.com", code))
	require.NoError(t, env.verification.VerifyResetCode(t.Context(), "vera@example.com", code))

	require.NoError(t, env.verification.ResetPassword(t.Context(), "vera@example.com", code, "n3w-pass"))

	// The slot is cleared, every session is revoked and only the new
	// password logs in.
	err := env.verification.VerifyResetCode(t.Context(), "vera@example.com", code)
	require.ErrorIs(t, err, ErrNoCodePending)

	infos, err := env.sessions.ActiveSessions(t.Context(), res.User.ID)
	require.NoError(t, err)
	require.Empty(t, infos)

	_, err = env.sessions.Refresh(t.Context(), res.Tokens.RefreshToken, ClientMeta{})
	require.ErrorIs(t, err, ErrReuseDetected)

	_, err = env.sessions.Login(t.Context(), "vera@example.com", "hunter22", ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.sessions.Login(t.Context(), "vera@example.com", "n3w-pass", ClientMeta{})
	require.NoError(t, err)
}

func TestResetPasswordWrongCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	env.register(t, "wade@example.com", "hunter22")

	require.NoError(t, env.verification.ForgotPassword(t.Context(), "wade@example.com"))
	code := env.notifier.lastResetCode("wade@example.com")
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	err := env.verification.ResetPassword(t.Context(), "wade@example.com", wrong, "n3w-pass")
	require.ErrorIs(t, err, ErrCodeMismatch)

	// The old password still works after the failed attempt.
	_, err = env.sessions.Login(t.Context(), "wade@example.com", "hunter22", ClientMeta{})
	require.NoError(t, err)
}

func TestResetSlotIndependentOfVerifySlot(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)
	env.register(t, "xena@example.com", "hunter22")

	require.NoError(t, env.verification.ForgotPassword(t.Context(), "xena@example.com"))

	verifyCode := env.notifier.lastVerifyCode("xena@example.com")
	resetCode := env.notifier.lastResetCode("xena@example.com")

	// A reset code cannot verify the address, whether or not the two
	// slots happen to collide.
	if verifyCode != resetCode {
		err := env.verification.VerifyEmail(t.Context(), "xena@example.com", resetCode)
		require.ErrorIs(t, err, ErrCodeMismatch)
	}
	require.NoError(t, env.verification.VerifyEmail(t.Context(), "xena@example.com", verifyCode))

	// Issuing the verification code did not disturb the reset slot.
	require.NoError(t, env.verification.VerifyResetCode(t.Context(), "xena@example.com", resetCode))
}

func TestDeliveryFailureKeepsCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	res := env.register(t, "yuri@example.com", "hunter22")

	env.notifier.fail = true
	err := env.verification.ForgotPassword(t.Context(), "yuri@example.com")
	require.ErrorIs(t, err, ErrDeliveryFailed)

	// The code was persisted before the send was attempted, so the user
	// can still complete the flow once they get it through another resend.
	user, err := env.store.Users().GetUserByID(t.Context(), res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.ResetOTP)
	require.NoError(t,
		env.verification.ResetPassword(t.Context(), "yuri@example.com", user.ResetOTP.Code, "n3w-pass"))
}
