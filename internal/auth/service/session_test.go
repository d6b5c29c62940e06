package service

import (
	"testing"

	"github.com/showreelhq/showreel/internal/auth/domain"
	"github.com/showreelhq/showreel/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestRegisterIssueTokensPolicy(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)

	res := env.register(t, "alice@example.com", "hunter22")
	require.NotNil(t, res.Tokens)
	require.NotEmpty(t, res.Tokens.AccessToken)
	require.NotEmpty(t, res.Tokens.RefreshToken)
	require.False(t, res.PendingVerification)
	require.Equal(t, "alice@example.com", res.User.Email)

	// No verification mail goes out under this policy.
	require.Zero(t, env.notifier.sentCount())

	login, err := env.sessions.Login(t.Context(), "alice@example.com", "hunter22", ClientMeta{})
	require.NoError(t, err)
	require.NotEmpty(t, login.Tokens.AccessToken)
}

func TestRegisterVerifyEmailPolicy(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterVerifyEmail, true)

	res := env.register(t, "bob@example.com", "hunter22")
	require.Nil(t, res.Tokens)
	require.True(t, res.PendingVerification)

	_, err := env.sessions.Login(t.Context(), "bob@example.com", "hunter22", ClientMeta{})
	require.ErrorIs(t, err, ErrEmailNotVerified)

	code := env.notifier.lastVerifyCode("bob@example.com")
	require.Len(t, code, 4)
	require.NoError(t, env.verification.VerifyEmail(t.Context(), "bob@example.com", code))

	login, err := env.sessions.Login(t.Context(), "bob@example.com", "hunter22", ClientMeta{})
	require.NoError(t, err)
	require.True(t, login.User.Verified)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	env.register(t, "carol@example.com", "hunter22")

	_, err := env.sessions.Register(t.Context(), RegisterParams{
		Username: "carol2",
		Email:    "carol@example.com",
		Password: "other-pass",
	}, ClientMeta{})
	require.ErrorIs(t, err, ErrEmailTaken)

	// Email comparison ignores case.
	_, err = env.sessions.Register(t.Context(), RegisterParams{
		Username: "carol3",
		Email:    "CAROL@example.com",
		Password: "other-pass",
	}, ClientMeta{})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterPreHashedPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)

	hash, err := cryptox.HashPassword("hunter22")
	require.NoError(t, err)

	// A client that submits an already-hashed credential must not get it
	// hashed a second time.
	_, err = env.sessions.Register(t.Context(), RegisterParams{
		Username: "dave",
		Email:    "dave@example.com",
		Password: hash,
	}, ClientMeta{})
	require.NoError(t, err)

	_, err = env.sessions.Login(t.Context(), "dave@example.com", "hunter22", ClientMeta{})
	require.NoError(t, err)
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	env.register(t, "erin@example.com", "hunter22")

	_, err := env.sessions.Login(t.Context(), "nobody@example.com", "hunter22", ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.sessions.Login(t.Context(), "erin@example.com", "wrong", ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	env.register(t, "frank@example.com", "hunter22")

	_, err := env.sessions.Login(t.Context(), "FRANK@Example.COM", "hunter22", ClientMeta{})
	require.NoError(t, err)
}

func TestRefreshRotatesPair(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	res := env.register(t, "gina@example.com", "hunter22")

	pair, err := env.sessions.Refresh(t.Context(), res.Tokens.RefreshToken, ClientMeta{})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEqual(t, res.Tokens.RefreshToken, pair.RefreshToken)

	// Exactly one live session before and after rotation.
	infos, err := env.sessions.ActiveSessions(t.Context(), res.User.ID)
	require.NoError(t, err)
	require.Len(t, infos, 1)
}

func TestRefreshReuseRevokesEverything(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	res := env.register(t, "hank@example.com", "hunter22")

	// Second device.
	other, err := env.sessions.Login(t.Context(), "hank@example.com", "hunter22", ClientMeta{DeviceInfo: "tablet"})
	require.NoError(t, err)

	fresh, err := env.sessions.Refresh(t.Context(), res.Tokens.RefreshToken, ClientMeta{})
	require.NoError(t, err)

	// Replaying the consumed token is treated as theft: every session for
	// the user is revoked, the freshly rotated one included.
	_, err = env.sessions.Refresh(t.Context(), res.Tokens.RefreshToken, ClientMeta{})
	require.ErrorIs(t, err, ErrReuseDetected)

	infos, err := env.sessions.ActiveSessions(t.Context(), res.User.ID)
	require.NoError(t, err)
	require.Empty(t, infos)

	_, err = env.sessions.Refresh(t.Context(), fresh.RefreshToken, ClientMeta{})
	require.ErrorIs(t, err, ErrReuseDetected)
	_, err = env.sessions.Refresh(t.Context(), other.Tokens.RefreshToken, ClientMeta{})
	require.ErrorIs(t, err, ErrReuseDetected)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)

	_, err := env.sessions.Refresh(t.Context(), "not-a-jwt", ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	res := env.register(t, "iris@example.com", "hunter22")

	// The two token classes are signed with different secrets and must
	// never be interchangeable.
	_, err := env.sessions.Refresh(t.Context(), res.Tokens.AccessToken, ClientMeta{})
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshInheritsClientMeta(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	login, err := env.sessions.Login(t.Context(), mustRegister(t, env, "judy@example.com"), "hunter22",
		ClientMeta{DeviceInfo: "Firefox on Linux", IPAddress: "203.0.113.9"})
	require.NoError(t, err)

	// A refresh without client details keeps the originals on the record.
	_, err = env.sessions.Refresh(t.Context(), login.Tokens.RefreshToken, ClientMeta{})
	require.NoError(t, err)

	infos, err := env.sessions.ActiveSessions(t.Context(), login.User.ID)
	require.NoError(t, err)
	require.Len(t, infos, 2) // register session + login session, both live
	require.Equal(t, "Firefox on Linux", infos[0].DeviceInfo)
	require.Equal(t, "203.0.113.9", infos[0].IPAddress)
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	res := env.register(t, "kate@example.com", "hunter22")

	require.NoError(t, env.sessions.Logout(t.Context(), res.Tokens.RefreshToken))
	require.NoError(t, env.sessions.Logout(t.Context(), res.Tokens.RefreshToken))
	require.NoError(t, env.sessions.Logout(t.Context(), "token-that-never-existed"))

	infos, err := env.sessions.ActiveSessions(t.Context(), res.User.ID)
	require.NoError(t, err)
	require.Empty(t, infos)
}

func TestRevokeAllSessions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	res := env.register(t, "liam@example.com", "hunter22")
	_, err := env.sessions.Login(t.Context(), "liam@example.com", "hunter22", ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, env.sessions.RevokeAll(t.Context(), res.User.ID))

	infos, err := env.sessions.ActiveSessions(t.Context(), res.User.ID)
	require.NoError(t, err)
	require.Empty(t, infos)

	_, err = env.sessions.Refresh(t.Context(), res.Tokens.RefreshToken, ClientMeta{})
	require.ErrorIs(t, err, ErrReuseDetected)
}

func TestActiveSessionsNewestFirst(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	res := env.register(t, "mona@example.com", "hunter22")

	_, err := env.sessions.Login(t.Context(), "mona@example.com", "hunter22", ClientMeta{DeviceInfo: "second"})
	require.NoError(t, err)

	infos, err := env.sessions.ActiveSessions(t.Context(), res.User.ID)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "second", infos[0].DeviceInfo)
	require.False(t, infos[0].CreatedAt.Before(infos[1].CreatedAt))
}

func TestAccessTokenCarriesIdentity(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, RegisterIssueTokens, false)
	res := env.register(t, "nina@example.com", "hunter22")

	claims, err := env.sessions.Codec.VerifyAccess(res.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.Subject)
	require.Equal(t, "nina@example.com", claims.Email)
	require.Equal(t, string(domain.RoleUser), claims.Role)
}

// mustRegister registers a throwaway account and returns the email so a
// test can exercise the login path explicitly.
func mustRegister(t *testing.T, env *testEnv, email string) string {
	t.Helper()
	env.register(t, email, "hunter22")
	return email
}
