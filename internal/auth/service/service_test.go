package service

import (
	"context"
	"sync"
	"testing"

	"github.com/showreelhq/showreel/internal/auth/store"
	"github.com/showreelhq/showreel/internal/auth/store/drivers/sqlite"
	"github.com/showreelhq/showreel/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// captureNotifier records issued codes instead of sending mail. When fail
// is set it simulates a broken relay.
type captureNotifier struct {
	mu          sync.Mutex
	verifyCodes map[string]string
	resetCodes  map[string]string
	fail        bool
	sent        int
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{
		verifyCodes: map[string]string{},
		resetCodes:  map[string]string{},
	}
}

func (n *captureNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return context.DeadlineExceeded
	}
	n.verifyCodes[email] = code
	n.sent++
	return nil
}

func (n *captureNotifier) SendPasswordResetCode(ctx context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return context.DeadlineExceeded
	}
	n.resetCodes[email] = code
	n.sent++
	return nil
}

func (n *captureNotifier) lastVerifyCode(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.verifyCodes[email]
}

func (n *captureNotifier) lastResetCode(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resetCodes[email]
}

func (n *captureNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}

type testEnv struct {
	store        store.Store
	notifier     *captureNotifier
	sessions     *SessionService
	verification *VerificationService
}

func newTestEnv(t *testing.T, policy RegistrationPolicy, requireVerified bool) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.New("showreel-auth-test", "access-secret", "refresh-secret", "15m", "7d")
	require.NoError(t, err)

	notifier := newCaptureNotifier()
	verification := &VerificationService{Store: st, Notifier: notifier}
	sessions := &SessionService{
		Store:                st,
		Codec:                codec,
		Verification:         verification,
		Policy:               policy,
		RequireVerifiedEmail: requireVerified,
	}

	return &testEnv{
		store:        st,
		notifier:     notifier,
		sessions:     sessions,
		verification: verification,
	}
}

func (e *testEnv) register(t *testing.T, email, password string) RegisterResult {
	t.Helper()

	res, err := e.sessions.Register(t.Context(), RegisterParams{
		Username: "tester",
		Email:    email,
		Password: password,
	}, ClientMeta{})
	require.NoError(t, err)
	return res
}
