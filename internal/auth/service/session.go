package service

import (
	"context"
	"errors"
	"time"

	"github.com/showreelhq/showreel/internal/auth/domain"
	"github.com/showreelhq/showreel/internal/auth/store"
	"github.com/showreelhq/showreel/pkg/cryptox"
	"github.com/showreelhq/showreel/pkg/idx"
	"github.com/showreelhq/showreel/pkg/jwtx"
	"github.com/showreelhq/showreel/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailNotVerified   = errors.New("email_not_verified")
	ErrEmailTaken         = errors.New("email_already_registered")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrReuseDetected      = errors.New("refresh_token_reuse_detected")
	ErrUserNotFound       = errors.New("user_not_found")
)

// RegistrationPolicy selects what Register does after creating the user.
// The two behaviors are incompatible (tokens vs. a pending-verification
// acknowledgment), so the deployment picks one explicitly.
type RegistrationPolicy string

const (
	// RegisterIssueTokens creates the user verified and logs them in
	// immediately. Deployments using this policy run without email
	// verification.
	RegisterIssueTokens RegistrationPolicy = "issue_tokens"

	// RegisterVerifyEmail creates the user unverified, sends a
	// verification code and returns no tokens.
	RegisterVerifyEmail RegistrationPolicy = "verify_email"
)

// ClientMeta is the per-request device metadata bound to a session.
type ClientMeta struct {
	DeviceInfo string
	IPAddress  string
}

// SessionService orchestrates login, registration, refresh rotation,
// logout and session listing.
type SessionService struct {
	Store        store.Store
	Codec        *jwtx.Codec
	Verification *VerificationService
	Policy       RegistrationPolicy

	// RequireVerifiedEmail gates login on a verified address. Deployments
	// using RegisterIssueTokens leave this off.
	RequireVerifiedEmail bool
}

// LoginResult carries the sanitized user alongside the fresh token pair.
type LoginResult struct {
	User   domain.Profile   `json:"user"`
	Tokens domain.TokenPair `json:"tokens"`
}

// Login authenticates by email and password and opens a new session.
//
// Every credential failure collapses into ErrInvalidCredentials so a
// caller cannot probe which part was wrong. An unverified account fails
// with ErrEmailNotVerified when the deployment requires verification.
func (s *SessionService) Login(
	ctx context.Context,
	email, password string,
	meta ClientMeta,
) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if user.PasswordHash == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login password verification failed", "user_id", user.ID)
		return LoginResult{}, ErrInvalidCredentials
	}

	if s.RequireVerifiedEmail && !user.Verified {
		return LoginResult{}, ErrEmailNotVerified
	}

	pair, err := s.issueSession(ctx, user, meta, time.Now().UTC())
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: user.Profile(), Tokens: pair}, nil
}

// RegisterParams are the profile fields collected at signup.
type RegisterParams struct {
	Username    string
	Email       string
	Password    string
	PhoneNumber string
}

// RegisterResult is the registration outcome. Tokens is nil under the
// verify-email policy, where the account is pending verification.
type RegisterResult struct {
	User                domain.Profile    `json:"user"`
	Tokens              *domain.TokenPair `json:"tokens,omitempty"`
	PendingVerification bool              `json:"pending_verification"`
}

// Register creates a new account under the configured policy.
//
// The password hash helper passes already-hashed input through untouched,
// so a retried register call cannot double-hash. Under RegisterVerifyEmail
// the user and their code are persisted before the mail goes out; a
// delivery failure surfaces as ErrDeliveryFailed but the account exists
// and resend works.
func (s *SessionService) Register(
	ctx context.Context,
	params RegisterParams,
	meta ClientMeta,
) (RegisterResult, error) {
	if _, err := s.Store.Users().GetUserByEmail(ctx, params.Email); err == nil {
		return RegisterResult{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return RegisterResult{}, err
	}

	hash, err := cryptox.HashPassword(params.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		PhoneNumber:  params.PhoneNumber,
		Role:         domain.RoleUser,
		Verified:     s.Policy == RegisterIssueTokens,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return RegisterResult{}, ErrEmailTaken
		}
		return RegisterResult{}, err
	}

	if s.Policy == RegisterVerifyEmail {
		if err := s.Verification.IssueVerification(ctx, user); err != nil {
			return RegisterResult{}, err
		}
		return RegisterResult{User: user.Profile(), PendingVerification: true}, nil
	}

	pair, err := s.issueSession(ctx, user, meta, now)
	if err != nil {
		return RegisterResult{}, err
	}
	return RegisterResult{User: user.Profile(), Tokens: &pair}, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a
// brand-new pair is issued.
//
// The consume happens before anything else so the replay window closes
// even if a later step fails; an interrupted rotation leaves the client
// logged out, never with two live tokens. A token that verifies but has no
// stored record is treated as stolen: every session for that subject is
// revoked before ErrReuseDetected is returned.
func (s *SessionService) Refresh(
	ctx context.Context,
	rawRefresh string,
	meta ClientMeta,
) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	claims, err := s.Codec.VerifyRefresh(rawRefresh)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	hash := cryptox.FingerprintToken(rawRefresh)
	consumed, err := s.Store.Sessions().Consume(ctx, hash, claims.Subject, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A validly signed token with no live record means it was
			// already rotated or revoked: someone is replaying it. Revoke
			// everything for this subject, unconditionally, before
			// surfacing the error.
			l.Warn("refresh token reuse detected, revoking all sessions",
				"user_id", claims.Subject)
			if revokeErr := s.Store.Sessions().DeleteByUser(ctx, claims.Subject); revokeErr != nil {
				l.Error("failed to revoke sessions after reuse detection",
					"user_id", claims.Subject, "error", revokeErr)
			}
			return domain.TokenPair{}, ErrReuseDetected
		}
		l.Error("session consume failed", "error", err)
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUserNotFound
		}
		l.Error("user lookup failed during refresh", "error", err)
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	// Inherit device metadata from the consumed record when the request
	// doesn't carry its own.
	if meta.DeviceInfo == "" {
		meta.DeviceInfo = consumed.DeviceInfo
	}
	if meta.IPAddress == "" {
		meta.IPAddress = consumed.IPAddress
	}

	pair, err := s.issueSession(ctx, user, meta, now)
	if err != nil {
		l.Error("failed to issue rotated session", "error", err)
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	return pair, nil
}

// Logout deletes the session matching the presented refresh token. It
// succeeds even when nothing matched, so double-logout is harmless.
func (s *SessionService) Logout(ctx context.Context, rawRefresh string) error {
	return s.Store.Sessions().DeleteByHash(ctx, cryptox.FingerprintToken(rawRefresh))
}

// RevokeAll deletes every session for the user ("logout all devices").
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	return s.Store.Sessions().DeleteByUser(ctx, userID)
}

// ActiveSessions lists the user's live sessions, newest first. The
// returned views carry no token fingerprints.
func (s *SessionService) ActiveSessions(ctx context.Context, userID string) ([]domain.Info, error) {
	sessions, err := s.Store.Sessions().ListByUser(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	infos := make([]domain.Info, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Info())
	}
	return infos, nil
}

// issueSession signs a fresh token pair and persists the refresh token's
// fingerprint as a new session record.
func (s *SessionService) issueSession(
	ctx context.Context,
	user domain.User,
	meta ClientMeta,
	now time.Time,
) (domain.TokenPair, error) {
	identity := jwtx.Identity{ID: user.ID, Email: user.Email, Role: string(user.Role)}

	access, err := s.Codec.SignAccess(identity, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Codec.SignRefresh(identity, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	session := domain.Session{
		ID:         idx.New().String(),
		UserID:     user.ID,
		TokenHash:  cryptox.FingerprintToken(refresh),
		DeviceInfo: meta.DeviceInfo,
		IPAddress:  meta.IPAddress,
		ExpiresAt:  now.Add(s.Codec.RefreshTTL),
		CreatedAt:  now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
