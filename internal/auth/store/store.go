// Package store defines the persistence contracts the auth core depends
// on. Concrete drivers (sqlite today) implement these; the services never
// see a driver type.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/showreelhq/showreel/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface.
//
// Every mutation behind it is a single-row operation, so drivers need no
// multi-statement transaction support. The one ordering-sensitive call,
// Sessions().Consume, must be atomic within the driver (a conditional
// delete, not a read-then-delete).
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Users is the credential store: user identity, password hash, email
// verification state and the two OTP slots.
type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches the email case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// SetVerifyOTP overwrites the email-verification OTP slot. A nil otp
	// clears the slot.
	SetVerifyOTP(ctx context.Context, userID string, otp *domain.OTP) error

	// SetResetOTP overwrites the password-reset OTP slot. A nil otp clears
	// the slot.
	SetResetOTP(ctx context.Context, userID string, otp *domain.OTP) error

	// MarkEmailVerified flips is_email_verified and clears the verify slot.
	MarkEmailVerified(ctx context.Context, userID string) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, hash string) error

	// ClearExpiredOTPs nils out OTP slots whose expiry has passed. Codes
	// are rejected by expiry check regardless; this is housekeeping.
	ClearExpiredOTPs(ctx context.Context, now time.Time) error
}

// Sessions persists one record per live refresh token.
type Sessions interface {
	// CreateSession stores a new session record.
	CreateSession(ctx context.Context, s domain.Session) error

	// Consume atomically deletes and returns the live (non-expired)
	// session matching the fingerprint, scoped to the owning user.
	// Returns ErrNotFound when no live record matches; with two racing
	// callers exactly one observes the record.
	Consume(ctx context.Context, tokenHash, userID string, now time.Time) (domain.Session, error)

	// DeleteByHash removes the session with the given fingerprint. A miss
	// is not an error (logout is idempotent).
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByUser removes every session for the user.
	DeleteByUser(ctx context.Context, userID string) error

	// ListByUser returns the user's non-expired sessions, newest first.
	ListByUser(ctx context.Context, userID string, now time.Time) ([]domain.Session, error)

	// DeleteExpired sweeps records past their expiry (housekeeping).
	DeleteExpired(ctx context.Context, now time.Time) error
}
