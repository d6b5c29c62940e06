package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/showreelhq/showreel/internal/auth/domain"
)

type sessionsRepo struct {
	db *sql.DB
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, device_info, ip_address,
			expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.TokenHash, s.DeviceInfo, s.IPAddress,
		s.ExpiresAt, s.CreatedAt,
	)
	if err := mapConflict(err); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Consume deletes the matching live session in a single conditional
// statement. With two concurrent callers presenting the same fingerprint,
// exactly one gets the row back; the other sees ErrNotFound, which the
// service layer treats as token reuse.
func (r *sessionsRepo) Consume(
	ctx context.Context,
	tokenHash, userID string,
	now time.Time,
) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM sessions
		WHERE token_hash = ? AND user_id = ? AND expires_at > ?
		RETURNING id, user_id, token_hash, device_info, ip_address,
			expires_at, created_at`,
		tokenHash, userID, now,
	)
	return scanSession(row)
}

func (r *sessionsRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	return err
}

func (r *sessionsRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (r *sessionsRepo) ListByUser(
	ctx context.Context,
	userID string,
	now time.Time,
) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, token_hash, device_info, ip_address,
			expires_at, created_at
		FROM sessions
		WHERE user_id = ? AND expires_at > ?
		ORDER BY created_at DESC`,
		userID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.TokenHash, &s.DeviceInfo, &s.IPAddress,
			&s.ExpiresAt, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, now)
	return err
}

func scanSession(row *sql.Row) (domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.TokenHash, &s.DeviceInfo, &s.IPAddress,
		&s.ExpiresAt, &s.CreatedAt,
	)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}
