package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/showreelhq/showreel/internal/auth/domain"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, username, email, password_hash, phone_number, role,
	is_email_verified, verify_otp, verify_otp_expires_at,
	reset_otp, reset_otp_expires_at, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	// email is COLLATE NOCASE, so this matches case-insensitively.
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, phone_number,
			role, is_email_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.PhoneNumber,
		string(u.Role), u.Verified, u.CreatedAt, u.UpdatedAt,
	)
	if err := mapConflict(err); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *usersRepo) SetVerifyOTP(ctx context.Context, userID string, otp *domain.OTP) error {
	code, expires := splitOTP(otp)
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET verify_otp = ?, verify_otp_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		code, expires, time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) SetResetOTP(ctx context.Context, userID string, otp *domain.OTP) error {
	code, expires := splitOTP(otp)
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET reset_otp = ?, reset_otp_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		code, expires, time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET is_email_verified = 1, verify_otp = NULL,
			verify_otp_expires_at = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) ClearExpiredOTPs(ctx context.Context, now time.Time) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE users SET verify_otp = NULL, verify_otp_expires_at = NULL
		WHERE verify_otp_expires_at IS NOT NULL AND verify_otp_expires_at <= ?`,
		now,
	); err != nil {
		return fmt.Errorf("clear expired verify otps: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		UPDATE users SET reset_otp = NULL, reset_otp_expires_at = NULL
		WHERE reset_otp_expires_at IS NOT NULL AND reset_otp_expires_at <= ?`,
		now,
	); err != nil {
		return fmt.Errorf("clear expired reset otps: %w", err)
	}
	return nil
}

func splitOTP(otp *domain.OTP) (sql.NullString, sql.NullTime) {
	if otp == nil {
		return sql.NullString{}, sql.NullTime{}
	}
	return sql.NullString{String: otp.Code, Valid: true},
		sql.NullTime{Time: otp.ExpiresAt, Valid: true}
}

func mergeOTP(code sql.NullString, expires sql.NullTime) *domain.OTP {
	if !code.Valid {
		return nil
	}
	return &domain.OTP{Code: code.String, ExpiresAt: expires.Time}
}

func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u             domain.User
		role          string
		phone         sql.NullString
		verifyCode    sql.NullString
		verifyExpires sql.NullTime
		resetCode     sql.NullString
		resetExpires  sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &phone, &role,
		&u.Verified, &verifyCode, &verifyExpires,
		&resetCode, &resetExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.PhoneNumber = mapNullString(phone)
	u.Role = domain.Role(role)
	u.VerifyOTP = mergeOTP(verifyCode, verifyExpires)
	u.ResetOTP = mergeOTP(resetCode, resetExpires)
	return u, nil
}
