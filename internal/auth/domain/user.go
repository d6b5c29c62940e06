package domain

import "time"

// Role is the coarse authorization level attached to a user and embedded in
// issued tokens.
type Role string

const (
	RoleUser       Role = "user"
	RoleDeveloper  Role = "developer"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleDeveloper, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// OTP is a one-time numeric code with its expiry. A user carries at most
// one per kind; issuing a new code overwrites the previous one.
type OTP struct {
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the code is past its expiry at the given time.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

type User struct {
	ID           string
	Username     string
	Email        string // unique; matched case-insensitively at login
	PasswordHash string // bcrypt encoded
	PhoneNumber  string
	Role         Role
	Verified     bool // email verified

	// OTP slots. Nil when no code is outstanding.
	VerifyOTP *OTP
	ResetOTP  *OTP

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the sanitized view of a user returned by the API: no password
// hash, no OTP material.
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Role        Role      `json:"role"`
	Verified    bool      `json:"is_email_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile strips credential and OTP fields from the user.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		Verified:    u.Verified,
		CreatedAt:   u.CreatedAt,
	}
}
