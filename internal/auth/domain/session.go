package domain

import "time"

// Session models one stored refresh-token record: one live session on one
// device. Only the SHA-256 fingerprint of the refresh token is persisted,
// never the raw token.
type Session struct {
	ID         string
	UserID     string
	TokenHash  string // base64url SHA-256 fingerprint of the refresh token
	DeviceInfo string // client User-Agent, may be empty
	IPAddress  string // client IP, may be empty
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Info is the caller-visible view of a session. The token fingerprint is
// deliberately absent.
type Info struct {
	ID         string    `json:"id"`
	DeviceInfo string    `json:"device_info,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Info strips the token fingerprint from the session record.
func (s Session) Info() Info {
	return Info{
		ID:         s.ID,
		DeviceInfo: s.DeviceInfo,
		IPAddress:  s.IPAddress,
		CreatedAt:  s.CreatedAt,
		ExpiresAt:  s.ExpiresAt,
	}
}

// TokenPair is what login, register and refresh return: the short-lived
// access JWT and the rotating refresh JWT.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
