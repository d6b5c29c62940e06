package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/showreelhq/showreel/internal/auth/domain"
	"github.com/showreelhq/showreel/internal/auth/service"
	"github.com/showreelhq/showreel/pkg/httpx"
	"github.com/showreelhq/showreel/pkg/slogx"
)

// ErrorResponse is the error envelope for every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// TokenResponse carries a freshly minted pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResponse is returned by login and by register under the
// issue-tokens policy.
type AuthResponse struct {
	User   domain.Profile `json:"user"`
	Tokens TokenResponse  `json:"tokens"`
}

// RegisterResponse is the signup outcome. Tokens is absent when the
// account is pending email verification.
type RegisterResponse struct {
	User                domain.Profile `json:"user"`
	Tokens              *TokenResponse `json:"tokens,omitempty"`
	PendingVerification bool           `json:"pending_verification"`
}

// MessageResponse acknowledges operations with no payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthChecks reports per-dependency status on the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is the health probe payload.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// decodeJSON reads a JSON request body into dst. A malformed body gets
// the standard invalid_request envelope.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return false
	}
	return true
}

func writeMissingField(w http.ResponseWriter, field string) {
	httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:            "invalid_request",
		ErrorDescription: field + " is required",
	})
}

// writeServiceError maps the service sentinels onto HTTP statuses. The
// sentinel text doubles as the wire error code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "server_error"
	desc := ""

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, err.Error()
		desc = "Email or password is incorrect"
	case errors.Is(err, service.ErrEmailNotVerified):
		status, code = http.StatusForbidden, err.Error()
		desc = "Verify your email address before logging in"
	case errors.Is(err, service.ErrEmailTaken):
		status, code = http.StatusConflict, err.Error()
		desc = "An account with this email already exists"
	case errors.Is(err, service.ErrReuseDetected):
		status, code = http.StatusUnauthorized, err.Error()
		desc = "Refresh token already used; all sessions revoked"
	case errors.Is(err, service.ErrInvalidRefresh):
		status, code = http.StatusUnauthorized, err.Error()
		desc = "Refresh token is invalid or expired"
	case errors.Is(err, service.ErrUserNotFound):
		status, code = http.StatusNotFound, err.Error()
		desc = "No account matches this identity"
	case errors.Is(err, service.ErrNoCodePending):
		status, code = http.StatusBadRequest, err.Error()
		desc = "No code has been issued; request a new one"
	case errors.Is(err, service.ErrCodeMismatch):
		status, code = http.StatusBadRequest, err.Error()
		desc = "The code does not match"
	case errors.Is(err, service.ErrCodeExpired):
		status, code = http.StatusBadRequest, err.Error()
		desc = "The code has expired; request a new one"
	case errors.Is(err, service.ErrAlreadyVerified):
		status, code = http.StatusConflict, err.Error()
		desc = "This email address is already verified"
	case errors.Is(err, service.ErrDeliveryFailed):
		status, code = http.StatusBadGateway, "delivery_failed"
		desc = "The code could not be delivered; try resending"
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
	}

	httpx.WriteJSON(w, status, ErrorResponse{Error: code, ErrorDescription: desc})
}

// clientMeta captures the caller's device fingerprint for the session
// record.
func clientMeta(r *http.Request) service.ClientMeta {
	return service.ClientMeta{
		DeviceInfo: r.UserAgent(),
		IPAddress:  httpx.IPKeyExtractor(r),
	}
}

func tokenResponse(pair domain.TokenPair, expiresIn int64) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}
}
