package http

import (
	"net/http"

	"github.com/showreelhq/showreel/internal/auth/service"
	"github.com/showreelhq/showreel/pkg/httpx"
)

type LoginHandler struct {
	SessionService *service.SessionService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP authenticates by email and password and opens a session.
// The User-Agent and remote address land on the session record so the
// user can recognise it later on /v1/auth/sessions.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeMissingField(w, "email")
		return
	}
	if req.Password == "" {
		writeMissingField(w, "password")
		return
	}

	res, err := h.SessionService.Login(ctx, req.Email, req.Password, clientMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthResponse{
		User:   res.User,
		Tokens: tokenResponse(res.Tokens, int64(h.SessionService.Codec.AccessTTL.Seconds())),
	})
}
