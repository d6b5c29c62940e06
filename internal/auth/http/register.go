package http

import (
	"net/http"

	"github.com/showreelhq/showreel/internal/auth/service"
	"github.com/showreelhq/showreel/pkg/httpx"
)

type RegisterHandler struct {
	SessionService *service.SessionService
}

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// ServeHTTP creates an account. Under the verify-email policy the
// response carries no tokens and the client is expected to call
// /v1/auth/verify-email with the mailed code.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.Username == "":
		writeMissingField(w, "username")
		return
	case req.Email == "":
		writeMissingField(w, "email")
		return
	case req.Password == "":
		writeMissingField(w, "password")
		return
	}

	res, err := h.SessionService.Register(ctx, service.RegisterParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	}, clientMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := RegisterResponse{User: res.User, PendingVerification: res.PendingVerification}
	if res.Tokens != nil {
		tr := tokenResponse(*res.Tokens, int64(h.SessionService.Codec.AccessTTL.Seconds()))
		out.Tokens = &tr
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}
