package http

import (
	"net/http"

	"github.com/showreelhq/showreel/internal/auth/service"
	"github.com/showreelhq/showreel/pkg/httpx"
)

type LogoutHandler struct {
	SessionService *service.SessionService
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleLogout ends the single session behind the presented refresh
// token. Unknown and already-revoked tokens get the same acknowledgment.
func (h *LogoutHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeMissingField(w, "refresh_token")
		return
	}

	if err := h.SessionService.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// HandleLogoutAll revokes every session of the authenticated user.
func (h *LogoutHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid_token"})
		return
	}

	if err := h.SessionService.RevokeAll(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "all sessions revoked"})
}
