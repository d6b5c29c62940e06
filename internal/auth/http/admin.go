package http

import (
	"net/http"

	"github.com/showreelhq/showreel/internal/auth/service"
	"github.com/showreelhq/showreel/pkg/httpx"
)

type AdminHandler struct {
	SessionService *service.SessionService
	UserService    *service.UserService
}

// HandleRevokeSessions force-revokes every session of the target user,
// for compromised-account response.
func (h *AdminHandler) HandleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	if targetID == "" {
		writeMissingField(w, "id")
		return
	}

	// Confirm the target exists so the operator gets a real 404 instead
	// of a silent no-op.
	if _, err := h.UserService.GetProfile(r.Context(), targetID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.SessionService.RevokeAll(r.Context(), targetID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "sessions revoked"})
}
