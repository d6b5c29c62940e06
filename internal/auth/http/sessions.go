package http

import (
	"net/http"

	"github.com/showreelhq/showreel/internal/auth/domain"
	"github.com/showreelhq/showreel/internal/auth/service"
	"github.com/showreelhq/showreel/pkg/httpx"
)

type SessionsHandler struct {
	SessionService *service.SessionService
}

type sessionsResponse struct {
	Sessions []domain.Info `json:"sessions"`
}

// ServeHTTP lists the caller's live sessions, newest first. Token
// fingerprints never appear in the payload.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid_token"})
		return
	}

	infos, err := h.SessionService.ActiveSessions(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionsResponse{Sessions: infos})
}
