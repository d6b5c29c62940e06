package http

import (
	"net/http"

	"github.com/showreelhq/showreel/internal/auth/service"
	"github.com/showreelhq/showreel/pkg/httpx"
)

type RefreshHandler struct {
	SessionService *service.SessionService
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ServeHTTP rotates a refresh token. The presented token is consumed
// whether or not the caller keeps the response; replaying it afterwards
// revokes every session the user has.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeMissingField(w, "refresh_token")
		return
	}

	pair, err := h.SessionService.Refresh(ctx, req.RefreshToken, clientMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK,
		tokenResponse(pair, int64(h.SessionService.Codec.AccessTTL.Seconds())))
}
