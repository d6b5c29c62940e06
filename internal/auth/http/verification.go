package http

import (
	"net/http"

	"github.com/showreelhq/showreel/internal/auth/service"
	"github.com/showreelhq/showreel/pkg/httpx"
)

// VerificationHandler serves the email-verification and password-reset
// code flows.
type VerificationHandler struct {
	VerificationService *service.VerificationService
}

type emailRequest struct {
	Email string `json:"email"`
}

type codeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *VerificationHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCodeRequest(w, r)
	if !ok {
		return
	}

	if err := h.VerificationService.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "email verified"})
}

func (h *VerificationHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeMissingField(w, "email")
		return
	}

	if err := h.VerificationService.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// HandleForgotPassword acknowledges identically for known and unknown
// addresses.
func (h *VerificationHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeMissingField(w, "email")
		return
	}

	if err := h.VerificationService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK,
		MessageResponse{Message: "if the account exists, a reset code has been sent"})
}

func (h *VerificationHandler) HandleVerifyResetCode(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCodeRequest(w, r)
	if !ok {
		return
	}

	if err := h.VerificationService.VerifyResetCode(r.Context(), req.Email, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "code valid"})
}

func (h *VerificationHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.Email == "":
		writeMissingField(w, "email")
		return
	case req.Code == "":
		writeMissingField(w, "code")
		return
	case req.NewPassword == "":
		writeMissingField(w, "new_password")
		return
	}

	if err := h.VerificationService.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "password reset"})
}

func decodeCodeRequest(w http.ResponseWriter, r *http.Request) (codeRequest, bool) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	if req.Email == "" {
		writeMissingField(w, "email")
		return req, false
	}
	if req.Code == "" {
		writeMissingField(w, "code")
		return req, false
	}
	return req, true
}
