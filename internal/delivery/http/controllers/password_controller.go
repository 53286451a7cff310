package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "videoinvites/internal/delivery/http/helpers"
	"videoinvites/internal/domain"
)

const msgForgotPassword = "If email exists, you will receive a code."

// ForgotPasswordRequest is the request body for POST /forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (f ForgotPasswordRequest) Validate() []string {
	if !emailRegexp.MatchString(strings.TrimSpace(f.Email)) {
		return []string{"Required valid email"}
	}
	return nil
}

// ResetPasswordRequest is the request body for POST /reset-password?code=
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Validate implements Validator.
func (p ResetPasswordRequest) Validate() []string {
	return validatePassword(p.Password)
}

type PasswordController struct {
	Logger      *slog.Logger
	Service     domain.PasswordResetService
	Users       domain.UserService
	Cooldown    domain.CooldownStore
	CooldownTTL time.Duration
}

func NewPasswordController(logger *slog.Logger, svc domain.PasswordResetService, users domain.UserService, cooldown domain.CooldownStore, cooldownTTL time.Duration) *PasswordController {
	return &PasswordController{
		Logger:      logger,
		Service:     svc,
		Users:       users,
		Cooldown:    cooldown,
		CooldownTTL: cooldownTTL,
	}
}

// ForgotPassword always answers with the same message whether or not the email is known.
// Repeated requests for one email inside the cooldown window do not send another code.
func (c *PasswordController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists := c.Service.IsEmailExist(r.Context(), email)
	if exists.IsFailure() {
		h.WriteAppError(w, r, c.Logger, exists.Err())
		return
	}
	if !exists.Value() {
		h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: msgForgotPassword})
		return
	}

	fresh, err := c.Cooldown.TrySet(r.Context(), email, c.CooldownTTL)
	if err != nil {
		c.Logger.WarnContext(r.Context(), "cooldown store unavailable", "err", err)
		fresh = true
	}
	if !fresh {
		c.Logger.InfoContext(r.Context(), "reset code suppressed by cooldown")
		h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: msgForgotPassword})
		return
	}

	if sent := c.Service.SendCode(r.Context(), email); sent.IsFailure() {
		h.WriteAppError(w, r, c.Logger, sent.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: msgForgotPassword})
}

func (c *PasswordController) CheckResetCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.WriteAppError(w, r, c.Logger, domain.NewBadRequestError("Invalid code"))
		return
	}
	if valid := c.Service.IsCodeValid(r.Context(), code); valid.IsFailure() {
		h.WriteAppError(w, r, c.Logger, valid.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.MessageResponse{Message: "Code is valid/ redirecting to reset password page"})
}

// ResetPassword consumes the code, sets the new password and answers 201 with a fresh token.
func (c *PasswordController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.WriteAppError(w, r, c.Logger, domain.NewBadRequestError("Invalid code"))
		return
	}
	var req ResetPasswordRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	reset := c.Service.ResetPassword(r.Context(), code, req.Password)
	if reset.IsFailure() {
		h.WriteAppError(w, r, c.Logger, reset.Err())
		return
	}
	u := reset.Value()
	token := c.Users.GenerateJWT(u.ID, u.Username, u.Email)
	if token.IsFailure() {
		h.WriteAppError(w, r, c.Logger, token.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, TokenResponse{Token: token.Value()})
}
