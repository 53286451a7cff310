package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	h "videoinvites/internal/delivery/http/helpers"
	"videoinvites/internal/delivery/http/middleware"
	"videoinvites/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const msgInvalidLogin = "Invalid login or password"

// validatePassword applies the shared 6..32 length rule.
func validatePassword(password string) []string {
	if !h.LengthBetween(password, 6, 32) {
		return []string{"Required length between 6 and 32"}
	}
	return nil
}

// SignUpRequest is the request body for POST /signup
type SignUpRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (s SignUpRequest) Validate() []string {
	var errs []string
	if !emailRegexp.MatchString(strings.TrimSpace(s.Email)) {
		errs = append(errs, "Required valid email")
	}
	username := strings.TrimSpace(s.Username)
	if !h.LengthBetween(username, 2, 32) {
		errs = append(errs, "Required length between 2 and 32")
	} else if h.ContainsMarkup(username) {
		errs = append(errs, "username must not contain markup")
	}
	return append(errs, validatePassword(s.Password)...)
}

// LoginRequest is the request body for POST /login. Login is a username or an email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if !h.LengthBetween(strings.TrimSpace(l.Login), 2, 32) {
		errs = append(errs, "Required length between 2 and 32")
	}
	return append(errs, validatePassword(l.Password)...)
}

// TokenResponse is the data of endpoints that authenticate the caller.
type TokenResponse struct {
	Token string `json:"token"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewAuthController(logger *slog.Logger, svc domain.UserService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// SignUp creates the account and answers 201 with a token. A taken username or email is a 409.
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	inUse := c.Service.IsUsernameEmailInUse(r.Context(), username, email)
	if inUse.IsFailure() {
		h.WriteAppError(w, r, c.Logger, inUse.Err())
		return
	}
	if inUse.Value() {
		h.WriteAppError(w, r, c.Logger, domain.NewConflictError("The username or email is already in use"))
		return
	}
	created := c.Service.AddNewUser(r.Context(), username, email, req.Password)
	if created.IsFailure() {
		h.WriteAppError(w, r, c.Logger, created.Err())
		return
	}
	token := c.Service.GenerateJWT(created.Value(), username, email)
	if token.IsFailure() {
		h.WriteAppError(w, r, c.Logger, token.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, TokenResponse{Token: token.Value()})
}

// Login answers 200 with a token. Unknown logins and wrong passwords get the same 400.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	creds := c.Service.GetCredentials(r.Context(), req.Login)
	if creds.IsFailure() {
		if errors.Is(creds.Err(), domain.ErrNotFound) {
			h.WriteAppError(w, r, c.Logger, domain.NewBadRequestError(msgInvalidLogin))
			return
		}
		h.WriteAppError(w, r, c.Logger, creds.Err())
		return
	}
	u := creds.Value()
	if !c.Service.ComparePasswords(req.Password, u.PasswordHash) {
		h.WriteAppError(w, r, c.Logger, domain.NewBadRequestError(msgInvalidLogin))
		return
	}
	token := c.Service.GenerateJWT(u.ID, u.Username, u.Email)
	if token.IsFailure() {
		h.WriteAppError(w, r, c.Logger, token.Err())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, TokenResponse{Token: token.Value()})
}

// Me returns the caller's token claims.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, claims)
}

// Logout is stateless: tokens expire on their own.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
