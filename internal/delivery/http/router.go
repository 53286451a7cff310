package http

import (
	"log/slog"
	"net/http"

	"videoinvites/internal/delivery/http/controllers"
	"videoinvites/internal/delivery/http/helpers"
	"videoinvites/internal/delivery/http/middleware"
	"videoinvites/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth     *controllers.AuthController
	Password *controllers.PasswordController
	Event    *controllers.EventController
}

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	CORSOrigins []string
	// RateLimitPerMinute applies per client to signup, login and forgot-password. Zero disables it.
	RateLimitPerMinute int
}

// NewRouter initializes the HTTP router with all application routes and wraps it with
// request id, logging and CORS middleware.
func NewRouter(c Controllers, verifier domain.TokenVerifier, cfg RouterConfig, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	limit := middleware.NewRateLimiter(cfg.RateLimitPerMinute).Limit

	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, helpers.MessageResponse{Message: "pong"})
	})

	// Auth
	mux.HandleFunc("POST /signup", limit(c.Auth.SignUp))
	mux.HandleFunc("POST /login", limit(c.Auth.Login))
	mux.HandleFunc("GET /me", auth(c.Auth.Me))
	mux.HandleFunc("POST /logout", auth(c.Auth.Logout))

	// Password reset
	mux.HandleFunc("POST /forgot-password", limit(c.Password.ForgotPassword))
	mux.HandleFunc("GET /reset-password", c.Password.CheckResetCode)
	mux.HandleFunc("POST /reset-password", c.Password.ResetPassword)

	// Events
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", auth(c.Event.ListEvents))
	mux.HandleFunc("GET /events/{id}", auth(c.Event.GetEvent))
	mux.HandleFunc("DELETE /events/{id}", auth(c.Event.DeleteEvent))

	// Invitees
	mux.HandleFunc("POST /events/{id}/invitees", auth(c.Event.AddInvitees))
	mux.HandleFunc("GET /events/{id}/invitees", auth(c.Event.ListInvitees))
	mux.HandleFunc("DELETE /events/{id}/invitees/{inviteeId}", auth(c.Event.DeleteInvitee))

	// Uploads; invitees reach their own routes without an account.
	mux.HandleFunc("POST /events/{id}/invitees/{inviteeId}/upload", c.Event.UploadInviteeVideo)
	mux.HandleFunc("GET /events/{id}/invitees/{inviteeId}/uploads", c.Event.ListInviteeUploads)
	mux.HandleFunc("POST /events/{id}/upload", auth(c.Event.UploadOwnerVideo))
	mux.HandleFunc("POST /events/{id}/compiled/upload", auth(c.Event.UploadCompiledVideo))
	mux.HandleFunc("GET /events/{id}/compiled/upload", c.Event.GetCompiledUpload)
	mux.HandleFunc("GET /events/{id}/uploads", auth(c.Event.ListUploads))
	mux.HandleFunc("DELETE /events/{id}/uploads/{uploadId}", auth(c.Event.DeleteUpload))

	return middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux)))
}
