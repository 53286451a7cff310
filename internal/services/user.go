package services

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"videoinvites/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)

func trimAndLowerCase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// isEmail classifies a login as an email address; anything else is a username.
func isEmail(login string) bool {
	return emailRegexp.MatchString(login)
}

type userService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repository and auth ports.
func NewUserService(userRepo domain.UserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, logger *slog.Logger, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *userService) IsUsernameEmailInUse(ctx context.Context, username, email string) (res domain.Result[bool]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.userRepo.ExistsByUsernameOrEmail(ctx, trimAndLowerCase(username), trimAndLowerCase(email))
}

func (s *userService) AddNewUser(ctx context.Context, username, email, password string) (res domain.Result[string]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.Fail[string](domain.NewDatabaseError(err.Error()))
	}
	created := s.userRepo.Create(ctx, trimAndLowerCase(username), trimAndLowerCase(email), hash)
	if created.IsSuccess() {
		s.logger.InfoContext(ctx, "user registered", "user_id", created.Value())
	}
	return created
}

// GetCredentials looks the login up by email when it looks like one, by username otherwise.
func (s *userService) GetCredentials(ctx context.Context, login string) (res domain.Result[*domain.UserCredentials]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	login = trimAndLowerCase(login)
	var found domain.Result[*domain.User]
	if isEmail(login) {
		found = s.userRepo.GetByEmail(ctx, login)
	} else {
		found = s.userRepo.GetByUsername(ctx, login)
	}
	if found.IsFailure() {
		return domain.Propagate[*domain.UserCredentials](found)
	}
	u := found.Value()
	return domain.Ok(&domain.UserCredentials{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	})
}

func (s *userService) GenerateJWT(userID, username, email string) (res domain.Result[string]) {
	defer domain.Recover(&res)

	token, err := s.tokenIssuer.Issue(domain.TokenClaims{UserID: userID, Username: username, Email: email}, s.tokenExpiry)
	if err != nil {
		s.logger.Error("failed to issue token", "user_id", userID, "error", err)
		return domain.Fail[string](domain.NewInternalServerError(err.Error()))
	}
	return domain.Ok(token)
}

func (s *userService) ComparePasswords(password, hash string) bool {
	return s.hasher.Compare(hash, password)
}
