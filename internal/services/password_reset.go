package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"videoinvites/internal/domain"
)

const (
	resetCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	resetCodeLength   = 6
)

// generateResetCode draws resetCodeLength characters from an alphabet without 0, O, 1 and I.
func generateResetCode() (string, error) {
	limit := big.NewInt(int64(len(resetCodeAlphabet)))
	code := make([]byte, resetCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		code[i] = resetCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

type passwordResetService struct {
	userRepo       domain.UserRepository
	codeRepo       domain.PasswordResetCodeRepository
	emailService   domain.EmailService
	hasher         domain.PasswordHasher
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewPasswordResetService wires the forgot-password flow.
func NewPasswordResetService(
	userRepo domain.UserRepository,
	codeRepo domain.PasswordResetCodeRepository,
	emailService domain.EmailService,
	hasher domain.PasswordHasher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.PasswordResetService {
	return &passwordResetService{
		userRepo:       userRepo,
		codeRepo:       codeRepo,
		emailService:   emailService,
		hasher:         hasher,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *passwordResetService) IsEmailExist(ctx context.Context, email string) (res domain.Result[bool]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.userRepo.ExistsByEmail(ctx, trimAndLowerCase(email))
}

func (s *passwordResetService) SendCode(ctx context.Context, email string) (res domain.Result[string]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code, err := generateResetCode()
	if err != nil {
		return domain.Fail[string](domain.NewInternalServerError(fmt.Sprintf("failed to generate code: %v", err)))
	}
	cleanEmail := trimAndLowerCase(email)

	user := s.userRepo.GetByEmail(ctx, cleanEmail)
	if user.IsFailure() {
		return domain.Propagate[string](user)
	}
	userID := user.Value().ID

	if inserted := s.codeRepo.Create(ctx, userID, code); inserted.IsFailure() {
		return domain.Propagate[string](inserted)
	}

	resp, err := s.emailService.SendResetCode(ctx, &domain.ResetCodeEmailData{
		Email:            cleanEmail,
		Code:             code,
		ExpiresInMinutes: int(domain.ResetCodeTTL / time.Minute),
	})
	if err != nil || resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.ErrorContext(ctx, "email not sent", "user_id", userID, "error", err)
		return domain.Fail[string](domain.NewInternalServerError("email not sent"))
	}
	s.logger.InfoContext(ctx, "reset code sent", "user_id", userID, "message_id", resp.MessageID)
	return domain.Ok("email sent to user with userId: " + userID)
}

// codeState loads the code and refuses it unless it is still valid.
func (s *passwordResetService) codeState(ctx context.Context, code string) domain.Result[*domain.PasswordResetCode] {
	found := s.codeRepo.GetByCode(ctx, code)
	if found.IsFailure() {
		return found
	}
	switch domain.ResetCodeStateAt(found.Value(), s.now()) {
	case domain.ResetCodeUsed:
		return domain.Fail[*domain.PasswordResetCode](domain.NewBadRequestError("Code has already been used"))
	case domain.ResetCodeExpired:
		return domain.Fail[*domain.PasswordResetCode](domain.NewBadRequestError("Code has expired"))
	}
	return found
}

func (s *passwordResetService) IsCodeValid(ctx context.Context, code string) (res domain.Result[bool]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if state := s.codeState(ctx, code); state.IsFailure() {
		return domain.Propagate[bool](state)
	}
	return domain.Ok(true)
}

// ResetPassword consumes the code before touching the password. A later failure leaves
// the code consumed.
func (s *passwordResetService) ResetPassword(ctx context.Context, code, password string) (res domain.Result[*domain.UserInfo]) {
	defer domain.Recover(&res)
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	state := s.codeState(ctx, code)
	if state.IsFailure() {
		return domain.Propagate[*domain.UserInfo](state)
	}
	if used := s.codeRepo.MarkUsed(ctx, state.Value().ID, s.now().UTC()); used.IsFailure() {
		return domain.Propagate[*domain.UserInfo](used)
	}

	userID := state.Value().UserID
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.Fail[*domain.UserInfo](domain.NewDatabaseError(err.Error()))
	}
	if updated := s.userRepo.UpdatePassword(ctx, userID, hash); updated.IsFailure() {
		s.logger.WarnContext(ctx, "reset code consumed but password not updated", "user_id", userID, "error", updated.Err())
		return domain.Propagate[*domain.UserInfo](updated)
	}

	u := s.userRepo.GetByID(ctx, userID)
	if u.IsFailure() {
		return domain.Propagate[*domain.UserInfo](u)
	}
	return domain.Ok(&domain.UserInfo{ID: u.Value().ID, Username: u.Value().Username, Email: u.Value().Email})
}
