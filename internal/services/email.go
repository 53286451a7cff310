package services

import (
	"context"
	"fmt"
	"log/slog"

	"videoinvites/internal/domain"
)

type emailService struct {
	mailer domain.Mailer
	logger *slog.Logger
}

// NewEmailService returns an EmailService that sends templated mail through the given Mailer.
func NewEmailService(mailer domain.Mailer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, logger: logger}
}

// SendResetCode sends the "reset_code" template. The provider response is returned as is;
// judging its status is left to the caller.
func (s *emailService) SendResetCode(ctx context.Context, data *domain.ResetCodeEmailData) (*domain.MailerResponse, error) {
	if data == nil {
		return nil, fmt.Errorf("reset code email data is nil")
	}
	resp, err := s.mailer.SendTemplate(ctx, &domain.TemplateEmail{
		To:       data.Email,
		Template: domain.TemplateResetCode,
		Params: map[string]any{
			"code":               data.Code,
			"expires_in_minutes": data.ExpiresInMinutes,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send reset code email: %w", err)
	}
	s.logger.DebugContext(ctx, "reset code email dispatched", "status", resp.StatusCode)
	return resp, nil
}
