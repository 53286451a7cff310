package domain

import (
	"context"
	"time"
)

// Email template names known to every mailer.
const (
	TemplateResetCode = "reset_code"
)

// TemplateEmail is a transactional email rendered from a named template.
type TemplateEmail struct {
	To       string
	Template string
	Params   map[string]any
}

// MailerResponse is the provider's answer to a send. Callers treat a non-2xx StatusCode as failure.
type MailerResponse struct {
	StatusCode int
	MessageID  string
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	SendTemplate(ctx context.Context, msg *TemplateEmail) (*MailerResponse, error)
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ResetCodeEmailData holds data for the password reset code email.
type ResetCodeEmailData struct {
	Email            string
	Code             string
	ExpiresInMinutes int
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendResetCode(ctx context.Context, data *ResetCodeEmailData) (*MailerResponse, error)
}

// CooldownStore rate-limits repeated actions per key.
// TrySet returns false while a previous key is still cooling down.
type CooldownStore interface {
	TrySet(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
