package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	brevo "github.com/getbrevo/brevo-go/lib"

	"videoinvites/internal/domain"
)

const brevoSandboxHeader = "X-Sib-Sandbox"

type brevoMailer struct {
	api       *brevo.TransactionalEmailsApiService
	templates map[string]int64
	sandbox   bool
	logger    *slog.Logger
}

// NewBrevoMailer returns a Mailer that sends Brevo-hosted templates.
// Template names are resolved to Brevo ids through config.Templates.
func NewBrevoMailer(config BrevoConfig, httpClient *http.Client, logger *slog.Logger) domain.Mailer {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", config.APIKey)
	if config.BaseURL != "" {
		cfg.BasePath = strings.TrimRight(config.BaseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &brevoMailer{
		api:       brevo.NewAPIClient(cfg).TransactionalEmailsApi,
		templates: config.Templates,
		sandbox:   config.Sandbox,
		logger:    logger,
	}
}

// SendTemplate returns the provider status without judging it; a non-2xx answer is
// reported in the response, not as an error.
func (b *brevoMailer) SendTemplate(ctx context.Context, msg *domain.TemplateEmail) (*domain.MailerResponse, error) {
	templateID, ok := b.templates[msg.Template]
	if !ok {
		return nil, fmt.Errorf("brevo: no template id configured for %q", msg.Template)
	}
	email := brevo.SendSmtpEmail{
		To:         []brevo.SendSmtpEmailTo{{Email: msg.To}},
		TemplateId: templateID,
		Params:     msg.Params,
	}
	if b.sandbox {
		email.Headers = map[string]interface{}{brevoSandboxHeader: "drop"}
	}

	created, resp, err := b.api.SendTransacEmail(ctx, email)
	if resp == nil {
		return nil, fmt.Errorf("brevo: send: %w", err)
	}
	out := &domain.MailerResponse{StatusCode: resp.StatusCode}
	if err != nil {
		var body []byte
		var swaggerErr brevo.GenericSwaggerError
		if errors.As(err, &swaggerErr) {
			body = swaggerErr.Body()
		}
		b.logger.ErrorContext(ctx, "brevo api error", "status", resp.StatusCode, "err", err, "body", string(body))
		return out, nil
	}
	out.MessageID = created.MessageId
	b.logger.InfoContext(ctx, "email sent via brevo", "template", msg.Template, "message_id", out.MessageID)
	return out, nil
}
