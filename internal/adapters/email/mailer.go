package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"videoinvites/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// BrevoConfig holds configuration for the Brevo transactional API.
type BrevoConfig struct {
	BaseURL   string
	APIKey    string
	Templates map[string]int64
	Sandbox   bool
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
	Brevo       BrevoConfig
}

// NewMailer creates a mailer from config. Provider "ses" renders the embedded templates and sends
// through AWS SES; "brevo" sends remote templates through Brevo; "noop" or unknown uses a no-op mailer.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	switch config.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: config.SES.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.SES.AccessKeyID,
					config.SES.SecretAccessKey,
					"",
				),
			),
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			renderer:    NewTemplateRenderer(),
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			logger:      logger,
		}, nil
	case "brevo":
		if config.Brevo.APIKey == "" {
			return nil, fmt.Errorf("brevo mailer: api key is empty")
		}
		return NewBrevoMailer(config.Brevo, http.DefaultClient, logger), nil
	case "noop":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

// sesAPI is the subset of the SES client the mailer calls.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesMailer struct {
	client      sesAPI
	renderer    domain.EmailTemplateRenderer
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func (s *sesMailer) SendTemplate(ctx context.Context, msg *domain.TemplateEmail) (*domain.MailerResponse, error) {
	subject, html, text, err := s.renderer.Render(msg.Template, msg.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s template: %w", msg.Template, err)
	}
	source := s.fromAddress
	if s.fromName != "" {
		source = fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}
	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to send email via SES: %w", err)
	}
	messageID := aws.ToString(result.MessageId)
	s.logger.InfoContext(ctx, "email sent via SES", "template", msg.Template, "message_id", messageID)
	return &domain.MailerResponse{StatusCode: http.StatusOK, MessageID: messageID}, nil
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) SendTemplate(ctx context.Context, msg *domain.TemplateEmail) (*domain.MailerResponse, error) {
	n.logger.InfoContext(ctx, "email would be sent (noop)", "to", msg.To, "template", msg.Template)
	return &domain.MailerResponse{StatusCode: http.StatusOK, MessageID: "noop"}, nil
}
