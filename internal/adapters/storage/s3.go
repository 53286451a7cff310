package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"videoinvites/internal/domain"
)

// S3Config holds configuration for an S3 compatible store addressed path-style,
// e.g. http://localhost:9000/{bucket}/{key}.
type S3Config struct {
	URL             string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// HTTPClient is optional; tests point it at an httptest server.
	HTTPClient *http.Client
	// MaxAttempts bounds SDK retries. Zero keeps the SDK default.
	MaxAttempts int
}

type s3Storage struct {
	client  *s3.Client
	baseURL string
	logger  *slog.Logger
}

// NewS3Storage returns an ObjectStorage backed by aws-sdk-go-v2 S3 with static credentials.
func NewS3Storage(config S3Config, logger *slog.Logger) domain.ObjectStorage {
	awsCfg := aws.Config{
		Region: config.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			),
		),
		RetryMaxAttempts: config.MaxAttempts,
	}
	if config.HTTPClient != nil {
		awsCfg.HTTPClient = config.HTTPClient
	}
	baseURL := strings.TrimRight(config.URL, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(baseURL)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return &s3Storage{client: client, baseURL: baseURL, logger: logger}
}

// PutObject writes the object and reports the HTTP status the store answered with.
// A non-2xx answer comes back as an error carrying the status in the output.
func (s *s3Storage) PutObject(ctx context.Context, in *domain.PutObjectInput) (*domain.PutObjectOutput, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(in.Bucket),
		Key:    aws.String(in.Key),
		Body:   in.Body,
	}
	if in.Size > 0 {
		input.ContentLength = aws.Int64(in.Size)
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		var respErr *smithyhttp.ResponseError
		if errors.As(err, &respErr) {
			s.logger.ErrorContext(ctx, "object storage rejected put", "bucket", in.Bucket, "key", in.Key, "status", respErr.HTTPStatusCode())
			return &domain.PutObjectOutput{StatusCode: respErr.HTTPStatusCode()}, fmt.Errorf("put object %s/%s: %w", in.Bucket, in.Key, err)
		}
		return nil, fmt.Errorf("put object %s/%s: %w", in.Bucket, in.Key, err)
	}

	status := http.StatusOK
	if raw, ok := middleware.GetRawResponse(out.ResultMetadata).(*smithyhttp.Response); ok {
		status = raw.StatusCode
	}
	s.logger.DebugContext(ctx, "object stored", "bucket", in.Bucket, "key", in.Key, "status", status)
	return &domain.PutObjectOutput{StatusCode: status}, nil
}

// ObjectURL is the path-style address the object was stored under.
func (s *s3Storage) ObjectURL(bucket, key string) string {
	return s.baseURL + "/" + bucket + "/" + key
}
