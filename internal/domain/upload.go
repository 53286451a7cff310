package domain

import (
	"context"
	"io"
	"time"
)

// EventUpload is an invitee upload joined with its invitee.
type EventUpload struct {
	InviteeID    string    `json:"invitee_id"`
	UploadID     string    `json:"upload_id"`
	InviteeName  string    `json:"invitee_name"`
	InviteSentAt time.Time `json:"invite_sent_at"`
	UploadPath   string    `json:"upload_path"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// CompiledUpload is the final video of an event. Its presence marks the event finished.
type CompiledUpload struct {
	UploadID   string    `json:"upload_id"`
	UploadPath string    `json:"upload_path"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// VideoFile is an already validated video received from a caller.
type VideoFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadRepository defines the interface for invitee and compiled upload storage.
type UploadRepository interface {
	CreateInviteeUpload(ctx context.Context, eventID, inviteeID, path string) Result[string]
	ListByEventID(ctx context.Context, eventID string) Result[[]*EventUpload]
	Delete(ctx context.Context, eventID, uploadID string) Result[string]
	CreateCompiled(ctx context.Context, eventID, path string) Result[string]
	GetCompiled(ctx context.Context, eventID string) Result[[]*CompiledUpload]
	DeleteCompiled(ctx context.Context, eventID, uploadID string) Result[string]
}

// PutObjectInput describes an object write.
type PutObjectInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// PutObjectOutput reports the provider's HTTP status for the write.
type PutObjectOutput struct {
	StatusCode int
}

// ObjectStorage stores video objects in an S3 compatible bucket.
type ObjectStorage interface {
	PutObject(ctx context.Context, in *PutObjectInput) (*PutObjectOutput, error)
	ObjectURL(bucket, key string) string
}
