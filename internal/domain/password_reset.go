package domain

import (
	"context"
	"time"
)

// ResetCodeTTL is how long a password reset code stays valid after creation.
const ResetCodeTTL = 15 * time.Minute

// PasswordResetCode is a single-use code proving control of an email address.
type PasswordResetCode struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Code      string     `json:"code"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// PasswordResetCodeRepository defines the interface for reset code storage.
type PasswordResetCodeRepository interface {
	Create(ctx context.Context, userID, code string) Result[string]
	GetByCode(ctx context.Context, code string) Result[*PasswordResetCode]
	// MarkUsed consumes the row with the given id once; a row already consumed is a BadRequest.
	MarkUsed(ctx context.Context, id string, usedAt time.Time) Result[string]
}

// PasswordResetService runs the forgot-password flow.
type PasswordResetService interface {
	IsEmailExist(ctx context.Context, email string) Result[bool]
	SendCode(ctx context.Context, email string) Result[string]
	IsCodeValid(ctx context.Context, code string) Result[bool]
	ResetPassword(ctx context.Context, code, password string) Result[*UserInfo]
}
