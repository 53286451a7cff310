package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"videoinvites/internal/domain"
)

type passwordResetCodeRepository struct {
	DB *sql.DB
}

func NewPasswordResetCodeRepository(db *sql.DB) domain.PasswordResetCodeRepository {
	return &passwordResetCodeRepository{DB: db}
}

func (r *passwordResetCodeRepository) Create(ctx context.Context, userID, code string) domain.Result[string] {
	query := `
		INSERT INTO forgot_password (user_id, code)
		VALUES ($1, $2)
		RETURNING code
	`
	var stored string
	if err := r.DB.QueryRowContext(ctx, query, userID, code).Scan(&stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Fail[string](domain.NewDatabaseError("Failed to insert code"))
		}
		return domain.Fail[string](dbError(err))
	}
	return domain.Ok(stored)
}

// GetByCode returns the most recent row for the code.
func (r *passwordResetCodeRepository) GetByCode(ctx context.Context, code string) domain.Result[*domain.PasswordResetCode] {
	query := `
		SELECT id, user_id, code, used_at, created_at
		FROM forgot_password
		WHERE code = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	c := &domain.PasswordResetCode{}
	var usedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, code).Scan(&c.ID, &c.UserID, &c.Code, &usedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Fail[*domain.PasswordResetCode](domain.NewNotFoundError("Code not found"))
		}
		return domain.Fail[*domain.PasswordResetCode](dbError(err))
	}
	if usedAt.Valid {
		t := usedAt.Time
		c.UsedAt = &t
	}
	return domain.Ok(c)
}

// MarkUsed only succeeds for the caller that flips used_at, so a code cannot be redeemed twice.
func (r *passwordResetCodeRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) domain.Result[string] {
	query := `UPDATE forgot_password SET used_at = $1 WHERE id = $2 AND used_at IS NULL`
	result, err := r.DB.ExecContext(ctx, query, usedAt, id)
	if err != nil {
		return domain.Fail[string](dbError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Fail[string](dbError(err))
	}
	if rows == 0 {
		return domain.Fail[string](domain.NewBadRequestError("Code has already been used"))
	}
	return domain.Ok(id)
}
