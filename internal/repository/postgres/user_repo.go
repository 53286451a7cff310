package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"videoinvites/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) domain.Result[bool] {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return domain.Fail[bool](dbError(err))
	}
	return domain.Ok(exists)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) domain.Result[bool] {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return domain.Fail[bool](dbError(err))
	}
	return domain.Ok(exists)
}

func (r *userRepository) Create(ctx context.Context, username, email, passwordHash string) domain.Result[string] {
	query := `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id string
	err := r.DB.QueryRowContext(ctx, query, username, email, passwordHash).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Fail[string](domain.NewDatabaseError("error during insertion of the new user"))
		}
		return domain.Fail[string](dbError(err))
	}
	return domain.Ok(id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) domain.Result[*domain.User] {
	return r.getOne(ctx, "username", username, fmt.Sprintf("account was not found: %s", username))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) domain.Result[*domain.User] {
	return r.getOne(ctx, "email", email, fmt.Sprintf("account was not found: %s", email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) domain.Result[*domain.User] {
	return r.getOne(ctx, "id", id, fmt.Sprintf("User was not found: %s", id))
}

// getOne loads a user by one of the fixed lookup columns above.
func (r *userRepository) getOne(ctx context.Context, column, value, notFound string) domain.Result[*domain.User] {
	query := `
		SELECT id, username, email, password, created_at
		FROM users
		WHERE ` + column + ` = $1
		LIMIT 1
	`
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, value).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Fail[*domain.User](domain.NewNotFoundError(notFound))
		}
		return domain.Fail[*domain.User](dbError(err))
	}
	return domain.Ok(u)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) domain.Result[string] {
	query := `UPDATE users SET password = $1 WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return domain.Fail[string](dbError(err))
	}
	return affected(result, id, fmt.Sprintf("User was not found: %s", id))
}
