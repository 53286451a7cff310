package domain

import (
	"context"
	"time"
)

// User represents a registered account. Username and email are stored trimmed and lower-cased.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserCredentials is what login needs to verify a password and issue a token.
type UserCredentials struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// UserInfo is the minimal identity returned after a password reset.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenClaims are the identity claims carried by an access token.
// UserID travels as the token issuer.
type TokenClaims struct {
	UserID   string `json:"iss"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PasswordHasher hashes and verifies passwords with a slow adaptive hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer issues signed access tokens.
type TokenIssuer interface {
	Issue(claims TokenClaims, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) Result[bool]
	ExistsByEmail(ctx context.Context, email string) Result[bool]
	Create(ctx context.Context, username, email, passwordHash string) Result[string]
	GetByUsername(ctx context.Context, username string) Result[*User]
	GetByEmail(ctx context.Context, email string) Result[*User]
	GetByID(ctx context.Context, id string) Result[*User]
	UpdatePassword(ctx context.Context, id, passwordHash string) Result[string]
}

// UserService covers registration, credential lookup and token issuance.
type UserService interface {
	IsUsernameEmailInUse(ctx context.Context, username, email string) Result[bool]
	AddNewUser(ctx context.Context, username, email, password string) Result[string]
	GetCredentials(ctx context.Context, login string) Result[*UserCredentials]
	GenerateJWT(userID, username, email string) Result[string]
	ComparePasswords(password, hash string) bool
}
