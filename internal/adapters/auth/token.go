package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"videoinvites/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
}

type jwtIssuer struct {
	secret []byte
	now    func() time.Time
}

// JWTIssuer issues and verifies HS256 tokens.
type JWTIssuer interface {
	domain.TokenIssuer
	domain.TokenVerifier
}

// NewJWTIssuer returns a JWTIssuer that signs with HS256 using the given secret.
// The user id travels in the iss claim.
func NewJWTIssuer(secret string) JWTIssuer {
	return &jwtIssuer{secret: []byte(secret), now: time.Now}
}

func (i *jwtIssuer) Issue(claims domain.TokenClaims, expiry time.Duration) (string, error) {
	now := i.now()
	c := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Username: claims.Username,
		Email:    claims.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (i *jwtIssuer) Verify(token string) (*domain.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	c, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if c.Issuer == "" {
		return nil, errors.New("token has no issuer")
	}
	return &domain.TokenClaims{UserID: c.Issuer, Username: c.Username, Email: c.Email}, nil
}
