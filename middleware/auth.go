package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rya_attendance_backend/models"
	"rya_attendance_backend/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SecretAuthorizer accepts the shared administrator secret.
type SecretAuthorizer struct {
	hash []byte
}

// NewSecretAuthorizer takes a bcrypt hash of the secret. An empty hash
// refuses every token.
func NewSecretAuthorizer(hash string) *SecretAuthorizer {
	return &SecretAuthorizer{hash: []byte(hash)}
}

// NewSecretAuthorizerFromPlain hashes secret before keeping it.
func NewSecretAuthorizerFromPlain(secret string) (*SecretAuthorizer, error) {
	if secret == "" {
		return NewSecretAuthorizer(""), nil
	}
	hash, err := HashSecret(secret)
	if err != nil {
		return nil, err
	}
	return NewSecretAuthorizer(hash), nil
}

func (a *SecretAuthorizer) Enabled() bool {
	return len(a.hash) > 0
}

func (a *SecretAuthorizer) Authorize(ctx context.Context, token string) error {
	if !a.Enabled() || token == "" {
		return store.ErrAuthorizationDenied
	}
	if !VerifySecret(string(a.hash), token) {
		return store.ErrAuthorizationDenied
	}
	return nil
}

// TokenService issues and validates administrator tokens.
type TokenService struct {
	JWTSecret []byte
	TTL       time.Duration
	now       func() time.Time
}

func NewTokenService(jwtSecret []byte, ttl time.Duration) *TokenService {
	return &TokenService{JWTSecret: jwtSecret, TTL: ttl, now: time.Now}
}

// GenerateToken creates a signed admin token.
func (s *TokenService) GenerateToken() (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signed, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *TokenService) Authorize(ctx context.Context, tokenString string) error {
	if len(s.JWTSecret) == 0 || tokenString == "" {
		return store.ErrAuthorizationDenied
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.JWTSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || !claims.Admin {
		return store.ErrAuthorizationDenied
	}
	return nil
}

// AnyAuthorizer accepts a token when any of its authorizers does.
type AnyAuthorizer []store.Authorizer

func (a AnyAuthorizer) Authorize(ctx context.Context, token string) error {
	for _, auth := range a {
		err := auth.Authorize(ctx, token)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrAuthorizationDenied) {
			return err
		}
	}
	return store.ErrAuthorizationDenied
}

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// VerifySecret checks a secret against its bcrypt hash.
func VerifySecret(hashedSecret, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret)) == nil
}

// HashSecret creates a bcrypt hash of a secret.
func HashSecret(secret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
