package service

import (
	"fmt"

	"agent-payment-gateway/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// JWTTokenService validates admin bearer tokens. Tokens are issued by an
// external identity provider sharing the HMAC secret; this service only
// verifies them.
type JWTTokenService struct {
	secret string
	issuer string
}

// NewJWTTokenService creates a new JWTTokenService.
func NewJWTTokenService(secret string, issuer string) *JWTTokenService {
	return &JWTTokenService{secret: secret, issuer: issuer}
}

type adminClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Validate parses and verifies a token string, returning its claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	claims := &adminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &ports.TokenClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
	}, nil
}
