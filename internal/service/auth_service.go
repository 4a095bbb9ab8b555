package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/course-hub-api/internal/models"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
)

// AuthService validates access tokens issued by the identity provider.
// This service never authenticates users or mints tokens itself.
type AuthService struct {
	secret []byte
	issuer string
}

// NewAuthService constructs AuthService.
func NewAuthService(secret, issuer string) *AuthService {
	return &AuthService{secret: []byte(secret), issuer: issuer}
}

// ValidateToken parses and verifies a bearer token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if s.issuer != "" {
		issuer, err := claims.GetIssuer()
		if err != nil || issuer != s.issuer {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown token issuer")
		}
	}
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing subject")
	}
	return claims, nil
}
