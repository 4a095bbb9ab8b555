package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-hub-api/internal/models"
)

const testSecret = "auth-test-secret"

func mintToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func studentClaims(issuer string) models.JWTClaims {
	return models.JWTClaims{
		UserID: "stu-1",
		Email:  "stu1@example.com",
		Role:   models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "stu-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestValidateTokenAcceptsValidToken(t *testing.T) {
	svc := NewAuthService(testSecret, "course-hub")
	token := mintToken(t, testSecret, studentClaims("course-hub"))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "stu-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService(testSecret, "course-hub")
	token := mintToken(t, "some-other-secret", studentClaims("course-hub"))

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	svc := NewAuthService(testSecret, "course-hub")
	token := mintToken(t, testSecret, studentClaims("someone-else"))

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsMissingSubject(t *testing.T) {
	svc := NewAuthService(testSecret, "course-hub")
	claims := studentClaims("course-hub")
	claims.UserID = ""
	token := mintToken(t, testSecret, claims)

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService(testSecret, "course-hub")
	claims := studentClaims("course-hub")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := mintToken(t, testSecret, claims)

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(testSecret, "course-hub")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
