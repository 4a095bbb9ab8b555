package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner mints and checks HMAC download tokens. A token binds a
// job ID to a file path with an expiry, so report downloads need no
// session.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner builds a signer. A non-positive TTL defaults to one
// day.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

// Token layout: jobID.expiryUnix.base64(path).hexSignature

// Generate signs a token for the job and file path.
func (s *SignedURLSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("jobID and relPath required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	sig := s.sign(jobID, exp, encPath)
	return strings.Join([]string{jobID, exp, encPath, sig}, "."), expiresAt, nil
}

// Parse checks a token's signature and expiry and returns its parts.
// allowExpired skips the expiry check, which cleanup routines use.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("malformed token")
	}
	jobID, exp, encPath, sig := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(jobID, exp, encPath)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return "", "", time.Time{}, fmt.Errorf("bad token signature")
	}

	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("bad token expiry")
	}
	expiresAt = time.Unix(expUnix, 0)
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}

	raw, err := base64.RawURLEncoding.DecodeString(encPath)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("bad token path: %w", err)
	}
	return jobID, string(raw), expiresAt, nil
}

func (s *SignedURLSigner) sign(jobID, exp, encPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%s|%s", jobID, exp, encPath)
	return hex.EncodeToString(mac.Sum(nil))
}
