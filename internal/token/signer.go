// Package token issues and validates the stateless signed tokens used for
// email verification. A token binds a user id, an email address and a
// purpose string to an absolute expiry; validity is re-derived from the
// HMAC signature, so nothing is persisted server-side.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired         = errors.New("token expired")
	ErrBadSignature    = errors.New("token signature invalid")
	ErrSubjectMismatch = errors.New("token subject mismatch")
)

type claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Signer is stateless and pure given its secret. Rotating the secret
// invalidates every outstanding token.
type Signer struct {
	secret []byte
}

func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

// Issue creates an HS256-signed token for the subject, valid for ttl.
func (s *Signer) Issue(subjectID, email, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature and expiry, then that the token was issued
// for exactly this subject and purpose. The returned error distinguishes
// expired, tampered and wrong-subject tokens so callers can branch the
// user-facing remediation. A token presented for a different purpose is a
// cross-context replay and reports ErrSubjectMismatch.
func (s *Signer) Validate(raw, subjectID, email, purpose string) error {
	var c claims
	t, err := jwt.ParseWithClaims(raw, &c,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrBadSignature
	}
	if !t.Valid {
		return ErrBadSignature
	}

	if c.Subject != subjectID || c.Email != email || c.Purpose != purpose {
		return ErrSubjectMismatch
	}
	return nil
}
