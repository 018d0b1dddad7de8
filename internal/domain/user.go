package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDispatchFailed     = errors.New("verification email dispatch failed")
)

// VerificationState is the per-user email-verification status. It is not
// stored directly; it is derived from the two persisted flags so the flags
// stay the single source of truth.
type VerificationState string

const (
	VerificationNotSent VerificationState = "UNVERIFIED_NO_EMAIL_SENT"
	VerificationSent    VerificationState = "UNVERIFIED_EMAIL_SENT"
	Verified            VerificationState = "VERIFIED"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Nickname     string

	// IsVerified == true implies IsVerificationSent == true; every write
	// that sets IsVerified also sets IsVerificationSent.
	IsVerificationSent bool
	IsVerified         bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) VerificationState() VerificationState {
	switch {
	case u.IsVerified:
		return Verified
	case u.IsVerificationSent:
		return VerificationSent
	default:
		return VerificationNotSent
	}
}

// NormalizeEmail lowercases and trims an address so that lookups and the
// uniqueness constraint agree on case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NicknameFromEmail derives the initial display label: the local part of
// the address before the '@'.
func NicknameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
