package token_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mayutangba/loanbook/internal/token"
)

const (
	testSecret  = "signer-test-secret-at-least-32ch!!"
	testSubject = "user-7"
	testEmail   = "a@x.com"
	testPurpose = "verify-email"
)

func TestIssueValidate_RoundTrip(t *testing.T) {
	s := token.NewSigner([]byte(testSecret))

	raw, err := s.Issue(testSubject, testEmail, testPurpose, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := s.Validate(raw, testSubject, testEmail, testPurpose); err != nil {
		t.Errorf("validate immediately after issue: %v", err)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	s := token.NewSigner([]byte(testSecret))

	raw, err := s.Issue(testSubject, testEmail, testPurpose, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := s.Validate(raw, testSubject, testEmail, testPurpose); !errors.Is(err, token.ErrExpired) {
		t.Errorf("want ErrExpired, got %v", err)
	}
}

func TestValidate_WrongSubjectID(t *testing.T) {
	s := token.NewSigner([]byte(testSecret))

	raw, _ := s.Issue(testSubject, testEmail, testPurpose, time.Hour)

	if err := s.Validate(raw, "user-8", testEmail, testPurpose); !errors.Is(err, token.ErrSubjectMismatch) {
		t.Errorf("want ErrSubjectMismatch, got %v", err)
	}
}

func TestValidate_WrongEmail(t *testing.T) {
	s := token.NewSigner([]byte(testSecret))

	raw, _ := s.Issue(testSubject, testEmail, testPurpose, time.Hour)

	if err := s.Validate(raw, testSubject, "b@x.com", testPurpose); !errors.Is(err, token.ErrSubjectMismatch) {
		t.Errorf("want ErrSubjectMismatch, got %v", err)
	}
}

func TestValidate_WrongPurpose(t *testing.T) {
	s := token.NewSigner([]byte(testSecret))

	raw, _ := s.Issue(testSubject, testEmail, testPurpose, time.Hour)

	if err := s.Validate(raw, testSubject, testEmail, "reset-password"); !errors.Is(err, token.ErrSubjectMismatch) {
		t.Errorf("want ErrSubjectMismatch, got %v", err)
	}
}

func TestValidate_TamperedPayload(t *testing.T) {
	s := token.NewSigner([]byte(testSecret))

	raw, _ := s.Issue(testSubject, testEmail, testPurpose, time.Hour)

	// Flip a character in the payload segment; the signature no longer matches.
	parts := strings.SplitN(raw, ".", 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if err := s.Validate(tampered, testSubject, testEmail, testPurpose); !errors.Is(err, token.ErrBadSignature) {
		t.Errorf("want ErrBadSignature, got %v", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	raw, _ := token.NewSigner([]byte(testSecret)).Issue(testSubject, testEmail, testPurpose, time.Hour)

	other := token.NewSigner([]byte("a-completely-different-32-char-key"))
	if err := other.Validate(raw, testSubject, testEmail, testPurpose); !errors.Is(err, token.ErrBadSignature) {
		t.Errorf("want ErrBadSignature, got %v", err)
	}
}
