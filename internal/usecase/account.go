package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mayutangba/loanbook/internal/domain"
	"github.com/mayutangba/loanbook/internal/email"
	"github.com/mayutangba/loanbook/internal/metrics"
	"github.com/mayutangba/loanbook/internal/password"
	"github.com/mayutangba/loanbook/internal/repository"
	"github.com/mayutangba/loanbook/internal/token"
)

const (
	verifyPurpose    = "verify-email"
	defaultVerifyTTL = 1 * time.Hour
	defaultJWTTTL    = 24 * time.Hour
)

type AccountUsecase struct {
	users          repository.UserRepository
	email          email.Sender
	hasher         password.Hasher
	signer         *token.Signer
	jwtKey         []byte
	verifyTTL      time.Duration
	jwtTTL         time.Duration
	verifyLinkBase string
}

func NewAccountUsecase(
	users repository.UserRepository,
	emailSender email.Sender,
	hasher password.Hasher,
	signer *token.Signer,
	jwtKey []byte,
	verifyLinkBase string,
) *AccountUsecase {
	return &AccountUsecase{
		users:          users,
		email:          emailSender,
		hasher:         hasher,
		signer:         signer,
		jwtKey:         jwtKey,
		verifyTTL:      defaultVerifyTTL,
		jwtTTL:         defaultJWTTTL,
		verifyLinkBase: verifyLinkBase,
	}
}

// Signup creates the account in UNVERIFIED_NO_EMAIL_SENT state. The caller
// follows up with IssueVerification; keeping the two apart means a failed
// mail dispatch leaves a retryable account instead of losing the signup.
func (u *AccountUsecase) Signup(ctx context.Context, emailAddr, plaintext string) (*domain.User, error) {
	emailAddr = domain.NormalizeEmail(emailAddr)

	if _, err := u.users.FindByEmail(ctx, emailAddr); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := u.hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: hash,
		Nickname:     domain.NicknameFromEmail(emailAddr),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// IssueVerification signs a verification token, emails the signed URL and
// durably records the send. A repeat call for a user who already received
// the email (or is already verified) is a no-op and returns an empty URL.
// The sent flag is only flipped after dispatch succeeded.
func (u *AccountUsecase) IssueVerification(ctx context.Context, userID string) (string, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.VerificationState() != domain.VerificationNotSent {
		return "", nil
	}

	raw, err := u.signer.Issue(user.ID, user.Email, verifyPurpose, u.verifyTTL)
	if err != nil {
		return "", err
	}
	signedURL := u.verifyLinkBase + "/verify?id=" + url.QueryEscape(user.ID) + "&token=" + url.QueryEscape(raw)

	subject := "Confirm Your Email and Get Started"
	body := fmt.Sprintf(
		`<p>Click the link below to confirm your email (expires in 1 hour):</p><p><a href="%s">%s</a></p>`,
		signedURL, signedURL,
	)
	if err = u.email.Send(ctx, user.Email, subject, body); err != nil {
		metrics.VerificationEmailsTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrDispatchFailed, err)
	}
	metrics.VerificationEmailsTotal.WithLabelValues("sent").Inc()

	if err = u.users.MarkVerificationSent(ctx, user.ID); err != nil {
		return "", err
	}
	return signedURL, nil
}

// ConfirmVerification validates the presented token against the target user
// and persists the VERIFIED transition before reporting success. Validation
// on an already-verified user short-circuits to success; validation failure
// leaves stored state untouched.
func (u *AccountUsecase) ConfirmVerification(ctx context.Context, userID, rawToken string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.IsVerified {
		metrics.TokenValidationsTotal.WithLabelValues("already_verified").Inc()
		return nil
	}

	if err := u.signer.Validate(rawToken, user.ID, user.Email, verifyPurpose); err != nil {
		metrics.TokenValidationsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	if err := u.users.MarkVerified(ctx, user.ID); err != nil {
		return err
	}
	metrics.TokenValidationsTotal.WithLabelValues("validated").Inc()
	return nil
}

// Login checks the credentials and returns a signed session JWT.
func (u *AccountUsecase) Login(ctx context.Context, emailAddr, plaintext string) (string, error) {
	user, err := u.users.FindByEmail(ctx, domain.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err := u.hasher.Compare(user.PasswordHash, plaintext); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(u.jwtTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign session jwt: %w", err)
	}
	return signed, nil
}

func (u *AccountUsecase) FindByEmail(ctx context.Context, emailAddr string) (*domain.User, error) {
	return u.users.FindByEmail(ctx, domain.NormalizeEmail(emailAddr))
}

func (u *AccountUsecase) UpdateNickname(ctx context.Context, userID, nickname string) error {
	return u.users.UpdateNickname(ctx, userID, nickname)
}

func (u *AccountUsecase) ChangePassword(ctx context.Context, userID, plaintext string) error {
	hash, err := u.hasher.Hash(plaintext)
	if err != nil {
		return err
	}
	return u.users.UpdatePasswordHash(ctx, userID, hash)
}

// DeleteAccount is idempotent: deleting an account that no longer exists
// succeeds.
func (u *AccountUsecase) DeleteAccount(ctx context.Context, userID string) error {
	return u.users.Delete(ctx, userID)
}
