package repository

import (
	"context"

	"github.com/mayutangba/loanbook/internal/domain"
)

// Usecases depend on the interface, not the concrete implementation.
// This way we get: 1) can swap DB later without touching usecases 2) we can
// pass a mock implementation of the interface in tests.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// MarkVerificationSent and MarkVerified are each one atomic write; the
	// caller reports success only after they return. MarkVerified sets both
	// flags so is_verified never holds without is_verification_sent.
	MarkVerificationSent(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string) error

	UpdateNickname(ctx context.Context, id, nickname string) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error

	// Delete is idempotent: removing an absent user is not an error.
	Delete(ctx context.Context, id string) error
}
