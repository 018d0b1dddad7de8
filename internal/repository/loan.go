package repository

import (
	"context"

	"github.com/mayutangba/loanbook/internal/domain"
)

type LoanRepository interface {
	// Insert assigns the record's id and persists it. Invariants
	// (distinct parties, positive amount) are validated upstream.
	Insert(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)

	FindByID(ctx context.Context, id int64) (*domain.Loan, error)

	// Remove is idempotent: removing an absent id is not an error.
	Remove(ctx context.Context, id int64) error

	// FindBetween returns every record connecting the pair in either
	// orientation, ordered by date DESC; ties keep insertion order.
	FindBetween(ctx context.Context, userA, userB string) ([]*domain.Loan, error)

	// FindOutstandingForBorrower returns records where the user is the
	// borrower and amount > 0, ordered by date DESC.
	FindOutstandingForBorrower(ctx context.Context, userID string) ([]*domain.Loan, error)
}
