package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mayutangba/loanbook/internal/domain"
	"github.com/mayutangba/loanbook/internal/metrics"
	"github.com/mayutangba/loanbook/internal/repository"
	"github.com/shopspring/decimal"
)

type LedgerUsecase struct {
	loans repository.LoanRepository
}

func NewLedgerUsecase(loans repository.LoanRepository) *LedgerUsecase {
	return &LedgerUsecase{loans: loans}
}

type RecordLoanInput struct {
	LenderID    string
	BorrowerID  string
	Amount      decimal.Decimal
	Date        time.Time
	Name        string
	Description string
	Category    string
}

// RecordLoan validates the ledger invariants (distinct parties, positive
// amount) and persists the record. Invalid input fails with ErrInvalidLoan
// and is never silently corrected.
func (u *LedgerUsecase) RecordLoan(ctx context.Context, input RecordLoanInput) (*domain.Loan, error) {
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	loan := &domain.Loan{
		LenderID:    input.LenderID,
		BorrowerID:  input.BorrowerID,
		Amount:      input.Amount,
		Date:        input.Date,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
	}
	if err := loan.Validate(); err != nil {
		return nil, err
	}

	created, err := u.loans.Insert(ctx, loan)
	if err != nil {
		return nil, fmt.Errorf("record loan: %w", err)
	}
	metrics.LoansRecordedTotal.Inc()
	return created, nil
}

// LoansBetween returns every loan connecting the pair in either direction,
// most recent first.
func (u *LedgerUsecase) LoansBetween(ctx context.Context, userA, userB string) ([]*domain.Loan, error) {
	loans, err := u.loans.FindBetween(ctx, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("loans between: %w", err)
	}
	return loans, nil
}

// NetBalance sums signed contributions over every loan connecting the pair:
// positive from userA's perspective when userA lent. A positive result means
// userB owes userA. Antisymmetric by construction: swapping the arguments
// negates every term.
func (u *LedgerUsecase) NetBalance(ctx context.Context, userA, userB string) (decimal.Decimal, error) {
	loans, err := u.loans.FindBetween(ctx, userA, userB)
	if err != nil {
		return decimal.Zero, fmt.Errorf("net balance: %w", err)
	}

	balance := decimal.Zero
	for _, l := range loans {
		if l.LenderID == userA {
			balance = balance.Add(l.Amount)
		} else {
			balance = balance.Sub(l.Amount)
		}
	}
	return balance, nil
}

// OutstandingDebtTotal is the sum of everything the user currently owes
// across all lenders.
func (u *LedgerUsecase) OutstandingDebtTotal(ctx context.Context, userID string) (decimal.Decimal, error) {
	loans, err := u.loans.FindOutstandingForBorrower(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("outstanding debt: %w", err)
	}

	total := decimal.Zero
	for _, l := range loans {
		total = total.Add(l.Amount)
	}
	return total, nil
}

// OutstandingLoans returns the user's open borrowings, most recent first.
func (u *LedgerUsecase) OutstandingLoans(ctx context.Context, userID string) ([]*domain.Loan, error) {
	loans, err := u.loans.FindOutstandingForBorrower(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("outstanding loans: %w", err)
	}
	return loans, nil
}

// DeleteLoan removes a record on behalf of one of its parties. Deleting an
// id that is already absent succeeds (idempotent); a requester who is
// neither lender nor borrower gets ErrForbidden.
func (u *LedgerUsecase) DeleteLoan(ctx context.Context, id int64, requesterID string) error {
	loan, err := u.loans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return nil
		}
		return fmt.Errorf("find loan: %w", err)
	}

	if loan.LenderID != requesterID && loan.BorrowerID != requesterID {
		return domain.ErrForbidden
	}

	if err := u.loans.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	metrics.LoansDeletedTotal.Inc()
	return nil
}
