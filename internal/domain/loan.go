package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound = errors.New("loan not found")
	ErrInvalidLoan  = errors.New("invalid loan")
	ErrForbidden    = errors.New("forbidden")
)

// Loan is a directed obligation: borrower owes lender Amount as of Date.
// Records are immutable once created; corrections are delete + recreate.
type Loan struct {
	ID          int64
	LenderID    string
	BorrowerID  string
	Amount      decimal.Decimal
	Date        time.Time
	Name        string
	Description string
	Category    string
	CreatedAt   time.Time
}

// Validate enforces the ledger's hard invariants: the two parties must be
// distinct, and the amount must be strictly positive. A reversed obligation
// is a separate record with lender and borrower swapped, never a signed
// amount.
func (l *Loan) Validate() error {
	if l.LenderID == "" || l.BorrowerID == "" || l.LenderID == l.BorrowerID {
		return ErrInvalidLoan
	}
	if !l.Amount.IsPositive() {
		return ErrInvalidLoan
	}
	return nil
}
