package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mayutangba/loanbook/internal/domain"
	"github.com/shopspring/decimal"
)

// LoanRepository stores loans with generated pair_lo/pair_hi columns
// (LEAST/GREATEST of the two party ids), so a bidirectional pair lookup is
// one indexed scan instead of an OR of two directional predicates.
type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, lender_id, borrower_id, amount::text, date,
	name, description, category, created_at`

func (r *LoanRepository) Insert(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	query := `
		INSERT INTO loans (lender_id, borrower_id, amount, date, name, description, category)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
		RETURNING ` + loanColumns

	row := r.pool.QueryRow(ctx, query,
		loan.LenderID,
		loan.BorrowerID,
		loan.Amount.String(),
		loan.Date,
		loan.Name,
		loan.Description,
		loan.Category,
	)
	return scanLoan(row)
}

func (r *LoanRepository) FindByID(ctx context.Context, id int64) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return scanLoan(r.pool.QueryRow(ctx, query, id))
}

// Remove is a no-op when the loan no longer exists.
func (r *LoanRepository) Remove(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove loan: %w", err)
	}
	return nil
}

func (r *LoanRepository) FindBetween(ctx context.Context, userA, userB string) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE pair_lo = LEAST($1::text, $2::text)
		  AND pair_hi = GREATEST($1::text, $2::text)
		ORDER BY date DESC, id ASC`

	rows, err := r.pool.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("find loans between: %w", err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

func (r *LoanRepository) FindOutstandingForBorrower(ctx context.Context, userID string) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE borrower_id = $1 AND amount > 0
		ORDER BY date DESC, id ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("find outstanding loans: %w", err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

func collectLoans(rows pgx.Rows) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

// The amount travels as text so NUMERIC precision survives the round trip.
func scanLoan(row rowScanner) (*domain.Loan, error) {
	var (
		l         domain.Loan
		amountStr string
	)
	err := row.Scan(
		&l.ID, &l.LenderID, &l.BorrowerID, &amountStr, &l.Date,
		&l.Name, &l.Description, &l.Category, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, fmt.Errorf("scan loan: %w", err)
	}

	l.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse loan amount %q: %w", amountStr, err)
	}
	return &l, nil
}
