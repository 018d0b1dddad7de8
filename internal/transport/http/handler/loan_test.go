package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mayutangba/loanbook/internal/domain"
	"github.com/mayutangba/loanbook/internal/transport/http/handler"
	"github.com/mayutangba/loanbook/internal/usecase"
	"github.com/shopspring/decimal"
)

type fakeLedgerUsecase struct {
	recordLoan           func(ctx context.Context, input usecase.RecordLoanInput) (*domain.Loan, error)
	loansBetween         func(ctx context.Context, userA, userB string) ([]*domain.Loan, error)
	netBalance           func(ctx context.Context, userA, userB string) (decimal.Decimal, error)
	outstandingDebtTotal func(ctx context.Context, userID string) (decimal.Decimal, error)
	outstandingLoans     func(ctx context.Context, userID string) ([]*domain.Loan, error)
	deleteLoan           func(ctx context.Context, id int64, requesterID string) error
}

func (f *fakeLedgerUsecase) RecordLoan(ctx context.Context, input usecase.RecordLoanInput) (*domain.Loan, error) {
	return f.recordLoan(ctx, input)
}

func (f *fakeLedgerUsecase) LoansBetween(ctx context.Context, userA, userB string) ([]*domain.Loan, error) {
	return f.loansBetween(ctx, userA, userB)
}

func (f *fakeLedgerUsecase) NetBalance(ctx context.Context, userA, userB string) (decimal.Decimal, error) {
	return f.netBalance(ctx, userA, userB)
}

func (f *fakeLedgerUsecase) OutstandingDebtTotal(ctx context.Context, userID string) (decimal.Decimal, error) {
	return f.outstandingDebtTotal(ctx, userID)
}

func (f *fakeLedgerUsecase) OutstandingLoans(ctx context.Context, userID string) ([]*domain.Loan, error) {
	return f.outstandingLoans(ctx, userID)
}

func (f *fakeLedgerUsecase) DeleteLoan(ctx context.Context, id int64, requesterID string) error {
	return f.deleteLoan(ctx, id, requesterID)
}

// newLoanEngine wires the handler with the userID the auth middleware would
// have set for an authenticated "user-1".
func newLoanEngine(uc *fakeLedgerUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewLoanHandler(uc, logger)

	asUser := func(next gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set("userID", "user-1")
			next(c)
		}
	}

	r := gin.New()
	r.POST("/loans", asUser(h.Create))
	r.GET("/loans", asUser(h.ListBetween))
	r.GET("/loans/balance", asUser(h.Balance))
	r.GET("/loans/outstanding", asUser(h.Outstanding))
	r.DELETE("/loans/:id", asUser(h.Delete))
	return r
}

// ---- Create ----

func TestCreateLoan_Valid_Returns201(t *testing.T) {
	uc := &fakeLedgerUsecase{
		recordLoan: func(_ context.Context, input usecase.RecordLoanInput) (*domain.Loan, error) {
			return &domain.Loan{
				ID:         42,
				LenderID:   input.LenderID,
				BorrowerID: input.BorrowerID,
				Amount:     input.Amount,
				Date:       input.Date,
				Name:       input.Name,
			}, nil
		},
	}
	w := postJSON(newLoanEngine(uc), "/loans",
		`{"lender_id":"user-1","borrower_id":"user-2","amount":"100.50","name":"Lunch"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"amount":"100.5"`) {
		t.Errorf("body %q missing amount", w.Body.String())
	}
}

func TestCreateLoan_RequesterNotParty_Returns403(t *testing.T) {
	w := postJSON(newLoanEngine(&fakeLedgerUsecase{}), "/loans",
		`{"lender_id":"user-2","borrower_id":"user-3","amount":"10","name":"x"}`)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestCreateLoan_MalformedAmount_Returns400(t *testing.T) {
	w := postJSON(newLoanEngine(&fakeLedgerUsecase{}), "/loans",
		`{"lender_id":"user-1","borrower_id":"user-2","amount":"ten","name":"x"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateLoan_InvalidLoan_Returns400(t *testing.T) {
	uc := &fakeLedgerUsecase{
		recordLoan: func(_ context.Context, _ usecase.RecordLoanInput) (*domain.Loan, error) {
			return nil, domain.ErrInvalidLoan
		},
	}
	w := postJSON(newLoanEngine(uc), "/loans",
		`{"lender_id":"user-1","borrower_id":"user-2","amount":"-5","name":"x"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- ListBetween / Balance ----

func TestListBetween_MissingPeer_Returns400(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/loans", nil)
	newLoanEngine(&fakeLedgerUsecase{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListBetween_ReturnsLoansForPair(t *testing.T) {
	uc := &fakeLedgerUsecase{
		loansBetween: func(_ context.Context, userA, userB string) ([]*domain.Loan, error) {
			if userA != "user-1" || userB != "user-2" {
				t.Errorf("pair = (%s, %s), want (user-1, user-2)", userA, userB)
			}
			return []*domain.Loan{
				{ID: 2, LenderID: "user-2", BorrowerID: "user-1", Amount: decimal.NewFromInt(30)},
				{ID: 1, LenderID: "user-1", BorrowerID: "user-2", Amount: decimal.NewFromInt(100)},
			}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/loans?peer=user-2", nil)
	newLoanEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"id":2`) || !strings.Contains(w.Body.String(), `"id":1`) {
		t.Errorf("body %q missing loans", w.Body.String())
	}
}

func TestBalance_ReturnsSignedDecimalString(t *testing.T) {
	uc := &fakeLedgerUsecase{
		netBalance: func(_ context.Context, _, _ string) (decimal.Decimal, error) {
			return decimal.NewFromInt(70), nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/loans/balance?peer=user-2", nil)
	newLoanEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"net_balance":"70"`) {
		t.Errorf("body %q missing net balance", w.Body.String())
	}
}

// ---- Outstanding ----

func TestOutstanding_ReturnsTotalAndLoans(t *testing.T) {
	uc := &fakeLedgerUsecase{
		outstandingLoans: func(_ context.Context, userID string) ([]*domain.Loan, error) {
			return []*domain.Loan{
				{ID: 7, LenderID: "user-9", BorrowerID: userID, Amount: decimal.NewFromInt(40)},
			}, nil
		},
		outstandingDebtTotal: func(_ context.Context, _ string) (decimal.Decimal, error) {
			return decimal.NewFromInt(40), nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/loans/outstanding", nil)
	newLoanEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"total":"40"`) {
		t.Errorf("body %q missing total", w.Body.String())
	}
}

// ---- Delete ----

func TestDeleteLoan_NonNumericID_Returns400(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/loans/abc", nil)
	newLoanEngine(&fakeLedgerUsecase{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeleteLoan_Forbidden_Returns403(t *testing.T) {
	uc := &fakeLedgerUsecase{
		deleteLoan: func(_ context.Context, _ int64, _ string) error {
			return domain.ErrForbidden
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/loans/42", nil)
	newLoanEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestDeleteLoan_Success_Returns204(t *testing.T) {
	var gotID int64
	uc := &fakeLedgerUsecase{
		deleteLoan: func(_ context.Context, id int64, requesterID string) error {
			gotID = id
			if requesterID != "user-1" {
				t.Errorf("requester = %q, want user-1", requesterID)
			}
			return nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/loans/42", nil)
	newLoanEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if gotID != 42 {
		t.Errorf("deleted id = %d, want 42", gotID)
	}
}
