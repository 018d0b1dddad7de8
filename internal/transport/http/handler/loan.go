package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mayutangba/loanbook/internal/domain"
	"github.com/mayutangba/loanbook/internal/usecase"
	"github.com/shopspring/decimal"
)

type ledgerUsecaser interface {
	RecordLoan(ctx context.Context, input usecase.RecordLoanInput) (*domain.Loan, error)
	LoansBetween(ctx context.Context, userA, userB string) ([]*domain.Loan, error)
	NetBalance(ctx context.Context, userA, userB string) (decimal.Decimal, error)
	OutstandingDebtTotal(ctx context.Context, userID string) (decimal.Decimal, error)
	OutstandingLoans(ctx context.Context, userID string) ([]*domain.Loan, error)
	DeleteLoan(ctx context.Context, id int64, requesterID string) error
}

type LoanHandler struct {
	ledger ledgerUsecaser
	logger *slog.Logger
}

func NewLoanHandler(ledger ledgerUsecaser, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{ledger: ledger, logger: logger.With("component", "loan_handler")}
}

// Amounts travel as strings so decimal precision survives JSON.
type createLoanRequest struct {
	LenderID    string     `json:"lender_id"   binding:"required"`
	BorrowerID  string     `json:"borrower_id" binding:"required"`
	Amount      string     `json:"amount"      binding:"required"`
	Date        *time.Time `json:"date"`
	Name        string     `json:"name"        binding:"required,max=256"`
	Description string     `json:"description" binding:"max=1024"`
	Category    string     `json:"category"    binding:"max=64"`
}

type loanResponse struct {
	ID          int64     `json:"id"`
	LenderID    string    `json:"lender_id"`
	BorrowerID  string    `json:"borrower_id"`
	Amount      string    `json:"amount"`
	Date        time.Time `json:"date"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toLoanResponse(l *domain.Loan) loanResponse {
	return loanResponse{
		ID:          l.ID,
		LenderID:    l.LenderID,
		BorrowerID:  l.BorrowerID,
		Amount:      l.Amount.String(),
		Date:        l.Date,
		Name:        l.Name,
		Description: l.Description,
		Category:    l.Category,
		CreatedAt:   l.CreatedAt,
	}
}

func toLoanResponses(loans []*domain.Loan) []loanResponse {
	out := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l))
	}
	return out
}

// POST /loans
// The authenticated user must be one of the two parties.
func (h *LoanHandler) Create(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	if req.LenderID != userID && req.BorrowerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLoan})
		return
	}

	input := usecase.RecordLoanInput{
		LenderID:    req.LenderID,
		BorrowerID:  req.BorrowerID,
		Amount:      amount,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	loan, err := h.ledger.RecordLoan(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidLoan) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLoan})
			return
		}
		h.logger.Error("record loan", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, toLoanResponse(loan))
}

// GET /loans?peer=<user>
// All loans between the authenticated user and peer, most recent first.
func (h *LoanHandler) ListBetween(c *gin.Context) {
	peer := c.Query("peer")
	if peer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "peer is required"})
		return
	}

	userID := c.GetString("userID")
	loans, err := h.ledger.LoansBetween(c.Request.Context(), userID, peer)
	if err != nil {
		h.logger.Error("list loans", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"loans": toLoanResponses(loans)})
}

// GET /loans/balance?peer=<user>
// Positive means peer owes the authenticated user.
func (h *LoanHandler) Balance(c *gin.Context) {
	peer := c.Query("peer")
	if peer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "peer is required"})
		return
	}

	userID := c.GetString("userID")
	balance, err := h.ledger.NetBalance(c.Request.Context(), userID, peer)
	if err != nil {
		h.logger.Error("net balance", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"peer": peer, "net_balance": balance.String()})
}

// GET /loans/outstanding
// Everything the authenticated user currently owes.
func (h *LoanHandler) Outstanding(c *gin.Context) {
	userID := c.GetString("userID")

	loans, err := h.ledger.OutstandingLoans(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("outstanding loans", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	total, err := h.ledger.OutstandingDebtTotal(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("outstanding total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": total.String(),
		"loans": toLoanResponses(loans),
	})
}

// DELETE /loans/:id
// Idempotent: a second delete of the same id still returns 204.
func (h *LoanHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loan id"})
		return
	}

	userID := c.GetString("userID")
	if err := h.ledger.DeleteLoan(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
			return
		}
		h.logger.Error("delete loan", "loan_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}
