package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mayutangba/loanbook/internal/domain"
	"github.com/mayutangba/loanbook/internal/token"
)

// Verification statuses reported to the presentation layer.
const (
	verificationValidated = "VERIFICATION_EMAIL_VALIDATED"
	verificationFailed    = "VERIFICATION_EMAIL_FAILED"
)

// accountUsecaser is the subset of AccountUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type accountUsecaser interface {
	Signup(ctx context.Context, email, plaintext string) (*domain.User, error)
	IssueVerification(ctx context.Context, userID string) (string, error)
	ConfirmVerification(ctx context.Context, userID, rawToken string) error
	Login(ctx context.Context, email, plaintext string) (string, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateNickname(ctx context.Context, userID, nickname string) error
	ChangePassword(ctx context.Context, userID, plaintext string) error
	DeleteAccount(ctx context.Context, userID string) error
}

type AccountHandler struct {
	accounts accountUsecaser
	logger   *slog.Logger
}

func NewAccountHandler(accounts accountUsecaser, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With("component", "account_handler"),
	}
}

type signupRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type userResponse struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	Nickname          string `json:"nickname"`
	VerificationState string `json:"verification_state"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Email:             u.Email,
		Nickname:          u.Nickname,
		VerificationState: string(u.VerificationState()),
	}
}

// POST /auth/signup
// Creates the account, then dispatches the verification email. A failed
// dispatch still returns 201 — the account exists and the response's
// verification_state tells the client a resend is needed.
func (h *AccountHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
			return
		}
		h.logger.Error("signup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	if _, err := h.accounts.IssueVerification(c.Request.Context(), user.ID); err != nil {
		h.logger.Error("signup verification dispatch", "user_id", user.ID, "error", err)
	} else {
		user.IsVerificationSent = true
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/login
// Returns {"token": "<jwt>"} on success, 401 on bad credentials.
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jwtToken, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logger.Error("login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": jwtToken})
}

// GET /verify?id=<user>&token=<raw>
// Unauthenticated entry point from the emailed link. The failure reason is
// machine-distinguishable so the client can offer the right remediation
// (resend vs. contact support).
func (h *AccountHandler) Verify(c *gin.Context) {
	userID := c.Query("id")
	rawToken := c.Query("token")
	if userID == "" || rawToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and token are required"})
		return
	}

	err := h.accounts.ConfirmVerification(c.Request.Context(), userID, rawToken)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"verification_status": verificationValidated})
		return
	}

	if errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}

	if reason, ok := verificationFailureReason(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"verification_status": verificationFailed,
			"reason":              reason,
		})
		return
	}

	h.logger.Error("confirm verification", "user_id", userID, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}

func verificationFailureReason(err error) (string, bool) {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "TOKEN_EXPIRED", true
	case errors.Is(err, token.ErrBadSignature):
		return "TOKEN_INVALID_SIGNATURE", true
	case errors.Is(err, token.ErrSubjectMismatch):
		return "TOKEN_SUBJECT_MISMATCH", true
	default:
		return "", false
	}
}

// POST /auth/resend
// No-op (still 200) when the email was already sent or the user is verified.
func (h *AccountHandler) Resend(c *gin.Context) {
	userID := c.GetString("userID")

	signedURL, err := h.accounts.IssueVerification(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrDispatchFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": errDispatchFailed})
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("resend verification", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verification_email_sent": signedURL != ""})
}

// GET /users/:email
func (h *AccountHandler) ViewUser(c *gin.Context) {
	user, err := h.accounts.FindByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("view user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, userResponse{
		ID:       user.ID,
		Email:    user.Email,
		Nickname: user.Nickname,
	})
}

type updateProfileRequest struct {
	Nickname string `json:"nickname" binding:"required,max=64"`
}

// PATCH /me
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	if err := h.accounts.UpdateNickname(c.Request.Context(), userID, req.Nickname); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("update profile", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// PUT /me/password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	if err := h.accounts.ChangePassword(c.Request.Context(), userID, req.Password); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("change password", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}

// DELETE /me
// Idempotent: deleting an account that is already gone still returns 204.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.accounts.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.logger.Error("delete account", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}
