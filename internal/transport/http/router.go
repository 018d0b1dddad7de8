package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/mayutangba/loanbook/internal/transport/http/handler"
	"github.com/mayutangba/loanbook/internal/transport/http/middleware"
	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	accountHandler *handler.AccountHandler,
	loanHandler *handler.LoanHandler,
	jwtKey []byte,
) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		sloggin.New(logger),
		gin.Recovery(),
		middleware.Metrics(),
	)

	// Public: account creation, login, and the emailed verification link.
	r.POST("/auth/signup", accountHandler.Signup)
	r.POST("/auth/login", accountHandler.Login)
	r.GET("/verify", accountHandler.Verify)

	authed := r.Group("/", middleware.Auth(jwtKey))
	authed.POST("/auth/resend", accountHandler.Resend)
	authed.GET("/users/:email", accountHandler.ViewUser)
	authed.PATCH("/me", accountHandler.UpdateProfile)
	authed.PUT("/me/password", accountHandler.ChangePassword)
	authed.DELETE("/me", accountHandler.DeleteAccount)

	authed.POST("/loans", loanHandler.Create)
	authed.GET("/loans", loanHandler.ListBetween)
	authed.GET("/loans/balance", loanHandler.Balance)
	authed.GET("/loans/outstanding", loanHandler.Outstanding)
	authed.DELETE("/loans/:id", loanHandler.Delete)

	return r
}
