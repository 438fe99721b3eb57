package handler

import (
	"github.com/dafibh/fortuna/loan-ledger/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. A nil authMiddleware leaves the API open.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, loanHandler *LoanHandler, attachmentHandler *AttachmentHandler) {
	api := e.Group("/api/v1")

	loans := api.Group("/loans")
	if authMiddleware != nil {
		loans.Use(authMiddleware.Authenticate())
	}
	if rateLimiter != nil {
		loans.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	loans.POST("", loanHandler.CreateLoan)
	loans.GET("", loanHandler.GetLoans)
	loans.GET("/summary", loanHandler.GetSummary)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.PATCH("/:id", loanHandler.UpdateLoan)
	loans.DELETE("/:id", loanHandler.DeleteLoan)
	loans.POST("/:id/payments", loanHandler.RecordPayment)
	loans.POST("/:id/close", loanHandler.CloseLoan)
	loans.GET("/:id/statement.xlsx", loanHandler.ExportStatement)

	loans.POST("/:id/attachments", attachmentHandler.UploadAttachment)
	loans.GET("/:id/attachments", attachmentHandler.GetAttachments)
	loans.DELETE("/:id/attachments/:attachmentId", attachmentHandler.DeleteAttachment)
}
