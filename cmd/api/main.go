package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/fortuna/loan-ledger/docs"
	"github.com/dafibh/fortuna/loan-ledger/internal/config"
	"github.com/dafibh/fortuna/loan-ledger/internal/handler"
	"github.com/dafibh/fortuna/loan-ledger/internal/middleware"
	"github.com/dafibh/fortuna/loan-ledger/internal/repository/postgres"
	"github.com/dafibh/fortuna/loan-ledger/internal/repository/storage"
	"github.com/dafibh/fortuna/loan-ledger/internal/service"
	"github.com/dafibh/fortuna/loan-ledger/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title Loan Ledger API
// @version 1.0
// @description Personal loan ledger with period-based interest accrual
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	// Initialize repositories
	loanRepo := postgres.NewLoanRepository(pool, cfg.Location)
	attachmentRepo := postgres.NewAttachmentRepository(pool)

	// Attachment storage is optional
	var objectStorage storage.ObjectStorage
	if cfg.S3.Enabled() {
		s3Storage, err := storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		objectStorage = s3Storage
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Attachment storage enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, attachment uploads are disabled")
	}

	hub := websocket.NewHub()

	// Initialize services
	loanService := service.NewLoanService(loanRepo, service.LoanServiceConfig{
		Location:      cfg.Location,
		MonthlyPolicy: cfg.MonthlyPolicy,
	})
	loanService.SetEventPublisher(hub)

	attachmentService := service.NewAttachmentService(attachmentRepo, loanRepo, objectStorage)
	attachmentService.SetEventPublisher(hub)
	loanService.SetAttachmentPurger(attachmentService)

	statementService := service.NewStatementService(loanService)

	accrualWorker := service.NewAccrualWorker(loanService, hub, log.Logger, service.AccrualWorkerConfig{
		Interval: cfg.AccrualWorkerInterval,
	})

	// Auth is enabled only when Auth0 is configured
	var authMiddleware *middleware.AuthMiddleware
	var tokenValidator websocket.TokenValidator
	if cfg.AuthEnabled() {
		authMiddleware, err = middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth middleware")
		}
		wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
		}
		tokenValidator = wsValidator
	} else {
		log.Warn().Msg("AUTH0_DOMAIN not set, API is unauthenticated")
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Initialize handlers
	loanHandler := handler.NewLoanHandler(loanService, statementService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	wsHandler := handler.NewWebSocketHandler(hub, tokenValidator, cfg.CORSOrigins)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	e.Use(echomiddleware.BodyLimit("6M"))
	e.Use(zerologMiddleware())
	e.Use(echomiddleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/ws", wsHandler.HandleWS)

	if !cfg.IsProduction() {
		docs.SwaggerInfo.Host = "localhost:" + cfg.Port
		e.GET("/swagger/*", echoSwagger.WrapHandler)
		e.GET("/openapi.json", handler.NewOpenAPIHandler(cfg.PublicURL).Serve)
	}

	handler.RegisterRoutes(e, authMiddleware, rateLimiter, loanHandler, attachmentHandler)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	accrualWorker.Start(workerCtx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	accrualWorker.Stop()
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
