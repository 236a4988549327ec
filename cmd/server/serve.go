package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"expense_ledger/internal/config"
	"expense_ledger/internal/events"
	"expense_ledger/internal/forecast"
	"expense_ledger/internal/handler"
	"expense_ledger/internal/llm"
	"expense_ledger/internal/middleware"
	"expense_ledger/internal/repository"
	"expense_ledger/internal/service"
	"expense_ledger/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
}

// stores bundles the three repositories behind whichever backend is configured.
type stores struct {
	users   repository.UserRepository
	budgets repository.BudgetRepository
	ledger  repository.TransactionRepository
	pool    *pgxpool.Pool
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{users: mem, budgets: mem, ledger: mem}, nil
	}

	pool, err := config.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := config.RunMigrations(cfg.DatabaseURL, config.MigrateUp); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &stores{
		users:   repository.NewUserRepository(pool),
		budgets: repository.NewBudgetRepository(pool),
		ledger:  repository.NewTransactionRepository(pool),
		pool:    pool,
	}, nil
}

func (s *stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func openPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled() {
		return events.Noop{}
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Warn("event publishing disabled", "err", err)
		return events.Noop{}
	}
	log.Info("publishing ledger events", "exchange", cfg.AMQPExchange)
	return publisher
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	publisher := openPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("failed to close event publisher", "err", err)
		}
	}()

	router := newRouter(cfg, st, publisher)
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.ServerPort, "storage", cfg.Storage, "timezone", cfg.Location)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exiting")
	return nil
}

func newRouter(cfg *config.Config, st *stores, publisher events.Publisher) *gin.Engine {
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours)

	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		VisionModel: cfg.LLMVisionModel,
		Timeout:     cfg.LLMTimeout,
	})
	if cfg.LLMAPIKey == "" {
		log.Warn("LLM_API_KEY not set; receipt scanning and advice will fail")
	}

	var google service.GoogleVerifier
	if cfg.GoogleLoginEnabled() {
		google = service.NewGoogleVerifier(cfg.GoogleClientID)
	}

	forecastClient := forecast.NewClient(cfg.ForecastURL, cfg.ForecastTimeout)

	authService := service.NewAuthService(st.users, st.budgets, jwtUtil, google)
	budgetService := service.NewBudgetService(st.budgets, publisher)
	transactionService := service.NewTransactionService(st.ledger, st.budgets, cfg.Location,
		service.WithReceiptExtractor(llm.NewReceiptExtractor(llmClient, cfg.LLMVisionModel)),
		service.WithPublisher(publisher),
	)
	forecastService := service.NewForecastService(forecastClient, st.ledger, cfg.Location)
	dashboardService := service.NewDashboardService(st.ledger, st.budgets, forecastService, cfg.Location)
	advisoryService := service.NewAdvisoryService(st.ledger, st.budgets, forecastService, llmClient)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = service.MaxFileSize + 1<<20
	router.Use(gin.Recovery(), middleware.RequestLogger(), corsMiddleware())

	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)
	apiGroup := router.Group("/api/v1")
	handler.NewAuthHandler(authService).RegisterAuthRoutes(apiGroup)
	handler.NewBudgetHandler(budgetService).RegisterBudgetRoutes(apiGroup, jwtAuthMW)
	handler.NewTransactionHandler(transactionService, cfg.Location).RegisterTransactionRoutes(apiGroup, jwtAuthMW)
	handler.NewDashboardHandler(dashboardService, forecastService, advisoryService).RegisterDashboardRoutes(apiGroup, jwtAuthMW)

	router.GET("/health", func(c *gin.Context) {
		if st.pool == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": cfg.Storage})
			return
		}
		if err := st.pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	return router
}

// corsMiddleware allows any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
