package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portsrepo "github.com/finledge/stockfolio_backend/internal/core/ports/repositories"
	portssvc "github.com/finledge/stockfolio_backend/internal/core/ports/services"
	"github.com/finledge/stockfolio_backend/internal/core/services"
	"github.com/finledge/stockfolio_backend/internal/handlers"
	"github.com/finledge/stockfolio_backend/internal/middleware"
	"github.com/finledge/stockfolio_backend/internal/quotes"
	"github.com/finledge/stockfolio_backend/internal/repositories/database/pgsql"
	"github.com/finledge/stockfolio_backend/internal/repositories/memory"
	"github.com/finledge/stockfolio_backend/pkg/config"
	"github.com/finledge/stockfolio_backend/pkg/database"
)

// ledgerStore bundles the repository ports one storage backend provides.
type ledgerStore struct {
	accounts portsrepo.AccountRepository
	trades   portsrepo.TradeRepository
	users    portsrepo.UserRepository
}

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := buildLedgerStore(cfg, logger)
	quoteProvider := buildQuoteProvider(cfg, logger)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	userService := services.NewUserService(store.users, store.accounts, cfg.StartingCash)
	portfolioService := services.NewPortfolioService(store.accounts, store.trades, quoteProvider)

	setupAuthRoutes(r, cfg, userService)
	setupAPIV1Routes(r, cfg, portfolioService)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildLedgerStore connects to Postgres and runs migrations, or falls back
// to the in-memory store when no database is configured.
func buildLedgerStore(cfg *config.Config, logger *slog.Logger) ledgerStore {
	if cfg.DatabaseURL == "" {
		logger.Warn("No PGSQL_URL configured, using in-memory ledger store. All data is lost on shutdown.")
		mem := memory.NewStore()
		return ledgerStore{accounts: mem, trades: mem, users: mem}
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Database connection pool established.")

	runMigrations(cfg, logger)

	return newPgsqlLedgerStore(dbPool)
}

func newPgsqlLedgerStore(dbPool *pgxpool.Pool) ledgerStore {
	return ledgerStore{
		accounts: pgsql.NewAccountRepository(dbPool),
		trades:   pgsql.NewTradeRepository(dbPool),
		users:    pgsql.NewUserRepository(dbPool),
	}
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection compatible with the main pool.
func runMigrations(cfg *config.Config, logger *slog.Logger) {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		os.Exit(1)
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		os.Exit(1)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
}

// buildQuoteProvider returns the HTTP quote client, or the static table
// when no provider is configured.
func buildQuoteProvider(cfg *config.Config, logger *slog.Logger) portssvc.QuoteProvider {
	if cfg.QuoteAPIURL == "" {
		logger.Warn("No QUOTE_API_URL configured, using built-in static quote table.")
		return quotes.NewStatic()
	}
	return quotes.NewClient(cfg.QuoteAPIURL, cfg.QuoteAPIKey, cfg.QuoteTimeout)
}

func setupAuthRoutes(r *gin.Engine, cfg *config.Config, userService portssvc.UserSvcFacade) {
	authHandler := handlers.NewAuthHandler(userService, cfg)

	// Credential endpoints get a tight per-IP limit.
	rate, _ := limiter.NewRateFromFormatted("5-M")
	ipLimiter := limiter.New(limitermem.NewStore(), rate)

	auth := r.Group("/auth", middleware.RateLimit(ipLimiter))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
}

func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, portfolioService portssvc.PortfolioSvcFacade) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)

	portfolio := v1.Group("/portfolio")
	{
		portfolio.GET("", portfolioHandler.GetPortfolio)
		portfolio.GET("/history", portfolioHandler.GetHistory)
		portfolio.GET("/sellable", portfolioHandler.ListSellable)
		portfolio.POST("/buy", portfolioHandler.Buy)
		portfolio.POST("/sell", portfolioHandler.Sell)
		portfolio.POST("/deposit", portfolioHandler.Deposit)
	}

	v1.GET("/quote/:symbol", portfolioHandler.Quote)
}
