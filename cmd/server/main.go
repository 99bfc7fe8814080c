package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/coopledger/internal/adapter/http"
	"github.com/iho/coopledger/internal/adapter/http/handler"
	"github.com/iho/coopledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/coopledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/coopledger/internal/adapter/repository/redis"
	"github.com/iho/coopledger/internal/infrastructure/auth"
	"github.com/iho/coopledger/internal/infrastructure/config"
	"github.com/iho/coopledger/internal/infrastructure/eventpublisher"
	"github.com/iho/coopledger/internal/infrastructure/logger"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
	"github.com/iho/coopledger/internal/infrastructure/postgres"
	"github.com/iho/coopledger/internal/infrastructure/redis"
	"github.com/iho/coopledger/internal/infrastructure/scheduler"
	"github.com/iho/coopledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "coopledger"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClientWithConfig(ctx, redis.ClientConfig{
		URL:          cfg.RedisURL,
		PoolSize:     cfg.RedisPoolSize,
		DialTimeout:  cfg.RedisTimeout,
		ReadTimeout:  cfg.RedisTimeout,
		WriteTimeout: cfg.RedisTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	idGen := postgresRepo.NewULIDGenerator()
	accountRepo := postgresRepo.NewLedgerAccountRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	periodRepo := postgresRepo.NewFiscalPeriodRepository(pool, idGen)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	paymentRepo := postgresRepo.NewLoanPaymentRepository(pool)
	savingRepo := postgresRepo.NewSavingAccountRepository(pool)
	memberRepo := postgresRepo.NewMemberRepository(pool)
	loanSnapshots := postgresRepo.NewLoanSnapshotRepository(pool)
	savingSnapshots := postgresRepo.NewSavingSnapshotRepository(pool)
	dividendRepo := postgresRepo.NewDividendRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	retrier := postgresRepo.NewRetrierWithConfig(postgresRepo.RetrierConfig{MaxRetries: cfg.DatabaseRetries}, log)
	locker := redisRepo.NewPeriodLocker(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	codes := ledgerCodes(cfg)

	// Initialize use cases
	trialBalanceUC := usecase.NewTrialBalanceUseCase(journalRepo, cfg.TrialBalanceTolerance)
	periodUC := usecase.NewPeriodUseCase(usecase.PeriodDeps{
		TxManager:     txManager,
		PeriodRepo:    periodRepo,
		LoanRepo:      loanRepo,
		SavingRepo:    savingRepo,
		LoanSnapshots: loanSnapshots,
		OutboxRepo:    outboxRepo,
		TrialBalance:  trialBalanceUC,
		LoanEngine:    usecase.NewLoanSnapshotEngine(paymentRepo, loanSnapshots, idGen, log),
		SavingEngine:  usecase.NewSavingSnapshotEngine(savingSnapshots, idGen, log),
		Locker:        locker,
		Retrier:       retrier,
		IDGen:         idGen,
		Audit:         auditRepo,
		Logger:        log,
		Metrics:       m,
	}, usecase.PeriodConfig{
		CloseTimeout: cfg.CloseTxTimeout,
		LockTTL:      cfg.CloseLockTTL,
		Workers:      cfg.SnapshotWorkers,
	})
	dividendUC := usecase.NewDividendUseCase(usecase.DividendDeps{
		TxManager:   txManager,
		Dividends:   dividendRepo,
		Members:     memberRepo,
		Savings:     savingRepo,
		Payments:    paymentRepo,
		Journal:     journalRepo,
		Periods:     periodRepo,
		OutboxRepo:  outboxRepo,
		Retrier:     retrier,
		IDGen:       idGen,
		Audit:       auditRepo,
		Logger:      log,
		Metrics:     m,
		LedgerCodes: codes,
		Workers:     cfg.DividendWorkers,
	})
	paymentUC := usecase.NewLoanPaymentUseCase(usecase.LoanPaymentDeps{
		TxManager:   txManager,
		Loans:       loanRepo,
		Payments:    paymentRepo,
		Journal:     journalRepo,
		Periods:     periodRepo,
		OutboxRepo:  outboxRepo,
		Retrier:     retrier,
		IDGen:       idGen,
		Audit:       auditRepo,
		Logger:      log,
		Metrics:     m,
		LedgerCodes: codes,
	})
	journalUC := usecase.NewJournalUseCase(txManager, accountRepo, journalRepo, periodRepo, idGen, auditRepo, log, m)
	reportUC := usecase.NewReportUseCase(journalRepo, trialBalanceUC, log)
	overdueUC := usecase.NewOverdueUseCase(txManager, loanRepo, outboxRepo, idGen, auditRepo, log, m)

	rateLimiter := newRateLimiter(cfg)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PeriodHandler:    handler.NewPeriodHandler(periodUC),
		ReportHandler:    handler.NewReportHandler(trialBalanceUC, reportUC),
		DividendHandler:  handler.NewDividendHandler(dividendUC),
		JournalHandler:   handler.NewJournalHandler(journalUC),
		LoanHandler:      handler.NewLoanHandler(paymentUC),
		AuditHandler:     handler.NewAuditHandler(auditRepo, outboxRepo),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		Authenticator:    middleware.NewAuthenticator(auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration), cfg.AuthEnabled, m),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Logger:           log,
		Metrics:          m,
	})

	server := newHTTPServer(cfg, router)

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log),
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return ignoreCanceled(publisher.Start(gctx))
	})

	g.Go(func() error {
		sweep := scheduler.New("overdue_sweep", scheduler.JobFunc(overdueUC.MarkOverdue), cfg.OverdueSweepInterval, log)
		return ignoreCanceled(sweep.Start(gctx))
	})

	if rateLimiter != nil {
		g.Go(func() error {
			cleanup := scheduler.New("rate_limiter_cleanup", scheduler.JobFunc(rateLimiter.CleanupLimiters), cfg.RateLimitIdleTTL, log)
			return ignoreCanceled(cleanup.Start(gctx))
		})
	}

	return g.Wait()
}

func ledgerCodes(cfg *config.Config) usecase.LedgerCodes {
	return usecase.LedgerCodes{
		Cash:            cfg.Ledger.CashCode,
		LoansReceivable: cfg.Ledger.LoansReceivableCode,
		MemberSavings:   cfg.Ledger.MemberSavingsCode,
		DividendPayable: cfg.Ledger.DividendPayableCode,
		InterestIncome:  cfg.Ledger.InterestIncomeCode,
		PenaltyIncome:   cfg.Ledger.PenaltyIncomeCode,
	}
}

// newRateLimiter returns nil when rate limiting is disabled.
func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitIdleTTL)
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
