package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/adapter/http/handler"
	"github.com/iho/coopledger/internal/adapter/http/middleware"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
	"github.com/iho/coopledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PeriodHandler   *handler.PeriodHandler
	ReportHandler   *handler.ReportHandler
	DividendHandler *handler.DividendHandler
	JournalHandler  *handler.JournalHandler
	LoanHandler     *handler.LoanHandler
	AuditHandler    *handler.AuditHandler
	HealthHandler   *handler.HealthHandler

	Authenticator    *middleware.Authenticator
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// MetricsHandler serves /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = middleware.NewAuthenticator(nil, false, cfg.Metrics)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		r.Use(authenticator.Authenticate)

		// Idempotency middleware for POSTs
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		// Fiscal periods
		r.Route("/periods", func(r chi.Router) {
			r.With(middleware.RequireRole(domain.Role.CanViewReports)).Get("/", cfg.PeriodHandler.List)
			r.With(middleware.RequireRole(domain.Role.CanViewReports)).Get("/{year}/{month}", cfg.PeriodHandler.Get)
			r.Post("/{year}/{month}/close", cfg.PeriodHandler.Close)
			r.Post("/{year}/{month}/confirm", cfg.PeriodHandler.Confirm)
		})

		// Read-only ledger views
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.Role.CanViewReports))
			r.Get("/trial-balance/{periodKey}", cfg.ReportHandler.TrialBalance)
			r.Get("/reports/trial-balance/{periodKey}", cfg.ReportHandler.TrialBalanceReport)
			r.Get("/reports/income-expense", cfg.ReportHandler.IncomeExpense)
			r.Get("/reports/balance-sheet", cfg.ReportHandler.BalanceSheet)
			r.Get("/dividends/{year}", cfg.DividendHandler.Get)
			r.Get("/ledger-accounts", cfg.JournalHandler.ListAccounts)
		})

		// Dividends
		r.Post("/dividends/{year}/calculate", cfg.DividendHandler.Calculate)
		r.Post("/dividends/{year}/distribute", cfg.DividendHandler.Distribute)

		// Journal and chart of accounts
		r.Post("/journal/entries", cfg.JournalHandler.PostEntries)
		r.Post("/ledger-accounts", cfg.JournalHandler.CreateAccount)
		r.Delete("/ledger-accounts/{code}", cfg.JournalHandler.DeleteAccount)

		// Loans
		r.Post("/loans/{id}/payments", cfg.LoanHandler.ApplyPayment)

		// Audit trail and event history
		if cfg.AuditHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.Role.CanViewAudit))
				r.Get("/audit-logs", cfg.AuditHandler.ListAuditLogs)
				r.Get("/events/{aggregateType}/{aggregateID}", cfg.AuditHandler.ListEvents)
			})
		}
	})

	return r
}
