package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adaptershttp "github.com/iho/coopledger/internal/adapter/http"
	"github.com/iho/coopledger/internal/adapter/http/handler"
	"github.com/iho/coopledger/internal/adapter/http/middleware"
	"github.com/iho/coopledger/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/coopledger/internal/adapter/repository/redis"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
	"github.com/iho/coopledger/internal/usecase"
	"github.com/iho/coopledger/tests/testutil"
)

// app is the full stack on a real Postgres with an in-memory Redis.
type app struct {
	db       *testutil.TestDB
	router   http.Handler
	periods  *usecase.PeriodUseCase
	payments *usecase.LoanPaymentUseCase
}

func newApp(t *testing.T) *app {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	testDB.TruncateAll(ctx)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	pool := testDB.Pool
	log := zerolog.Nop()
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())

	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	accountRepo := postgres.NewLedgerAccountRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	periodRepo := postgres.NewFiscalPeriodRepository(pool, idGen)
	loanRepo := postgres.NewLoanRepository(pool)
	paymentRepo := postgres.NewLoanPaymentRepository(pool)
	savingRepo := postgres.NewSavingAccountRepository(pool)
	loanSnapshots := postgres.NewLoanSnapshotRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	retrier := postgres.NewRetrier(log)

	trialBalanceUC := usecase.NewTrialBalanceUseCase(journalRepo, usecase.DefaultTrialBalanceTolerance)
	periodUC := usecase.NewPeriodUseCase(usecase.PeriodDeps{
		TxManager:     txManager,
		PeriodRepo:    periodRepo,
		LoanRepo:      loanRepo,
		SavingRepo:    savingRepo,
		LoanSnapshots: loanSnapshots,
		OutboxRepo:    outboxRepo,
		TrialBalance:  trialBalanceUC,
		LoanEngine:    usecase.NewLoanSnapshotEngine(paymentRepo, loanSnapshots, idGen, log),
		SavingEngine:  usecase.NewSavingSnapshotEngine(postgres.NewSavingSnapshotRepository(pool), idGen, log),
		Locker:        redisrepo.NewPeriodLocker(redisClient),
		Retrier:       retrier,
		IDGen:         idGen,
		Audit:         auditRepo,
		Logger:        log,
		Metrics:       m,
	}, usecase.PeriodConfig{LockTTL: time.Minute, Workers: 4})
	paymentUC := usecase.NewLoanPaymentUseCase(usecase.LoanPaymentDeps{
		TxManager:  txManager,
		Loans:      loanRepo,
		Payments:   paymentRepo,
		Journal:    journalRepo,
		Periods:    periodRepo,
		OutboxRepo: outboxRepo,
		Retrier:    retrier,
		IDGen:      idGen,
		Audit:      auditRepo,
		Logger:     log,
		Metrics:    m,
	})
	dividendUC := usecase.NewDividendUseCase(usecase.DividendDeps{
		TxManager:  txManager,
		Dividends:  postgres.NewDividendRepository(pool),
		Members:    postgres.NewMemberRepository(pool),
		Savings:    savingRepo,
		Payments:   paymentRepo,
		Journal:    journalRepo,
		Periods:    periodRepo,
		OutboxRepo: outboxRepo,
		Retrier:    retrier,
		IDGen:      idGen,
		Audit:      auditRepo,
		Logger:     log,
		Metrics:    m,
	})
	journalUC := usecase.NewJournalUseCase(txManager, accountRepo, journalRepo, periodRepo, idGen, auditRepo, log, m)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		PeriodHandler:    handler.NewPeriodHandler(periodUC),
		ReportHandler:    handler.NewReportHandler(trialBalanceUC, usecase.NewReportUseCase(journalRepo, trialBalanceUC, log)),
		DividendHandler:  handler.NewDividendHandler(dividendUC),
		JournalHandler:   handler.NewJournalHandler(journalUC),
		LoanHandler:      handler.NewLoanHandler(paymentUC),
		AuditHandler:     handler.NewAuditHandler(auditRepo, outboxRepo),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: redisrepo.NewIdempotencyStore(redisClient),
		Logger:           log,
		Metrics:          m,
		MetricsHandler:   http.NotFoundHandler(),
	})

	return &app{db: testDB, router: router, periods: periodUC, payments: paymentUC}
}

func (a *app) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, "accountant-1")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %s: %v", rec.Body.String(), err)
	}
	return v
}
