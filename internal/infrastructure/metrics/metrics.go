package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Period close metrics
	PeriodsClosed    prometheus.Counter
	PeriodsConfirmed prometheus.Counter
	CloseDuration    prometheus.Histogram
	CloseErrors      *prometheus.CounterVec
	SnapshotsCreated *prometheus.CounterVec
	SnapshotsSkipped *prometheus.CounterVec
	Anomalies        *prometheus.CounterVec

	// Dividend metrics
	DividendsCalculated  prometheus.Counter
	DividendsDistributed prometheus.Counter
	DividendPayout       prometheus.Histogram

	// Journal and loan metrics
	JournalEntriesPosted prometheus.Counter
	LoanPaymentsApplied  prometheus.Counter
	OverdueLoansMarked   prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
	AuditFailures    *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PeriodsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_periods_closed_total",
			Help: "Total number of fiscal periods closed",
		}),
		PeriodsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_periods_confirmed_total",
			Help: "Total number of fiscal periods confirmed",
		}),
		CloseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coopledger_close_duration_seconds",
			Help:    "Duration of month-end close operations",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		CloseErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coopledger_close_errors_total",
				Help: "Total number of failed closes by reason",
			},
			[]string{"reason"},
		),
		SnapshotsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coopledger_snapshots_created_total",
				Help: "Total balance snapshots created by kind",
			},
			[]string{"kind"},
		),
		SnapshotsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coopledger_snapshots_skipped_total",
				Help: "Snapshots skipped because one already existed, by kind",
			},
			[]string{"kind"},
		),
		Anomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coopledger_integrity_anomalies_total",
				Help: "Integrity anomalies detected during close, by kind",
			},
			[]string{"kind"},
		),

		DividendsCalculated: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_dividends_calculated_total",
			Help: "Total dividend distributions calculated",
		}),
		DividendsDistributed: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_dividends_distributed_total",
			Help: "Total dividend distributions paid out",
		}),
		DividendPayout: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coopledger_dividend_payout",
			Help:    "Per-member dividend payouts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),

		JournalEntriesPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_journal_entries_posted_total",
			Help: "Total journal lines posted",
		}),
		LoanPaymentsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_loan_payments_applied_total",
			Help: "Total loan payments applied",
		}),
		OverdueLoansMarked: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_overdue_loans_marked_total",
			Help: "Total loans moved to DEFAULTED by the overdue sweep",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coopledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coopledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_outbox_errors_total",
			Help: "Total outbox publish failures",
		}),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coopledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coopledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action"},
		),
		AuditFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coopledger_audit_failures_total",
				Help: "Audit writes that failed after the change committed",
			},
			[]string{"action"},
		),
	}
}
