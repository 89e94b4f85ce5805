package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "route"})

	WalletRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_wallet_recomputes_total",
		Help: "Wallet balance recomputations by outcome",
	}, []string{"outcome"})

	AllocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_goal_allocations_total",
		Help: "Goal allocation requests by outcome",
	}, []string{"outcome"})

	MirrorOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_expense_mirror_operations_total",
		Help: "Expense mirror propagations by operation",
	}, []string{"operation"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_notifications_total",
		Help: "Notifications dispatched by event and outcome",
	}, []string{"event", "outcome"})

	AuditFindings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_audit_findings_total",
		Help: "Inconsistencies reported by the ledger audit",
	}, []string{"kind"})
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)
