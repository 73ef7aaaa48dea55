package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	transactionsTotal   *prometheus.CounterVec
	transactionDuration prometheus.Histogram
	mirrorsTotal        *prometheus.CounterVec
	reversalsTotal      *prometheus.CounterVec
	settlementsTotal    *prometheus.CounterVec
	accountsCreated     *prometheus.CounterVec
	collateralEvents    *prometheus.CounterVec
	fundBalance         prometheus.Gauge
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		transactionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transactions_total",
				Help: "Total number of ledger transactions by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		transactionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_transaction_duration_milliseconds",
				Help:    "End-to-end transaction processing duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		mirrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_mirrors_total",
				Help: "Total number of organization mirror transactions created",
			},
			[]string{"type"},
		),
		reversalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_reversals_total",
				Help: "Total number of compensating reversals",
			},
			[]string{"type"},
		),
		settlementsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlements_total",
				Help: "Total number of settlement gateway calls by outcome",
			},
			[]string{"type", "outcome"},
		),
		accountsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_created_total",
				Help: "Total number of accounts opened",
			},
			[]string{"organization"},
		),
		collateralEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collateral_events_total",
				Help: "Total number of collateral lifecycle events",
			},
			[]string{"event"},
		),
		fundBalance: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "organization_fund_balance",
				Help: "Current organization investment balance in base currency units",
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	txType := tags["type"]

	switch name {
	case "ledger.transaction.completed":
		m.transactionsTotal.WithLabelValues(txType, "completed").Inc()
	case "ledger.transaction.rejected":
		m.transactionsTotal.WithLabelValues(txType, "rejected").Inc()
	case "ledger.transaction.reverted":
		m.reversalsTotal.WithLabelValues(txType).Inc()
	case "ledger.mirror.created":
		m.mirrorsTotal.WithLabelValues(txType).Inc()
	case "settlement.succeeded":
		m.settlementsTotal.WithLabelValues(txType, "success").Inc()
	case "settlement.failed":
		m.settlementsTotal.WithLabelValues(txType, "failure").Inc()
	case "account.created":
		m.accountsCreated.WithLabelValues(tags["organization"]).Inc()
	case "collateral.created":
		m.collateralEvents.WithLabelValues("created").Inc()
	case "collateral.approved":
		m.collateralEvents.WithLabelValues("approved").Inc()
	case "collateral.extended":
		m.collateralEvents.WithLabelValues("extended").Inc()
	case "collateral.defaulted":
		m.collateralEvents.WithLabelValues("defaulted").Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "ledger.transaction":
		m.transactionDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "organization.fund_balance":
		m.fundBalance.Set(value)
	}
}
