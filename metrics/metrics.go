// Package metrics defines the Prometheus instruments for ledger operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reason label values for PurchasesRejected.
const (
	ReasonInvalidInput = "invalid_input"
	ReasonOutOfStock   = "out_of_stock"
	ReasonNoFunds      = "insufficient_funds"
	ReasonFault        = "fault"
)

// Metrics holds all ledger Prometheus metrics.
type Metrics struct {
	AccountsCreated    prometheus.Counter
	ProductsCreated    prometheus.Counter
	DepositsRegistered prometheus.Counter
	DepositAmount      prometheus.Histogram

	PurchasesAdmitted prometheus.Counter
	PurchasesRejected *prometheus.CounterVec
	PurchaseDuration  prometheus.Histogram
}

// New registers the ledger instruments on reg and returns them.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "simledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		ProductsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "simledger_products_created_total",
			Help: "Total number of products created",
		}),
		DepositsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "simledger_deposits_registered_total",
			Help: "Total number of deposits registered",
		}),
		DepositAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "simledger_deposit_amount",
			Help:    "Distribution of deposit amounts",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		}),
		PurchasesAdmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "simledger_purchases_admitted_total",
			Help: "Total number of purchases admitted and committed",
		}),
		PurchasesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simledger_purchases_rejected_total",
			Help: "Total number of purchases rejected, by reason",
		}, []string{"reason"}),
		PurchaseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "simledger_purchase_duration_seconds",
			Help:    "Time spent validating and committing a purchase",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
