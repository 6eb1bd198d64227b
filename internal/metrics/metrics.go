// Package metrics defines the Prometheus instrumentation for the ledger
// core. Counters are registered on the default registry and exposed by the
// HTTP shell at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsRecorded counts successful transaction writes.
	TransactionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_transactions_recorded_total",
		Help: "Number of transactions recorded.",
	})

	// TransactionsDeleted counts successful transaction deletions.
	TransactionsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_transactions_deleted_total",
		Help: "Number of transactions deleted.",
	})

	// ObligationsSettled counts settlement confirmations, both mark-settled
	// and ad-hoc settles.
	ObligationsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_obligations_settled_total",
		Help: "Number of obligations confirmed settled.",
	})

	// SnapshotsSaved counts persisted personal settlement snapshots.
	SnapshotsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitledger_settlement_snapshots_total",
		Help: "Number of personal settlement snapshots saved.",
	})
)
