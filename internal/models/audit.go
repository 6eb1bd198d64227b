package models

import "github.com/shopspring/decimal"

// Audit actions. The audit log is append-only; entries are never mutated
// and are removed only by an explicit administrative bulk-clear.
const (
	AuditActionCreated            = "CREATED"
	AuditActionDeleted            = "DELETED"
	AuditActionPersonalSettlement = "PERSONAL_SETTLEMENT"
)

// AuditEntry is one append-only history record.
type AuditEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string `json:"id"`

	// TransactionID is the subject transaction for CREATED/DELETED
	// entries; empty for settlement snapshots.
	TransactionID string `json:"transactionId,omitempty"`

	// Action is one of the AuditAction constants.
	Action string `json:"action"`

	// Payload is a structured JSON snapshot of the subject: a
	// TransactionSnapshot for CREATED/DELETED, a SettlementSnapshot for
	// PERSONAL_SETTLEMENT.
	Payload string `json:"payload"`

	// PerformedBy is the username that triggered the entry.
	PerformedBy string `json:"performedBy"`

	// Timestamp is the Unix timestamp when the entry was recorded.
	Timestamp int64 `json:"timestamp"`
}

// TransactionSnapshot is the parseable audit payload for transaction
// creation and deletion. RecordedAt is the audit-write time, distinct from
// the transaction's own timestamp.
type TransactionSnapshot struct {
	ID            string          `json:"id"`
	PayerUsername string          `json:"payerUsername"`
	PayeeUsername string          `json:"payeeUsername"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Timestamp     int64           `json:"timestamp"`
	CreatedBy     string          `json:"createdBy"`
	RecordedAt    int64           `json:"recordedAt"`
}

// SettlementSnapshot is the parseable audit payload for a personal
// settlement snapshot: every netting edge touching the user at that moment,
// plus the aggregate owed and receivable totals.
type SettlementSnapshot struct {
	SnapshotAt   int64            `json:"snapshotAt"`
	Username     string           `json:"username"`
	TotalGive    decimal.Decimal  `json:"totalGive"`
	TotalReceive decimal.Decimal  `json:"totalReceive"`
	Entries      []SettlementEdge `json:"entries"`
}
