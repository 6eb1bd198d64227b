// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/splitledger/splitledger/internal/models"
)

// LedgerStore is the durable record of raw transactions.
type LedgerStore interface {
	// SaveTransaction persists a new transaction. The ID field is
	// populated by the store if empty.
	SaveTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction retrieves a transaction by ID. Returns nil and an
	// error if not found.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// ListTransactions returns every transaction.
	ListTransactions(ctx context.Context) ([]models.Transaction, error)

	// ListTransactionsByParticipant returns transactions where the user is
	// payer or payee, matched case-insensitively.
	ListTransactionsByParticipant(ctx context.Context, username string) ([]models.Transaction, error)

	// ListTransactionsByCreator returns transactions recorded by the user,
	// matched case-insensitively.
	ListTransactionsByCreator(ctx context.Context, username string) ([]models.Transaction, error)

	// DeleteTransaction removes a transaction by ID.
	DeleteTransaction(ctx context.Context, id string) error
}

// ObligationStore holds durable personal settlement entries.
type ObligationStore interface {
	// SaveObligation persists a new obligation. The ID and CreatedAt
	// fields are populated by the store if empty.
	SaveObligation(ctx context.Context, ob *models.Obligation) error

	// GetObligation retrieves an obligation by ID. Returns nil and an
	// error if not found.
	GetObligation(ctx context.Context, id string) (*models.Obligation, error)

	// ListObligationsByUser returns obligations where the user is either
	// party, newest first.
	ListObligationsByUser(ctx context.Context, username string) ([]models.Obligation, error)

	// ListUnsettledByDebtor returns unsettled obligations where the user
	// owes, newest first.
	ListUnsettledByDebtor(ctx context.Context, username string) ([]models.Obligation, error)

	// MarkObligationSettled flips the settled flag in a single guarded
	// update; the transition is one-way and the first settledAt/settledBy
	// stick. Marking an already-settled obligation is a no-op success.
	MarkObligationSettled(ctx context.Context, id, settledBy string, settledAt int64) error

	// DeleteObligationsByTransaction removes every obligation linked to
	// the given source transaction.
	DeleteObligationsByTransaction(ctx context.Context, transactionID string) error
}

// AuditStore is the append-only history log.
type AuditStore interface {
	// SaveAuditEntry appends one entry. The ID field is populated by the
	// store if empty.
	SaveAuditEntry(ctx context.Context, entry *models.AuditEntry) error

	// ListAuditEntries returns all entries, newest first.
	ListAuditEntries(ctx context.Context) ([]models.AuditEntry, error)

	// ClearAuditEntries removes every entry. Administrative use only.
	ClearAuditEntries(ctx context.Context) error
}

// UserStore is the identity-lookup collaborator: registration status and
// contact info only. It never gates core algorithm correctness.
type UserStore interface {
	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves a user by username, case-insensitively.
	// Returns nil, nil when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// IsRegistered reports whether a username has a registered account.
	IsRegistered(ctx context.Context, username string) (bool, error)
}

// Store aggregates every collaborator interface. This abstraction allows
// swapping storage backends without changing the service layer.
type Store interface {
	LedgerStore
	ObligationStore
	AuditStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
