// Package service implements the ledger-netting and settlement-tracking
// engine. Every operation takes the acting user as an explicit parameter;
// nothing here reaches into ambient session state.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

var (
	// ErrObligationNotFound is returned when a settle operation targets an
	// unknown obligation id.
	ErrObligationNotFound = errors.New("obligation not found")

	// ErrNotParticipant is returned when the acting user is neither party
	// to the obligation being settled.
	ErrNotParticipant = errors.New("acting user is not a party to this obligation")

	// ErrInvalidSettlement is returned when an ad-hoc settle is missing
	// from or to, or carries a non-positive amount.
	ErrInvalidSettlement = errors.New("settlement requires from, to and a positive amount")
)

// TransactionService owns the transaction ledger, the derived balance and
// netting views, the personal settlement tracker, and the audit log.
// Balances and edges are recomputed from the full transaction set on every
// call; nothing is cached between requests.
type TransactionService struct {
	store storage.Store
}

// NewTransactionService creates a TransactionService with the given storage
// backend.
func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// normalizeUsername canonicalizes a username the same way at every write
// boundary so aggregation keys always match.
func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RecordTransaction normalizes and persists a transaction, then attempts
// the secondary effects: a CREATED audit entry and an obligation linked to
// the transaction. The secondary steps run synchronously so the writer's
// next read sees them, but their failure never rolls back the write.
func (s *TransactionService) RecordTransaction(ctx context.Context, tx *models.Transaction, actingUser string) (*models.Transaction, error) {
	acting := normalizeUsername(actingUser)

	if strings.TrimSpace(tx.PayerUsername) != "" {
		tx.PayerUsername = normalizeUsername(tx.PayerUsername)
	} else if acting != "" {
		// Clients sometimes omit the payer even though the form defaults
		// to "you"; fall back to the acting account so the creator
		// immediately sees the row.
		tx.PayerUsername = acting
	}
	if strings.TrimSpace(tx.PayeeUsername) != "" {
		tx.PayeeUsername = normalizeUsername(tx.PayeeUsername)
	}
	if acting != "" {
		tx.CreatedBy = acting
	}
	if tx.Timestamp == 0 {
		tx.Timestamp = time.Now().Unix()
	}

	if err := s.store.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	metrics.TransactionsRecorded.Inc()

	s.recordAudit(ctx, tx, models.AuditActionCreated, acting)

	if tx.PayerUsername != "" && tx.PayeeUsername != "" {
		ob := &models.Obligation{
			FromUser:            tx.PayerUsername,
			ToUser:              tx.PayeeUsername,
			Amount:              tx.Amount,
			TransactionID:       tx.ID,
			FromTransaction:     true,
			RecipientRegistered: s.isRegistered(ctx, tx.PayeeUsername),
		}
		if err := s.store.SaveObligation(ctx, ob); err != nil {
			slog.Warn("failed to create obligation for transaction",
				"transaction_id", tx.ID, "error", err)
		}
	}

	return tx, nil
}

// DeleteTransaction removes a transaction, recording a DELETED audit entry
// with the pre-deletion snapshot and pruning every obligation linked to it.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id, actingUser string) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err == nil && tx != nil {
		s.recordAudit(ctx, tx, models.AuditActionDeleted, normalizeUsername(actingUser))
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	metrics.TransactionsDeleted.Inc()

	if err := s.store.DeleteObligationsByTransaction(ctx, id); err != nil {
		slog.Warn("failed to prune obligations for transaction",
			"transaction_id", id, "error", err)
	}
	return nil
}

// GetTransaction retrieves one transaction by id.
func (s *TransactionService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ListTransactions returns every transaction.
func (s *TransactionService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// ListTransactionsForUser returns transactions where the user is payer,
// payee, or creator, deduplicated and sorted newest first.
func (s *TransactionService) ListTransactionsForUser(ctx context.Context, username string) ([]models.Transaction, error) {
	norm := normalizeUsername(username)
	if norm == "" {
		return nil, nil
	}

	seen := make(map[string]bool)
	var result []models.Transaction
	merge := func(txs []models.Transaction) {
		for _, tx := range txs {
			if tx.ID != "" && seen[tx.ID] {
				continue
			}
			seen[tx.ID] = true
			result = append(result, tx)
		}
	}

	byParticipant, err := s.store.ListTransactionsByParticipant(ctx, norm)
	if err != nil {
		return nil, err
	}
	merge(byParticipant)

	byCreator, err := s.store.ListTransactionsByCreator(ctx, norm)
	if err != nil {
		return nil, err
	}
	merge(byCreator)

	slices.SortStableFunc(result, func(a, b models.Transaction) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		default:
			return 0
		}
	})
	return result, nil
}

// ComputeBalances folds every transaction into one signed net balance per
// participant. Derived on demand, never stored.
func (s *TransactionService) ComputeBalances(ctx context.Context) ([]models.Balance, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.AggregateBalances(txs), nil
}

// ComputeBalancesForUser computes balances over the transactions that
// involve the given user, so their counterparties appear in the result.
func (s *TransactionService) ComputeBalancesForUser(ctx context.Context, username string) ([]models.Balance, error) {
	txs, err := s.ListTransactionsForUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return ledger.AggregateBalances(txs), nil
}

// ComputeSettlements runs the netting optimizer over the global balances.
func (s *TransactionService) ComputeSettlements(ctx context.Context) ([]models.SettlementEdge, error) {
	balances, err := s.ComputeBalances(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Net(balances), nil
}

// ComputeSettlementsForUser restricts the global edge list to edges where
// the user is debtor or creditor. Edges are never synthesized from stored
// obligations; with no global edge touching the user the view is empty.
func (s *TransactionService) ComputeSettlementsForUser(ctx context.Context, username string) ([]models.SettlementEdge, error) {
	edges, err := s.ComputeSettlements(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.EdgesFor(edges, normalizeUsername(username)), nil
}

// OptimizeInstructions renders the global settlement edges as payment
// instructions.
func (s *TransactionService) OptimizeInstructions(ctx context.Context) ([]string, error) {
	edges, err := s.ComputeSettlements(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Instructions(edges), nil
}

// OptimizeInstructionsForUser renders the user-relative instructions.
func (s *TransactionService) OptimizeInstructionsForUser(ctx context.Context, username string) ([]string, error) {
	norm := normalizeUsername(username)
	edges, err := s.ComputeSettlementsForUser(ctx, norm)
	if err != nil {
		return nil, err
	}
	return ledger.InstructionsFor(edges, norm), nil
}

// ListHistory returns the audit log, newest first.
func (s *TransactionService) ListHistory(ctx context.Context) ([]models.AuditEntry, error) {
	return s.store.ListAuditEntries(ctx)
}

// ListHistoryForUser filters the audit log to entries the user performed or
// whose payload mentions them as a participant.
func (s *TransactionService) ListHistoryForUser(ctx context.Context, username string) ([]models.AuditEntry, error) {
	norm := normalizeUsername(username)
	if norm == "" {
		return nil, nil
	}

	all, err := s.store.ListAuditEntries(ctx)
	if err != nil {
		return nil, err
	}

	var out []models.AuditEntry
	for _, entry := range all {
		if strings.EqualFold(entry.PerformedBy, norm) ||
			strings.Contains(strings.ToLower(entry.Payload), norm) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// recordAudit appends an audit entry with a structured snapshot of the
// transaction. Failures are logged and swallowed so the primary operation
// never fails on history.
func (s *TransactionService) recordAudit(ctx context.Context, tx *models.Transaction, action, performedBy string) {
	snapshot := models.TransactionSnapshot{
		ID:            tx.ID,
		PayerUsername: tx.PayerUsername,
		PayeeUsername: tx.PayeeUsername,
		Amount:        tx.Amount,
		Description:   tx.Description,
		Timestamp:     tx.Timestamp,
		CreatedBy:     tx.CreatedBy,
		RecordedAt:    time.Now().Unix(),
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		slog.Warn("failed to marshal audit payload", "transaction_id", tx.ID, "error", err)
		return
	}

	entry := &models.AuditEntry{
		TransactionID: tx.ID,
		Action:        action,
		Payload:       string(payload),
		PerformedBy:   performedBy,
	}
	if err := s.store.SaveAuditEntry(ctx, entry); err != nil {
		slog.Warn("failed to record audit entry",
			"transaction_id", tx.ID, "action", action, "error", err)
	}
}

func (s *TransactionService) isRegistered(ctx context.Context, username string) bool {
	username = strings.TrimSpace(username)
	if username == "" {
		return false
	}
	ok, err := s.store.IsRegistered(ctx, username)
	if err != nil {
		slog.Warn("failed to check registration", "username", username, "error", err)
		return false
	}
	return ok
}

// IsUserRegistered reports whether a username has a registered account.
func (s *TransactionService) IsUserRegistered(ctx context.Context, username string) bool {
	return s.isRegistered(ctx, username)
}
