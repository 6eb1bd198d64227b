package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
)

// SaveAuditEntry appends one history entry, generating ID and timestamp
// when unset. Entries are never updated afterwards.
func (s *SQLiteStore) SaveAuditEntry(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().Unix()
	}

	var transactionID any
	if entry.TransactionID != "" {
		transactionID = entry.TransactionID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, transaction_id, action, payload, performed_by, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, transactionID, entry.Action, entry.Payload,
		entry.PerformedBy, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries returns all entries, newest first.
func (s *SQLiteStore) ListAuditEntries(ctx context.Context) ([]models.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transaction_id, action, payload, performed_by, timestamp
		 FROM audit_log ORDER BY timestamp DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var transactionID sql.NullString
		if err := rows.Scan(&entry.ID, &transactionID, &entry.Action,
			&entry.Payload, &entry.PerformedBy, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.TransactionID = transactionID.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit log: %w", err)
	}
	return entries, nil
}

// ClearAuditEntries wipes the audit log. Administrative use only.
func (s *SQLiteStore) ClearAuditEntries(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM audit_log")
	if err != nil {
		return fmt.Errorf("failed to clear audit log: %w", err)
	}
	return nil
}
