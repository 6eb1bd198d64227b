package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
)

const obColumns = `id, from_user, to_user, amount, settled, settled_at, settled_by,
	transaction_id, from_transaction, recipient_registered, notify_only, created_at`

// SaveObligation persists a new obligation, generating ID and CreatedAt
// when unset.
func (s *SQLiteStore) SaveObligation(ctx context.Context, ob *models.Obligation) error {
	if ob.ID == "" {
		ob.ID = uuid.New().String()
	}
	if ob.CreatedAt == 0 {
		ob.CreatedAt = time.Now().Unix()
	}

	var settledAt, settledBy, transactionID any
	if ob.SettledAt != 0 {
		settledAt = ob.SettledAt
	}
	if ob.SettledBy != "" {
		settledBy = ob.SettledBy
	}
	if ob.TransactionID != "" {
		transactionID = ob.TransactionID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO obligations (`+obColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ob.ID, ob.FromUser, ob.ToUser, ob.Amount.String(),
		boolToInt(ob.Settled), settledAt, settledBy, transactionID,
		boolToInt(ob.FromTransaction), boolToInt(ob.RecipientRegistered),
		boolToInt(ob.NotifyOnly), ob.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert obligation: %w", err)
	}
	return nil
}

// GetObligation retrieves an obligation by ID.
func (s *SQLiteStore) GetObligation(ctx context.Context, id string) (*models.Obligation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+obColumns+" FROM obligations WHERE id = ?", id)

	ob, err := scanObligation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("obligation not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	return ob, nil
}

// ListObligationsByUser returns obligations where the user is either party,
// newest first.
func (s *SQLiteStore) ListObligationsByUser(ctx context.Context, username string) ([]models.Obligation, error) {
	return s.queryObligations(ctx,
		"SELECT "+obColumns+` FROM obligations
		 WHERE from_user = ? OR to_user = ?
		 ORDER BY created_at DESC`,
		username, username)
}

// ListUnsettledByDebtor returns unsettled obligations where the user owes,
// newest first.
func (s *SQLiteStore) ListUnsettledByDebtor(ctx context.Context, username string) ([]models.Obligation, error) {
	return s.queryObligations(ctx,
		"SELECT "+obColumns+` FROM obligations
		 WHERE from_user = ? AND settled = 0
		 ORDER BY created_at DESC`,
		username)
}

// MarkObligationSettled flips settled in a single guarded update. The WHERE
// clause keeps the transition one-way: an already-settled row is untouched,
// so the original settledAt/settledBy stick.
func (s *SQLiteStore) MarkObligationSettled(ctx context.Context, id, settledBy string, settledAt int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE obligations
		 SET settled = 1, settled_at = ?, settled_by = ?
		 WHERE id = ? AND settled = 0`,
		settledAt, settledBy, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark obligation settled: %w", err)
	}
	return nil
}

// DeleteObligationsByTransaction removes every obligation linked to the
// given source transaction.
func (s *SQLiteStore) DeleteObligationsByTransaction(ctx context.Context, transactionID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM obligations WHERE transaction_id = ?", transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete obligations for transaction %s: %w", transactionID, err)
	}
	return nil
}

func (s *SQLiteStore) queryObligations(ctx context.Context, query string, args ...any) ([]models.Obligation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	var obs []models.Obligation
	for rows.Next() {
		ob, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		obs = append(obs, *ob)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate obligations: %w", err)
	}
	return obs, nil
}

func scanObligation(row rowScanner) (*models.Obligation, error) {
	ob := &models.Obligation{}
	var (
		amount        string
		settled       int
		settledAt     sql.NullInt64
		settledBy     sql.NullString
		transactionID sql.NullString
		fromTx        int
		recipientReg  int
		notifyOnly    int
	)

	if err := row.Scan(&ob.ID, &ob.FromUser, &ob.ToUser, &amount,
		&settled, &settledAt, &settledBy, &transactionID,
		&fromTx, &recipientReg, &notifyOnly, &ob.CreatedAt); err != nil {
		return nil, err
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	ob.Amount = amt
	ob.Settled = settled != 0
	ob.SettledAt = settledAt.Int64
	ob.SettledBy = settledBy.String
	ob.TransactionID = transactionID.String
	ob.FromTransaction = fromTx != 0
	ob.RecipientRegistered = recipientReg != 0
	ob.NotifyOnly = notifyOnly != 0
	return ob, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
