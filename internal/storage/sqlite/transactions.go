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

const txColumns = "id, description, amount, timestamp, payer_username, payee_username, created_by"

// SaveTransaction persists a new transaction, generating an ID and
// timestamp when unset.
func (s *SQLiteStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Timestamp == 0 {
		tx.Timestamp = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions ("+txColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		tx.ID, tx.Description, tx.Amount.String(), tx.Timestamp,
		tx.PayerUsername, tx.PayeeUsername, tx.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE id = ?", id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns every transaction.
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+txColumns+" FROM transactions")
}

// ListTransactionsByParticipant returns transactions where the user is
// payer or payee. Usernames match case-insensitively so rows written before
// canonicalization still surface.
func (s *SQLiteStore) ListTransactionsByParticipant(ctx context.Context, username string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+txColumns+` FROM transactions
		 WHERE payer_username = ? COLLATE NOCASE OR payee_username = ? COLLATE NOCASE`,
		username, username)
}

// ListTransactionsByCreator returns transactions recorded by the user.
func (s *SQLiteStore) ListTransactionsByCreator(ctx context.Context, username string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE created_by = ? COLLATE NOCASE",
		username)
}

// DeleteTransaction removes a transaction by ID.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var amount string
	if err := row.Scan(&tx.ID, &tx.Description, &amount, &tx.Timestamp,
		&tx.PayerUsername, &tx.PayeeUsername, &tx.CreatedBy); err != nil {
		return nil, err
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	tx.Amount = amt
	return tx, nil
}
