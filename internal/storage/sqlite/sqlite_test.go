package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_Transactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("SaveTransaction generates ID and timestamp", func(t *testing.T) {
		tx := &models.Transaction{
			Description:   "lunch",
			Amount:        decimal.RequireFromString("12.50"),
			PayerUsername: "alice",
			PayeeUsername: "bob",
			CreatedBy:     "alice",
		}

		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}
		if tx.ID == "" {
			t.Error("Expected transaction ID to be generated")
		}
		if tx.Timestamp == 0 {
			t.Error("Expected Timestamp to be set")
		}
	})

	t.Run("GetTransaction preserves amount scale", func(t *testing.T) {
		tx := &models.Transaction{
			Amount:        decimal.RequireFromString("7.30"),
			PayerUsername: "carol",
			PayeeUsername: "dave",
			CreatedBy:     "carol",
		}
		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}

		got, err := store.GetTransaction(ctx, tx.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if got.Amount.String() != "7.30" {
			t.Errorf("amount = %s, want 7.30 (scale preserved)", got.Amount.String())
		}
		if got.PayerUsername != "carol" || got.PayeeUsername != "dave" {
			t.Errorf("participants = %s/%s, want carol/dave", got.PayerUsername, got.PayeeUsername)
		}
	})

	t.Run("ListTransactionsByParticipant is case-insensitive", func(t *testing.T) {
		tx := &models.Transaction{
			Amount:        decimal.RequireFromString("5"),
			PayerUsername: "erin",
			PayeeUsername: "frank",
			CreatedBy:     "erin",
		}
		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}

		txs, err := store.ListTransactionsByParticipant(ctx, "ERIN")
		if err != nil {
			t.Fatalf("ListTransactionsByParticipant failed: %v", err)
		}
		if len(txs) != 1 {
			t.Fatalf("got %d transactions, want 1", len(txs))
		}

		txs, err = store.ListTransactionsByParticipant(ctx, "Frank")
		if err != nil {
			t.Fatalf("ListTransactionsByParticipant failed: %v", err)
		}
		if len(txs) != 1 {
			t.Errorf("got %d transactions for payee match, want 1", len(txs))
		}
	})

	t.Run("DeleteTransaction removes the row", func(t *testing.T) {
		tx := &models.Transaction{
			Amount:        decimal.RequireFromString("1"),
			PayerUsername: "gina",
			PayeeUsername: "hank",
		}
		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}

		if err := store.DeleteTransaction(ctx, tx.ID); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}
		if _, err := store.GetTransaction(ctx, tx.ID); err == nil {
			t.Error("expected error getting deleted transaction")
		}
	})

	t.Run("DeleteTransaction on unknown id fails", func(t *testing.T) {
		if err := store.DeleteTransaction(ctx, "no-such-id"); err == nil {
			t.Error("expected error deleting unknown transaction")
		}
	})
}

func TestSQLiteStore_Obligations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("SaveObligation round-trips all fields", func(t *testing.T) {
		ob := &models.Obligation{
			FromUser:            "bob",
			ToUser:              "alice",
			Amount:              decimal.RequireFromString("40.00"),
			TransactionID:       "tx-1",
			FromTransaction:     true,
			RecipientRegistered: true,
		}
		if err := store.SaveObligation(ctx, ob); err != nil {
			t.Fatalf("SaveObligation failed: %v", err)
		}

		got, err := store.GetObligation(ctx, ob.ID)
		if err != nil {
			t.Fatalf("GetObligation failed: %v", err)
		}
		if got.FromUser != "bob" || got.ToUser != "alice" {
			t.Errorf("parties = %s/%s, want bob/alice", got.FromUser, got.ToUser)
		}
		if got.Amount.String() != "40.00" {
			t.Errorf("amount = %s, want 40.00", got.Amount.String())
		}
		if !got.FromTransaction || got.TransactionID != "tx-1" {
			t.Errorf("transaction link lost: fromTransaction=%v id=%q", got.FromTransaction, got.TransactionID)
		}
		if got.Settled || got.SettledAt != 0 || got.SettledBy != "" {
			t.Errorf("new obligation should be unsettled: %+v", got)
		}
	})

	t.Run("MarkObligationSettled is one-way", func(t *testing.T) {
		ob := &models.Obligation{
			FromUser: "bob",
			ToUser:   "alice",
			Amount:   decimal.RequireFromString("10"),
		}
		if err := store.SaveObligation(ctx, ob); err != nil {
			t.Fatalf("SaveObligation failed: %v", err)
		}

		if err := store.MarkObligationSettled(ctx, ob.ID, "alice", 1000); err != nil {
			t.Fatalf("MarkObligationSettled failed: %v", err)
		}

		// A second settle attempt must not overwrite who settled first.
		if err := store.MarkObligationSettled(ctx, ob.ID, "bob", 2000); err != nil {
			t.Fatalf("second MarkObligationSettled failed: %v", err)
		}

		got, err := store.GetObligation(ctx, ob.ID)
		if err != nil {
			t.Fatalf("GetObligation failed: %v", err)
		}
		if !got.Settled {
			t.Error("obligation should be settled")
		}
		if got.SettledBy != "alice" || got.SettledAt != 1000 {
			t.Errorf("first settle did not stick: settledBy=%s settledAt=%d", got.SettledBy, got.SettledAt)
		}
	})

	t.Run("ListObligationsByUser returns both directions newest first", func(t *testing.T) {
		first := &models.Obligation{FromUser: "ivan", ToUser: "judy", Amount: decimal.RequireFromString("1"), CreatedAt: 100}
		second := &models.Obligation{FromUser: "judy", ToUser: "ivan", Amount: decimal.RequireFromString("2"), CreatedAt: 200}
		for _, ob := range []*models.Obligation{first, second} {
			if err := store.SaveObligation(ctx, ob); err != nil {
				t.Fatalf("SaveObligation failed: %v", err)
			}
		}

		obs, err := store.ListObligationsByUser(ctx, "ivan")
		if err != nil {
			t.Fatalf("ListObligationsByUser failed: %v", err)
		}
		if len(obs) != 2 {
			t.Fatalf("got %d obligations, want 2", len(obs))
		}
		if obs[0].ID != second.ID {
			t.Errorf("expected newest obligation first, got %s", obs[0].ID)
		}
	})

	t.Run("DeleteObligationsByTransaction prunes linked rows only", func(t *testing.T) {
		linked := &models.Obligation{FromUser: "kim", ToUser: "leo", Amount: decimal.RequireFromString("3"), TransactionID: "tx-prune"}
		unlinked := &models.Obligation{FromUser: "kim", ToUser: "leo", Amount: decimal.RequireFromString("4")}
		for _, ob := range []*models.Obligation{linked, unlinked} {
			if err := store.SaveObligation(ctx, ob); err != nil {
				t.Fatalf("SaveObligation failed: %v", err)
			}
		}

		if err := store.DeleteObligationsByTransaction(ctx, "tx-prune"); err != nil {
			t.Fatalf("DeleteObligationsByTransaction failed: %v", err)
		}

		if _, err := store.GetObligation(ctx, linked.ID); err == nil {
			t.Error("linked obligation should be deleted")
		}
		if _, err := store.GetObligation(ctx, unlinked.ID); err != nil {
			t.Errorf("unlinked obligation should survive: %v", err)
		}
	})
}

func TestSQLiteStore_Audit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []*models.AuditEntry{
		{Action: models.AuditActionCreated, Payload: `{"id":"a"}`, PerformedBy: "alice", Timestamp: 100},
		{Action: models.AuditActionDeleted, Payload: `{"id":"a"}`, PerformedBy: "alice", Timestamp: 200},
	}
	for _, e := range entries {
		if err := store.SaveAuditEntry(ctx, e); err != nil {
			t.Fatalf("SaveAuditEntry failed: %v", err)
		}
	}

	got, err := store.ListAuditEntries(ctx)
	if err != nil {
		t.Fatalf("ListAuditEntries failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Action != models.AuditActionDeleted {
		t.Errorf("expected newest entry first, got %s", got[0].Action)
	}

	if err := store.ClearAuditEntries(ctx); err != nil {
		t.Fatalf("ClearAuditEntries failed: %v", err)
	}
	got, err = store.ListAuditEntries(ctx)
	if err != nil {
		t.Fatalf("ListAuditEntries after clear failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d entries after clear, want 0", len(got))
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", Phone: "+15551234567"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		got, err := store.GetUserByUsername(ctx, "ALICE")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if got == nil || got.Phone != "+15551234567" {
			t.Errorf("got %+v, want alice with phone", got)
		}
	})

	t.Run("missing user returns nil without error", func(t *testing.T) {
		got, err := store.GetUserByUsername(ctx, "nobody")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("IsRegistered", func(t *testing.T) {
		ok, err := store.IsRegistered(ctx, "Alice")
		if err != nil || !ok {
			t.Errorf("IsRegistered(Alice) = %v, %v; want true", ok, err)
		}
		ok, err = store.IsRegistered(ctx, "nobody")
		if err != nil || ok {
			t.Errorf("IsRegistered(nobody) = %v, %v; want false", ok, err)
		}
	})
}
