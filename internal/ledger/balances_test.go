package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
)

func tx(payer, payee, amount string) models.Transaction {
	return models.Transaction{
		PayerUsername: payer,
		PayeeUsername: payee,
		Amount:        decimal.RequireFromString(amount),
	}
}

func TestAggregateBalances(t *testing.T) {
	tests := []struct {
		name string
		txs  []models.Transaction
		want map[string]string
	}{
		{
			name: "single transaction",
			txs:  []models.Transaction{tx("alice", "bob", "30")},
			want: map[string]string{"alice": "30", "bob": "-30"},
		},
		{
			name: "cycle nets to zero",
			txs: []models.Transaction{
				tx("alice", "bob", "30"),
				tx("bob", "carol", "30"),
				tx("carol", "alice", "30"),
			},
			want: map[string]string{"alice": "0", "bob": "0", "carol": "0"},
		},
		{
			name: "shared debtor",
			txs: []models.Transaction{
				tx("alice", "bob", "50"),
				tx("carol", "bob", "20"),
			},
			want: map[string]string{"alice": "50", "bob": "-70", "carol": "20"},
		},
		{
			name: "missing payee is skipped",
			txs: []models.Transaction{
				tx("alice", "", "10"),
				tx("alice", "bob", "5"),
			},
			want: map[string]string{"alice": "5", "bob": "-5"},
		},
		{
			name: "scale preserved",
			txs:  []models.Transaction{tx("alice", "bob", "10.50")},
			want: map[string]string{"alice": "10.5", "bob": "-10.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateBalances(tt.txs)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d balances, want %d: %v", len(got), len(tt.want), got)
			}
			for _, b := range got {
				want, ok := tt.want[b.Username]
				if !ok {
					t.Errorf("unexpected participant %q", b.Username)
					continue
				}
				if !b.Net.Equal(decimal.RequireFromString(want)) {
					t.Errorf("%s net = %s, want %s", b.Username, b.Net, want)
				}
			}
		})
	}
}

// Every debit has a matching credit, so net balances always sum to zero.
func TestAggregateBalances_Conservation(t *testing.T) {
	txs := []models.Transaction{
		tx("alice", "bob", "12.34"),
		tx("bob", "carol", "0.99"),
		tx("carol", "dave", "100"),
		tx("dave", "alice", "7.50"),
		tx("alice", "carol", "3"),
	}

	sum := decimal.Zero
	for _, b := range AggregateBalances(txs) {
		sum = sum.Add(b.Net)
	}
	if !sum.IsZero() {
		t.Errorf("balances sum to %s, want 0", sum)
	}
}

func TestNetFor(t *testing.T) {
	balances := AggregateBalances([]models.Transaction{tx("alice", "bob", "30")})

	if got := NetFor(balances, "alice"); !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("alice net = %s, want 30", got)
	}
	if got := NetFor(balances, "nobody"); !got.IsZero() {
		t.Errorf("unknown user net = %s, want 0", got)
	}
}
