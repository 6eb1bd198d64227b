package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
)

func bal(username, net string) models.Balance {
	return models.Balance{Username: username, Net: decimal.RequireFromString(net)}
}

func TestNet(t *testing.T) {
	tests := []struct {
		name     string
		balances []models.Balance
		want     []models.SettlementEdge
	}{
		{
			name:     "all zero produces no edges",
			balances: []models.Balance{bal("alice", "0"), bal("bob", "0"), bal("carol", "0")},
			want:     nil,
		},
		{
			name:     "one debtor two creditors",
			balances: []models.Balance{bal("alice", "50"), bal("bob", "-70"), bal("carol", "20")},
			want: []models.SettlementEdge{
				{From: "bob", To: "alice", Amount: decimal.RequireFromString("50")},
				{From: "bob", To: "carol", Amount: decimal.RequireFromString("20")},
			},
		},
		{
			name:     "exact pair",
			balances: []models.Balance{bal("alice", "25"), bal("bob", "-25")},
			want: []models.SettlementEdge{
				{From: "bob", To: "alice", Amount: decimal.RequireFromString("25")},
			},
		},
		{
			name: "equal balances tie-break by username",
			balances: []models.Balance{
				bal("zed", "10"), bal("amy", "10"),
				bal("yve", "-10"), bal("bob", "-10"),
			},
			want: []models.SettlementEdge{
				{From: "bob", To: "amy", Amount: decimal.RequireFromString("10")},
				{From: "yve", To: "zed", Amount: decimal.RequireFromString("10")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Net(tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d edges, want %d: %v", len(got), len(tt.want), got)
			}
			for i, e := range got {
				w := tt.want[i]
				if e.From != w.From || e.To != w.To || !e.Amount.Equal(w.Amount) {
					t.Errorf("edge %d = %s->%s %s, want %s->%s %s",
						i, e.From, e.To, e.Amount, w.From, w.To, w.Amount)
				}
			}
		})
	}
}

// Inbound minus outbound edge amounts must reproduce every participant's
// net balance exactly.
func TestNet_EdgeConservation(t *testing.T) {
	balances := []models.Balance{
		bal("alice", "37.25"), bal("bob", "-50"), bal("carol", "12.75"),
		bal("dave", "-10"), bal("erin", "10"),
	}

	edges := Net(balances)

	for _, b := range balances {
		net := decimal.Zero
		for _, e := range edges {
			if e.To == b.Username {
				net = net.Add(e.Amount)
			}
			if e.From == b.Username {
				net = net.Sub(e.Amount)
			}
		}
		if !net.Equal(b.Net) {
			t.Errorf("%s reconstructed net = %s, want %s", b.Username, net, b.Net)
		}
	}
}

func TestNet_TerminationBound(t *testing.T) {
	balances := []models.Balance{
		bal("a", "10"), bal("b", "20"), bal("c", "30"),
		bal("d", "-15"), bal("e", "-45"),
	}

	edges := Net(balances)

	// 3 creditors + 2 debtors => at most 4 edges.
	if max := 3 + 2 - 1; len(edges) > max {
		t.Errorf("got %d edges, bound is %d", len(edges), max)
	}
}

func TestNet_DoesNotMutateInput(t *testing.T) {
	balances := []models.Balance{bal("alice", "50"), bal("bob", "-50")}
	Net(balances)

	if !balances[0].Net.Equal(decimal.NewFromInt(50)) || !balances[1].Net.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("input balances mutated: %v", balances)
	}
}

func TestEdgesFor(t *testing.T) {
	edges := []models.SettlementEdge{
		{From: "bob", To: "alice", Amount: decimal.RequireFromString("50")},
		{From: "bob", To: "carol", Amount: decimal.RequireFromString("20")},
	}

	got := EdgesFor(edges, "carol")
	if len(got) != 1 || got[0].To != "carol" {
		t.Errorf("EdgesFor(carol) = %v, want the single bob->carol edge", got)
	}

	if got := EdgesFor(edges, "dave"); len(got) != 0 {
		t.Errorf("EdgesFor(dave) = %v, want empty", got)
	}
}

func TestInstructions(t *testing.T) {
	edges := []models.SettlementEdge{
		{From: "bob", To: "alice", Amount: decimal.RequireFromString("50")},
	}

	global := Instructions(edges)
	if len(global) != 1 || global[0] != "alice receives $50 from bob" {
		t.Errorf("Instructions = %v", global)
	}

	owe := InstructionsFor(edges, "bob")
	if len(owe) != 1 || owe[0] != "Pay $50 to alice" {
		t.Errorf("InstructionsFor(bob) = %v", owe)
	}

	receive := InstructionsFor(edges, "alice")
	if len(receive) != 1 || receive[0] != "bob should pay you $50" {
		t.Errorf("InstructionsFor(alice) = %v", receive)
	}
}
