package ledger

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
)

// Net converts a balance set into a minimal list of directed settlement
// edges using greedy largest-first matching.
//
// Creditors (net > 0) are sorted by balance descending, debtors (net < 0)
// ascending (most negative first); zero balances are excluded. Equal amounts
// tie-break by username ascending so the output is a deterministic total
// order. A two-pointer merge then repeatedly transfers
// min(creditor, |debtor|) from the current debtor to the current creditor
// and advances whichever side reached exactly zero, so at most
// len(creditors)+len(debtors)-1 edges are emitted.
func Net(balances []models.Balance) []models.SettlementEdge {
	var creditors, debtors []models.Balance
	for _, b := range balances {
		switch b.Net.Sign() {
		case 1:
			creditors = append(creditors, b)
		case -1:
			debtors = append(debtors, b)
		}
	}

	slices.SortFunc(creditors, func(a, b models.Balance) int {
		if c := b.Net.Cmp(a.Net); c != 0 {
			return c
		}
		return compareUsernames(a.Username, b.Username)
	})
	slices.SortFunc(debtors, func(a, b models.Balance) int {
		if c := a.Net.Cmp(b.Net); c != 0 {
			return c
		}
		return compareUsernames(a.Username, b.Username)
	})

	var edges []models.SettlementEdge
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		cred := &creditors[i]
		deb := &debtors[j]

		owe := decimal.Min(cred.Net, deb.Net.Abs())
		edges = append(edges, models.SettlementEdge{
			From:   deb.Username,
			To:     cred.Username,
			Amount: owe,
		})

		cred.Net = cred.Net.Sub(owe)
		deb.Net = deb.Net.Add(owe)

		if cred.Net.IsZero() {
			i++
		}
		if deb.Net.IsZero() {
			j++
		}
	}

	return edges
}

func compareUsernames(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// EdgesFor restricts a global edge list to edges where the user appears as
// debtor or creditor. It deliberately never synthesizes edges from stored
// obligations: if no current edge touches the user, the view is empty rather
// than showing stale network data from old snapshots.
func EdgesFor(edges []models.SettlementEdge, username string) []models.SettlementEdge {
	var out []models.SettlementEdge
	for _, e := range edges {
		if e.From == username || e.To == username {
			out = append(out, e)
		}
	}
	return out
}

// Instructions renders global edges as human-readable payment instructions.
func Instructions(edges []models.SettlementEdge) []string {
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, fmt.Sprintf("%s receives $%s from %s", e.To, e.Amount.String(), e.From))
	}
	return out
}

// InstructionsFor renders the user-relative view of their edges.
func InstructionsFor(edges []models.SettlementEdge, username string) []string {
	var out []string
	for _, e := range edges {
		switch username {
		case e.From:
			out = append(out, fmt.Sprintf("Pay $%s to %s", e.Amount.String(), e.To))
		case e.To:
			out = append(out, fmt.Sprintf("%s should pay you $%s", e.From, e.Amount.String()))
		}
	}
	return out
}
