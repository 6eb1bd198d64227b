// Package ledger holds the pure computation core: balance aggregation over
// raw transactions and the greedy debt-netting optimizer. Nothing here
// touches storage; both halves are deterministic functions of their input.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
)

// AggregateBalances folds transactions into one signed net balance per
// participant: +amount for the payer, -amount for the payee. Transactions
// missing either side are skipped. Every touched participant appears in the
// result, including those whose net is exactly zero; callers filter.
//
// Usernames are canonicalized (trim + lowercase) at the transaction-write
// boundary, so the fold uses them as-is. Output order follows first
// appearance in the input, which keeps the result deterministic for a given
// transaction ordering.
func AggregateBalances(txs []models.Transaction) []models.Balance {
	totals := make(map[string]decimal.Decimal)
	var order []string

	add := func(user string, amt decimal.Decimal) {
		cur, ok := totals[user]
		if !ok {
			order = append(order, user)
			cur = decimal.Zero
		}
		totals[user] = cur.Add(amt)
	}

	for _, tx := range txs {
		if tx.PayerUsername == "" || tx.PayeeUsername == "" {
			continue
		}
		add(tx.PayerUsername, tx.Amount)
		add(tx.PayeeUsername, tx.Amount.Neg())
	}

	balances := make([]models.Balance, 0, len(order))
	for _, user := range order {
		balances = append(balances, models.Balance{Username: user, Net: totals[user]})
	}
	return balances
}

// NetFor returns the net balance for one user from a balance list, or zero
// if the user does not appear.
func NetFor(balances []models.Balance, username string) decimal.Decimal {
	for _, b := range balances {
		if b.Username == username {
			return b.Net
		}
	}
	return decimal.Zero
}
