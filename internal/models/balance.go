package models

import "github.com/shopspring/decimal"

// Balance is a participant's net position across all transactions.
// Positive means others owe this user; negative means this user owes others.
// Balances are derived on every query and never persisted.
type Balance struct {
	Username string          `json:"username"`
	Net      decimal.Decimal `json:"net"`
}

// SettlementEdge is one directed payment instruction produced by the netting
// optimizer: From (debtor) pays Amount to To (creditor). Edges are derived
// on every query and never persisted; snapshots persist Obligations instead.
type SettlementEdge struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}
