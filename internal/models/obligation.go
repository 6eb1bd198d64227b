package models

import "github.com/shopspring/decimal"

// Obligation is a persisted, actionable settlement entry between two users.
// It is created either from a single transaction (TransactionID set,
// FromTransaction true) or as part of a netting snapshot. The only permitted
// mutation is the one-way settled transition.
type Obligation struct {
	// ID is the unique identifier for the obligation (UUID format).
	ID string `json:"id"`

	// FromUser owes the money.
	FromUser string `json:"fromUser"`

	// ToUser should receive the money.
	ToUser string `json:"toUser"`

	Amount decimal.Decimal `json:"amount"`

	// Settled is a one-way flag: once true it never reverts.
	Settled bool `json:"settled"`

	// SettledAt is the Unix timestamp of settlement confirmation, 0 while
	// unsettled.
	SettledAt int64 `json:"settledAt,omitempty"`

	// SettledBy is the username that confirmed settlement.
	SettledBy string `json:"settledBy,omitempty"`

	// TransactionID links back to the source transaction when this entry
	// originates from one; empty for snapshot entries.
	TransactionID string `json:"transactionId,omitempty"`

	// FromTransaction marks entries derived from a concrete transaction,
	// as opposed to a netting snapshot.
	FromTransaction bool `json:"fromTransaction"`

	// RecipientRegistered records whether ToUser had a registered account
	// when this entry was created.
	RecipientRegistered bool `json:"recipientRegistered"`

	// NotifyOnly entries exist purely to alert a user and are excluded
	// from balance and graph views.
	NotifyOnly bool `json:"notifyOnly"`

	// CreatedAt is the Unix timestamp when the obligation was created.
	CreatedAt int64 `json:"createdAt"`

	// FromUserPhone and ToUserPhone are contact annotations attached at
	// read time from the user directory; never persisted.
	FromUserPhone string `json:"fromUserPhone,omitempty"`
	ToUserPhone   string `json:"toUserPhone,omitempty"`
}
