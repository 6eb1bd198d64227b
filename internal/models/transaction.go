package models

import "github.com/shopspring/decimal"

// Transaction represents one raw pairwise payment record.
// Amount semantics: the payer is owed Amount by the payee.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	// Description is a free-form note for the transaction.
	Description string `json:"description"`

	// Amount is the signed decimal amount, scale-preserving.
	Amount decimal.Decimal `json:"amount"`

	// Timestamp is the Unix timestamp of the transaction event.
	Timestamp int64 `json:"timestamp"`

	// PayerUsername is the canonical username of the participant who paid.
	PayerUsername string `json:"payerUsername"`

	// PayeeUsername is the canonical username of the participant who owes.
	PayeeUsername string `json:"payeeUsername"`

	// CreatedBy is the canonical username of the account that recorded
	// this transaction.
	CreatedBy string `json:"createdBy"`
}
