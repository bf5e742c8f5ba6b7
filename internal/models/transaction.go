package models

import (
	"time"

	"github.com/createhub/banking-system/internal/money"
)

// Transaction kinds.
const (
	TransactionDeposit    = "deposit"
	TransactionWithdrawal = "withdrawal"
	TransactionTransfer   = "transfer"
)

// Transaction is one immutable record in the append-only history.
//
// Amount is always positive; the signed effect on an account follows from
// Type and whether the account is the source or the destination.
// FromAccountID is set for withdrawals and transfers, ToAccountID for
// deposits and transfers. ID and CreatedAt are assigned at append time.
type Transaction struct {
	ID            int64       `json:"id"`
	Type          string      `json:"type"`
	FromAccountID *int64      `json:"from_account_id,omitempty"`
	ToAccountID   *int64      `json:"to_account_id,omitempty"`
	Amount        money.Money `json:"amount"`
	Description   string      `json:"description,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// EffectOn returns the signed effect this record has on the given account:
// positive for credits, negative for debits, zero if the account is not a
// party to the record.
func (t *Transaction) EffectOn(accountID int64) money.Money {
	var effect money.Money
	if t.ToAccountID != nil && *t.ToAccountID == accountID {
		effect = effect.Add(t.Amount)
	}
	if t.FromAccountID != nil && *t.FromAccountID == accountID {
		effect = effect.Sub(t.Amount)
	}
	return effect
}
