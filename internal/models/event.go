package models

import "github.com/createhub/banking-system/internal/money"

// TransactionEvent is the payload a successful ledger operation produces
// for the notification dispatcher. It carries everything an outbound
// notification needs so delivery never has to touch ledger state.
type TransactionEvent struct {
	UserEmail     string
	UserName      string
	Type          string
	Amount        money.Money
	AccountNumber string
	Balance       money.Money
	Description   string
}
