package models

import (
	"time"

	"github.com/createhub/banking-system/internal/money"
)

// Account types supported by the system.
const (
	AccountTypeChecking = "checking"
	AccountTypeSavings  = "savings"
)

// Account represents a bank account.
//
// Number is the public, human-facing identifier used to address transfer
// destinations; it is distinct from ID and immutable once assigned.
// InterestRate is informational only and never applied to the balance here.
type Account struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"user_id"`
	BranchID       int64       `json:"branch_id"`
	Number         string      `json:"account_number"`
	Type           string      `json:"account_type"`
	Balance        money.Money `json:"balance"`
	OpeningBalance money.Money `json:"opening_balance"`
	InterestRate   float64     `json:"interest_rate"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
