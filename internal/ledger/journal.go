package ledger

import (
	"context"

	"github.com/createhub/banking-system/internal/models"
	"github.com/createhub/banking-system/internal/money"
)

// BalanceUpdate is one account's post-operation balance, written to the
// durable registry together with the transaction record.
type BalanceUpdate struct {
	AccountID int64
	Balance   money.Money
}

// Journal is the durable append-only transaction log. Append must write
// the record and the balance updates as one unit: either all of it is
// durable or none of it is.
type Journal interface {
	// Append persists the record and the post-operation balances,
	// assigning the record's id and timestamp. The returned record is the
	// completed immutable form.
	Append(ctx context.Context, rec *models.Transaction, updates []BalanceUpdate) (*models.Transaction, error)

	// History returns the records where the account is source or
	// destination, most recent first. A limit <= 0 means no limit.
	History(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error)
}

// Registry is the durable account registry.
type Registry interface {
	// CreateAccount persists a new account row, assigning its id and
	// timestamps.
	CreateAccount(ctx context.Context, acct *models.Account) error
}
