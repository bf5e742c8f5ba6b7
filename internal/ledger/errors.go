package ledger

import (
	"errors"

	"github.com/createhub/banking-system/internal/store"
)

var (
	// ErrInvalidAmount means the amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidAccountType means the account type is not supported.
	ErrInvalidAccountType = errors.New("invalid account type")

	// ErrSameAccount means a transfer names its own source as destination.
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrPersistence means the durable registry or transaction log failed.
	// Any balance already applied in memory has been rolled back.
	ErrPersistence = errors.New("persistence failure")

	// Re-exported store errors so callers can classify every ledger
	// failure from this package alone.
	ErrNotFound          = store.ErrAccountNotFound
	ErrInsufficientFunds = store.ErrInsufficientFunds
	ErrBusy              = store.ErrBusy
)
