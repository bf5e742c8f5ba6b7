// Package ledger implements the transaction engine: the only entry point
// for value-moving operations against account balances.
//
// Every operation is one atomic validate-apply-record unit. The engine
// holds the per-account locks for the whole sequence, applies balance
// deltas through the account store, and appends the immutable record to
// the journal before releasing the locks. If the journal append fails the
// in-memory deltas are reversed while the locks are still held, so a
// failed operation is never observable as a partial state.
package ledger

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/createhub/banking-system/internal/models"
	"github.com/createhub/banking-system/internal/money"
	"github.com/createhub/banking-system/internal/store"
)

// TransferResult carries both post-transfer balances back to the caller.
type TransferResult struct {
	FromAccountID   int64
	ToAccountID     int64
	SenderBalance   money.Money
	ReceiverBalance money.Money
}

// Engine validates, applies and records deposits, withdrawals and
// transfers. It exclusively owns balance mutation and history append;
// nothing else in the system writes either.
type Engine struct {
	store    *store.AccountStore
	journal  Journal
	registry Registry
	log      *logrus.Logger
}

// NewEngine builds an engine around the account store and the injected
// persistence handles.
func NewEngine(accounts *store.AccountStore, journal Journal, registry Registry, log *logrus.Logger) *Engine {
	return &Engine{store: accounts, journal: journal, registry: registry, log: log}
}

// Deposit credits the account and appends a deposit record.
func (e *Engine) Deposit(ctx context.Context, accountID int64, amount money.Money, description string) (money.Money, error) {
	if !amount.IsPositive() {
		return money.Zero, ErrInvalidAmount
	}
	if err := e.store.Lock(ctx, accountID); err != nil {
		return money.Zero, err
	}
	defer e.store.Unlock(accountID)

	balance, err := e.store.ApplyDelta(accountID, amount)
	if err != nil {
		return money.Zero, err
	}

	rec := &models.Transaction{
		Type:        models.TransactionDeposit,
		ToAccountID: &accountID,
		Amount:      amount,
		Description: description,
	}
	if _, err := e.journal.Append(ctx, rec, []BalanceUpdate{{AccountID: accountID, Balance: balance}}); err != nil {
		e.rollback(accountID, amount.Neg())
		return money.Zero, fmt.Errorf("%w: append deposit record: %v", ErrPersistence, err)
	}
	return balance, nil
}

// Withdraw debits the account and appends a withdrawal record. Fails with
// ErrInsufficientFunds, leaving the balance untouched, if the account does
// not cover the amount.
func (e *Engine) Withdraw(ctx context.Context, accountID int64, amount money.Money, description string) (money.Money, error) {
	if !amount.IsPositive() {
		return money.Zero, ErrInvalidAmount
	}
	if err := e.store.Lock(ctx, accountID); err != nil {
		return money.Zero, err
	}
	defer e.store.Unlock(accountID)

	balance, err := e.store.ApplyDelta(accountID, amount.Neg())
	if err != nil {
		return money.Zero, err
	}

	rec := &models.Transaction{
		Type:          models.TransactionWithdrawal,
		FromAccountID: &accountID,
		Amount:        amount,
		Description:   description,
	}
	if _, err := e.journal.Append(ctx, rec, []BalanceUpdate{{AccountID: accountID, Balance: balance}}); err != nil {
		e.rollback(accountID, amount)
		return money.Zero, fmt.Errorf("%w: append withdrawal record: %v", ErrPersistence, err)
	}
	return balance, nil
}

// Transfer moves amount from the source account to the account addressed
// by the public destination number, as one atomic unit covering both legs.
// Both account locks are acquired (in ascending id order) before either
// balance is touched; there is no state where the debit succeeded but the
// credit did not.
func (e *Engine) Transfer(ctx context.Context, fromAccountID int64, toNumber string, amount money.Money, description string) (TransferResult, error) {
	if !amount.IsPositive() {
		return TransferResult{}, ErrInvalidAmount
	}
	toAccountID, err := e.store.ResolveNumber(toNumber)
	if err != nil {
		return TransferResult{}, err
	}
	if toAccountID == fromAccountID {
		return TransferResult{}, ErrSameAccount
	}
	if err := e.store.Lock(ctx, fromAccountID, toAccountID); err != nil {
		return TransferResult{}, err
	}
	defer e.store.Unlock(fromAccountID, toAccountID)

	senderBalance, err := e.store.ApplyDelta(fromAccountID, amount.Neg())
	if err != nil {
		return TransferResult{}, err
	}
	receiverBalance, err := e.store.ApplyDelta(toAccountID, amount)
	if err != nil {
		e.rollback(fromAccountID, amount)
		return TransferResult{}, err
	}

	rec := &models.Transaction{
		Type:          models.TransactionTransfer,
		FromAccountID: &fromAccountID,
		ToAccountID:   &toAccountID,
		Amount:        amount,
		Description:   description,
	}
	updates := []BalanceUpdate{
		{AccountID: fromAccountID, Balance: senderBalance},
		{AccountID: toAccountID, Balance: receiverBalance},
	}
	if _, err := e.journal.Append(ctx, rec, updates); err != nil {
		e.rollback(fromAccountID, amount)
		e.rollback(toAccountID, amount.Neg())
		return TransferResult{}, fmt.Errorf("%w: append transfer record: %v", ErrPersistence, err)
	}

	return TransferResult{
		FromAccountID:   fromAccountID,
		ToAccountID:     toAccountID,
		SenderBalance:   senderBalance,
		ReceiverBalance: receiverBalance,
	}, nil
}

// CreateAccount opens a new account with a freshly generated public
// number and an optional opening balance. The opening balance is not a
// transaction: history conservation is measured against it.
func (e *Engine) CreateAccount(ctx context.Context, userID, branchID int64, accountType string, opening money.Money) (*models.Account, error) {
	if opening.IsNegative() {
		return nil, ErrInvalidAmount
	}
	switch accountType {
	case models.AccountTypeChecking, models.AccountTypeSavings:
	default:
		return nil, ErrInvalidAccountType
	}

	number, err := e.store.ReserveNumber()
	if err != nil {
		return nil, err
	}
	acct := &models.Account{
		UserID:         userID,
		BranchID:       branchID,
		Number:         number,
		Type:           accountType,
		Balance:        opening,
		OpeningBalance: opening,
	}
	if err := e.registry.CreateAccount(ctx, acct); err != nil {
		e.store.ReleaseNumber(number)
		return nil, fmt.Errorf("%w: create account: %v", ErrPersistence, err)
	}
	if err := e.store.Register(acct); err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"account_id": acct.ID,
		"user_id":    userID,
		"type":       accountType,
	}).Info("account created")
	return acct, nil
}

// History returns the account's transaction records, most recent first,
// bounded by limit (<= 0 means no limit). An empty history is not an
// error; an unknown account is.
func (e *Engine) History(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error) {
	if _, err := e.store.Get(accountID); err != nil {
		return nil, err
	}
	return e.journal.History(ctx, accountID, limit)
}

// Balance returns the account's current balance.
func (e *Engine) Balance(accountID int64) (money.Money, error) {
	return e.store.Balance(accountID)
}

// Account returns a snapshot of the account.
func (e *Engine) Account(accountID int64) (models.Account, error) {
	return e.store.Get(accountID)
}

// SetSavingsRate updates the informational interest rate on in-memory
// savings accounts after a durable rate refresh.
func (e *Engine) SetSavingsRate(rate float64) {
	e.store.SetSavingsRate(rate)
}

// rollback reverses an already-applied delta after a journal failure. The
// caller still holds the account lock, so this cannot race another
// operation; a floor failure here is impossible for credits being undone
// and means corrupted state for debits, which is worth shouting about.
func (e *Engine) rollback(accountID int64, delta money.Money) {
	if _, err := e.store.ApplyDelta(accountID, delta); err != nil {
		e.log.WithFields(logrus.Fields{
			"account_id": accountID,
			"delta":      delta.String(),
		}).WithError(err).Error("balance rollback failed, account needs reconciliation")
	}
}
