package store

import "errors"

var (
	// ErrAccountNotFound means no account carries the given id or number.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds means a debit would take the balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBusy means the account lock could not be acquired before the
	// caller's context was cancelled or timed out.
	ErrBusy = errors.New("account busy")

	// ErrNumberExhausted means account number generation kept colliding.
	// This indicates a misconfigured (too small) number space, not a
	// transient condition.
	ErrNumberExhausted = errors.New("account number space exhausted")

	// ErrNumberTaken means an account was registered with a number that is
	// already assigned.
	ErrNumberTaken = errors.New("account number already taken")
)
