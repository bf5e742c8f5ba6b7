// Package store holds the authoritative in-memory account state: current
// balances keyed by account id, a secondary index by account number, and
// the per-account mutation locks the ledger engine serializes on.
//
// Balances are mutated only through ApplyDelta, and only by a caller that
// holds the account's lock for the whole validate-apply-record sequence.
package store

import (
	"context"
	"crypto/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/createhub/banking-system/internal/models"
	"github.com/createhub/banking-system/internal/money"
)

const (
	// NumberLength is the length of generated account numbers.
	NumberLength = 12

	// maxNumberAttempts bounds collision retries during number generation.
	maxNumberAttempts = 32
)

// entry pairs an account with its mutation lock. The lock is a one-slot
// channel so acquisition can honor context cancellation.
type entry struct {
	lock chan struct{}
	acct *models.Account
}

// AccountStore is the authoritative holder of current account balances.
//
// The store mutex guards the maps and individual field access; the
// per-account locks serialize whole ledger operations. The mutex is never
// held while waiting on an account lock.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[int64]*entry
	numbers  map[string]int64
	reserved map[string]struct{}
}

// NewAccountStore builds a store preloaded with the given accounts,
// typically the rows loaded from the durable registry at startup.
func NewAccountStore(accounts []*models.Account) *AccountStore {
	s := &AccountStore{
		accounts: make(map[int64]*entry, len(accounts)),
		numbers:  make(map[string]int64, len(accounts)),
		reserved: make(map[string]struct{}),
	}
	for _, a := range accounts {
		s.accounts[a.ID] = &entry{lock: make(chan struct{}, 1), acct: a}
		s.numbers[a.Number] = a.ID
	}
	return s
}

// Get returns a snapshot copy of the account.
func (s *AccountStore) Get(id int64) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.accounts[id]
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	return *e.acct, nil
}

// Balance returns the current balance of the account.
func (s *AccountStore) Balance(id int64) (money.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.accounts[id]
	if !ok {
		return money.Zero, ErrAccountNotFound
	}
	return e.acct.Balance, nil
}

// ResolveNumber maps a public account number to the internal account id.
func (s *AccountStore) ResolveNumber(number string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.numbers[number]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return id, nil
}

// Accounts returns snapshot copies of every account, ordered by id.
func (s *AccountStore) Accounts() []models.Account {
	s.mu.RLock()
	out := make([]models.Account, 0, len(s.accounts))
	for _, e := range s.accounts {
		out = append(out, *e.acct)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lock acquires the mutation locks for the given accounts, always in
// ascending id order so two concurrent multi-account operations can never
// deadlock on each other. On cancellation every lock acquired so far is
// released and ErrBusy is returned. Fails with ErrAccountNotFound before
// acquiring anything if any id is unknown.
func (s *AccountStore) Lock(ctx context.Context, ids ...int64) error {
	ordered := lockOrder(ids)

	s.mu.RLock()
	entries := make([]*entry, len(ordered))
	for i, id := range ordered {
		e, ok := s.accounts[id]
		if !ok {
			s.mu.RUnlock()
			return ErrAccountNotFound
		}
		entries[i] = e
	}
	s.mu.RUnlock()

	for i, e := range entries {
		select {
		case e.lock <- struct{}{}:
		case <-ctx.Done():
			for j := i - 1; j >= 0; j-- {
				<-entries[j].lock
			}
			return ErrBusy
		}
	}
	return nil
}

// Unlock releases locks previously acquired with Lock.
func (s *AccountStore) Unlock(ids ...int64) {
	ordered := lockOrder(ids)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range ordered {
		if e, ok := s.accounts[id]; ok {
			<-e.lock
		}
	}
}

// ApplyDelta atomically adds the signed delta to the stored balance and
// returns the new balance. The stored balance is left unchanged if the
// result would be negative. The caller must hold the account's lock.
func (s *AccountStore) ApplyDelta(id int64, delta money.Money) (money.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.accounts[id]
	if !ok {
		return money.Zero, ErrAccountNotFound
	}
	next := e.acct.Balance.Add(delta)
	if next.IsNegative() {
		return money.Zero, ErrInsufficientFunds
	}
	e.acct.Balance = next
	e.acct.UpdatedAt = time.Now()
	return next, nil
}

// ReserveNumber draws a fresh fixed-length random digit account number,
// retrying on collision against assigned and reserved numbers. The
// reservation holds the number until Register or ReleaseNumber.
func (s *AccountStore) ReserveNumber() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < maxNumberAttempts; i++ {
		number, err := randomDigits(NumberLength)
		if err != nil {
			return "", err
		}
		if _, taken := s.numbers[number]; taken {
			continue
		}
		if _, taken := s.reserved[number]; taken {
			continue
		}
		s.reserved[number] = struct{}{}
		return number, nil
	}
	return "", ErrNumberExhausted
}

// ReleaseNumber drops a reservation that will not be used, e.g. because
// persisting the new account failed.
func (s *AccountStore) ReleaseNumber(number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, number)
}

// Register adds a newly created account to the store and converts its
// number reservation into an assignment.
func (s *AccountStore) Register(acct *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, taken := s.numbers[acct.Number]; taken && owner != acct.ID {
		return ErrNumberTaken
	}
	delete(s.reserved, acct.Number)
	s.accounts[acct.ID] = &entry{lock: make(chan struct{}, 1), acct: acct}
	s.numbers[acct.Number] = acct.ID
	return nil
}

// SetSavingsRate updates the informational interest rate on every savings
// account. Balances are untouched.
func (s *AccountStore) SetSavingsRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.accounts {
		if e.acct.Type == models.AccountTypeSavings {
			e.acct.InterestRate = rate
		}
	}
}

// lockOrder returns the ids deduplicated and sorted ascending.
func lockOrder(ids []int64) []int64 {
	ordered := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	return ordered
}

// randomDigits generates a random digit string of the given length.
func randomDigits(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	var builder strings.Builder
	for _, b := range raw {
		builder.WriteByte(b%10 + '0')
	}
	return builder.String(), nil
}
