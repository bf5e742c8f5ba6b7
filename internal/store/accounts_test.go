package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/createhub/banking-system/internal/models"
	"github.com/createhub/banking-system/internal/money"
)

func testStore() *AccountStore {
	return NewAccountStore([]*models.Account{
		{ID: 1, UserID: 1, Number: "111111111111", Type: models.AccountTypeChecking, Balance: money.FromUnits(100000)},
		{ID: 2, UserID: 2, Number: "222222222222", Type: models.AccountTypeSavings, Balance: money.FromUnits(50000)},
	})
}

func TestGetAndBalance(t *testing.T) {
	s := testStore()
	a, err := s.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if a.Number != "111111111111" || a.Balance.Units() != 100000 {
		t.Fatalf("got %+v", a)
	}
	if _, err := s.Get(99); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
	if _, err := s.Balance(99); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestResolveNumber(t *testing.T) {
	s := testStore()
	id, err := s.ResolveNumber("222222222222")
	if err != nil {
		t.Fatal(err)
	}
	if id != 2 {
		t.Fatalf("id=%d want=2", id)
	}
	if _, err := s.ResolveNumber("000000000000"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestApplyDeltaFloor(t *testing.T) {
	s := testStore()
	if err := s.Lock(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	defer s.Unlock(1)

	// Debit below zero is rejected and leaves the balance unchanged.
	if _, err := s.ApplyDelta(1, money.FromUnits(-100001)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	bal, _ := s.Balance(1)
	if bal.Units() != 100000 {
		t.Fatalf("balance=%d want=100000", bal.Units())
	}

	// Debit to exactly zero is allowed.
	nb, err := s.ApplyDelta(1, money.FromUnits(-100000))
	if err != nil {
		t.Fatal(err)
	}
	if !nb.IsZero() {
		t.Fatalf("balance=%s want=0.00", nb)
	}
}

func TestLockUnknownAccount(t *testing.T) {
	s := testStore()
	if err := s.Lock(context.Background(), 1, 99); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
	// Nothing was left held.
	if err := s.Lock(context.Background(), 1); err != nil {
		t.Fatalf("lock after failed Lock: %v", err)
	}
	s.Unlock(1)
}

func TestLockBusyOnTimeout(t *testing.T) {
	s := testStore()
	if err := s.Lock(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	defer s.Unlock(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Lock(ctx, 1, 2); !errors.Is(err, ErrBusy) {
		t.Fatalf("want ErrBusy, got %v", err)
	}
	// Account 2 must not stay locked after the aborted acquisition.
	if err := s.Lock(context.Background(), 2); err != nil {
		t.Fatalf("account 2 still held: %v", err)
	}
	s.Unlock(2)
}

func TestLockOrderingPreventsDeadlock(t *testing.T) {
	s := testStore()
	// Opposite-direction lock sets; with ascending-order acquisition both
	// goroutines finish instead of deadlocking.
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := s.Lock(context.Background(), 1, 2); err != nil {
				t.Error(err)
				return
			}
			s.Unlock(1, 2)
		}()
		go func() {
			defer wg.Done()
			if err := s.Lock(context.Background(), 2, 1); err != nil {
				t.Error(err)
				return
			}
			s.Unlock(2, 1)
		}()
	}
	wg.Wait()
}

func TestReserveNumber(t *testing.T) {
	s := testStore()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n, err := s.ReserveNumber()
		if err != nil {
			t.Fatal(err)
		}
		if len(n) != NumberLength {
			t.Fatalf("number %q length=%d want=%d", n, len(n), NumberLength)
		}
		for _, r := range n {
			if r < '0' || r > '9' {
				t.Fatalf("number %q contains non-digit", n)
			}
		}
		if seen[n] {
			t.Fatalf("number %q reserved twice", n)
		}
		seen[n] = true
	}
}

func TestRegisterRejectsTakenNumber(t *testing.T) {
	s := testStore()
	err := s.Register(&models.Account{ID: 3, Number: "111111111111"})
	if !errors.Is(err, ErrNumberTaken) {
		t.Fatalf("want ErrNumberTaken, got %v", err)
	}
}

func TestSetSavingsRate(t *testing.T) {
	s := testStore()
	s.SetSavingsRate(7.5)
	savings, _ := s.Get(2)
	if savings.InterestRate != 7.5 {
		t.Fatalf("savings rate=%v want=7.5", savings.InterestRate)
	}
	checking, _ := s.Get(1)
	if checking.InterestRate != 0 {
		t.Fatalf("checking rate=%v want=0", checking.InterestRate)
	}
}
