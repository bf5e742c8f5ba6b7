package notify

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/createhub/banking-system/internal/models"
	"github.com/createhub/banking-system/internal/money"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []models.TransactionEvent
	errOut error
}

func (f *fakeSender) SendTransactionNotification(ev models.TransactionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errOut != nil {
		return f.errOut
	}
	f.sent = append(f.sent, ev)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDispatcherDelivers(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, testLogger())
	d.Start()

	for i := 0; i < 5; i++ {
		d.Dispatch(models.TransactionEvent{
			UserEmail:     "user@example.com",
			Type:          models.TransactionDeposit,
			Amount:        money.FromUnits(100),
			AccountNumber: "123456789012",
		})
	}
	d.Stop()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 5 {
		t.Fatalf("delivered=%d want=5", len(sender.sent))
	}
	if sender.sent[0].AccountNumber != "123456789012" {
		t.Fatalf("event=%+v", sender.sent[0])
	}
}

func TestDispatcherSwallowsSendFailures(t *testing.T) {
	sender := &fakeSender{errOut: errors.New("smtp down")}
	d := NewDispatcher(sender, testLogger())
	d.Start()

	// Must not panic, block or propagate; failures stay in the mail
	// domain.
	d.Dispatch(models.TransactionEvent{Type: models.TransactionWithdrawal})
	d.Stop()
}
