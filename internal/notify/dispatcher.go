package notify

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/createhub/banking-system/internal/models"
)

// NotificationSender sends one transaction notification.
type NotificationSender interface {
	SendTransactionNotification(ev models.TransactionEvent) error
}

// Dispatcher consumes transaction events on a buffered channel and hands
// them to the sender, keeping mail delivery entirely off the ledger's
// failure path.
type Dispatcher struct {
	sender NotificationSender
	log    *logrus.Logger

	events chan models.TransactionEvent
	done   chan struct{}
	once   sync.Once
}

// NewDispatcher creates a dispatcher with a buffer of pending events.
func NewDispatcher(sender NotificationSender, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		log:    log,
		events: make(chan models.TransactionEvent, 256),
		done:   make(chan struct{}),
	}
}

// Start begins consuming events in the background.
func (d *Dispatcher) Start() {
	go func() {
		defer close(d.done)
		for ev := range d.events {
			if err := d.sender.SendTransactionNotification(ev); err != nil {
				d.log.WithError(err).Warnf("notification delivery failed for account %s", ev.AccountNumber)
			}
		}
	}()
}

// Dispatch enqueues an event without blocking the caller. If the buffer is
// full the event is dropped with a warning; notification delivery is best
// effort and must not stall ledger operations.
func (d *Dispatcher) Dispatch(ev models.TransactionEvent) {
	select {
	case d.events <- ev:
	default:
		d.log.Warnf("notification buffer full, dropping %s event for account %s", ev.Type, ev.AccountNumber)
	}
}

// Stop drains pending events and waits for delivery to finish.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.events)
	})
	<-d.done
}
