// Package notify delivers transaction notification emails.
//
// The ledger engine never sends mail. A successful operation produces a
// TransactionEvent payload; the dispatcher consumes those asynchronously
// and a delivery failure is logged, never surfaced as a ledger failure.
package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/createhub/banking-system/internal/config"
	"github.com/createhub/banking-system/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendTransactionNotification sends the confirmation email for a deposit,
// withdrawal or transfer.
func (s *Sender) SendTransactionNotification(ev models.TransactionEvent) error {
	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.cfg.SenderName, s.cfg.SenderEmail)
	e.To = []string{ev.UserEmail}

	amount := ev.Amount.String()
	switch ev.Type {
	case models.TransactionDeposit:
		e.Subject = fmt.Sprintf("Deposit Confirmation - %s", amount)
	case models.TransactionWithdrawal:
		e.Subject = fmt.Sprintf("Withdrawal Notification - %s", amount)
	case models.TransactionTransfer:
		e.Subject = fmt.Sprintf("Transfer Notification - %s", amount)
	default:
		e.Subject = fmt.Sprintf("Transaction Notification - %s", amount)
	}

	body := fmt.Sprintf("Hello %s,\n\n", ev.UserName)
	switch ev.Type {
	case models.TransactionDeposit:
		body += fmt.Sprintf("A deposit of %s has been made to your account %s.\n", amount, ev.AccountNumber)
	case models.TransactionWithdrawal:
		body += fmt.Sprintf("A withdrawal of %s has been made from your account %s.\n", amount, ev.AccountNumber)
	case models.TransactionTransfer:
		body += fmt.Sprintf("A transfer of %s has been processed from your account %s.\n", amount, ev.AccountNumber)
	}
	body += fmt.Sprintf("Your new balance is %s.\n", ev.Balance.String())
	if ev.Description != "" {
		body += fmt.Sprintf("\nDescription: %s\n", ev.Description)
	}
	body += fmt.Sprintf("\nTransaction processed on %s\n", time.Now().Format("January 2, 2006 at 3:04 PM"))
	body += "\nThank you for banking with us!"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send %s notification to %s: %v", ev.Type, ev.UserEmail, err)
		return fmt.Errorf("failed to send %s notification: %w", ev.Type, err)
	}

	s.logger.Infof("Email sent to %s: %s", ev.UserEmail, e.Subject)
	return nil
}
