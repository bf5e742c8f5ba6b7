// Package service holds the business logic around the ledger engine:
// users and authentication, account ownership checks, and fan-out of
// notification events after successful operations.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/createhub/banking-system/internal/config"
	"github.com/createhub/banking-system/internal/integrations/cbr"
	"github.com/createhub/banking-system/internal/ledger"
	"github.com/createhub/banking-system/internal/models"
	"github.com/createhub/banking-system/internal/money"
	"github.com/createhub/banking-system/internal/notify"
	"github.com/createhub/banking-system/internal/repository"
)

// Service handles business logic
type Service struct {
	repo       *repository.Repository
	engine     *ledger.Engine
	dispatcher *notify.Dispatcher
	rates      *cbr.Client
	log        *logrus.Logger
	config     *config.Config
}

// NewService initializes a new service
func NewService(repo *repository.Repository, engine *ledger.Engine, dispatcher *notify.Dispatcher, rates *cbr.Client, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, engine: engine, dispatcher: dispatcher, rates: rates, log: log, config: cfg}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, password, email, fullName, phone string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Phone:        phone,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Username)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(username, password string) (string, error) {
	user, err := s.repo.FindUserByUsername(username)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return tokenString, nil
}

// CreateAccount opens a new account for the authenticated user and
// returns it with the generated account number.
func (s *Service) CreateAccount(ctx context.Context, branchID int64, accountType string, opening money.Money) (*models.Account, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.CreateAccount(ctx, userID, branchID, accountType, opening)
}

// Accounts lists the authenticated user's accounts.
func (s *Service) Accounts(ctx context.Context) ([]models.Account, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindAccountsByUser(ctx, userID)
}

// Branches lists all branches for the account-creation form.
func (s *Service) Branches(ctx context.Context) ([]models.Branch, error) {
	return s.repo.ListBranches(ctx)
}

// Deposit credits the user's account and queues a notification.
func (s *Service) Deposit(ctx context.Context, accountID int64, amount money.Money, description string) (money.Money, error) {
	acct, err := s.ownedAccount(ctx, accountID)
	if err != nil {
		return money.Zero, err
	}

	balance, err := s.engine.Deposit(ctx, accountID, amount, description)
	if err != nil {
		return money.Zero, err
	}

	s.notifyTransaction(ctx, acct, models.TransactionDeposit, amount, balance, description)
	return balance, nil
}

// Withdraw debits the user's account and queues a notification.
func (s *Service) Withdraw(ctx context.Context, accountID int64, amount money.Money, description string) (money.Money, error) {
	acct, err := s.ownedAccount(ctx, accountID)
	if err != nil {
		return money.Zero, err
	}

	balance, err := s.engine.Withdraw(ctx, accountID, amount, description)
	if err != nil {
		return money.Zero, err
	}

	s.notifyTransaction(ctx, acct, models.TransactionWithdrawal, amount, balance, description)
	return balance, nil
}

// Transfer moves money from the user's account to the account addressed
// by the destination number and queues a notification for the sender.
func (s *Service) Transfer(ctx context.Context, fromAccountID int64, toNumber string, amount money.Money, description string) (ledger.TransferResult, error) {
	acct, err := s.ownedAccount(ctx, fromAccountID)
	if err != nil {
		return ledger.TransferResult{}, err
	}

	result, err := s.engine.Transfer(ctx, fromAccountID, toNumber, amount, description)
	if err != nil {
		return ledger.TransferResult{}, err
	}

	s.notifyTransaction(ctx, acct, models.TransactionTransfer, amount, result.SenderBalance, description)
	return result, nil
}

// History returns the account's transaction records, most recent first.
func (s *Service) History(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error) {
	if _, err := s.ownedAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.engine.History(ctx, accountID, limit)
}

// RefreshSavingsRate fetches the current key rate and stores it as the
// informational interest rate on savings accounts.
func (s *Service) RefreshSavingsRate(ctx context.Context) error {
	rate, err := s.rates.GetKeyRate()
	if err != nil {
		return fmt.Errorf("failed to fetch key rate: %w", err)
	}
	if err := s.repo.UpdateSavingsRate(ctx, rate); err != nil {
		return err
	}
	s.engine.SetSavingsRate(rate)
	s.log.Infof("Savings rate refreshed: %.2f%%", rate)
	return nil
}

// ownedAccount verifies the account exists and belongs to the
// authenticated user. Foreign accounts are indistinguishable from missing
// ones.
func (s *Service) ownedAccount(ctx context.Context, accountID int64) (models.Account, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return models.Account{}, err
	}
	acct, err := s.engine.Account(accountID)
	if err != nil {
		return models.Account{}, err
	}
	if acct.UserID != userID {
		return models.Account{}, ledger.ErrNotFound
	}
	return acct, nil
}

// notifyTransaction resolves the user's contact details and queues the
// notification event. Lookup failures are logged only; the operation has
// already committed.
func (s *Service) notifyTransaction(ctx context.Context, acct models.Account, kind string, amount, balance money.Money, description string) {
	user, err := s.repo.FindUserByID(acct.UserID)
	if err != nil {
		s.log.WithError(err).Warnf("skipping notification for account %s: user lookup failed", acct.Number)
		return
	}
	s.dispatcher.Dispatch(models.TransactionEvent{
		UserEmail:     user.Email,
		UserName:      user.FullName,
		Type:          kind,
		Amount:        amount,
		AccountNumber: acct.Number,
		Balance:       balance,
		Description:   description,
	})
}

func userIDFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value("userID").(string)
	if !ok || userIDStr == "" {
		return 0, fmt.Errorf("user ID not found in context")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return userID, nil
}
