// Package repository provides the durable state behind the ledger: the
// account registry and the append-only transaction log, both in Postgres.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/createhub/banking-system/internal/ledger"
	"github.com/createhub/banking-system/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO bank.users (username, email, full_name, phone, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.FullName, user.Phone, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by username
func (r *Repository) FindUserByUsername(username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, full_name, phone, password_hash, created_at
		FROM bank.users
		WHERE username = $1`
	err := r.db.QueryRow(query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Phone, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, full_name, phone, password_hash, created_at
		FROM bank.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Phone, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// LoadAccounts reads every account row; the in-memory account store is
// seeded from this at startup.
func (r *Repository) LoadAccounts(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT id, user_id, branch_id, account_number, account_type,
		       balance, opening_balance, interest_rate, created_at, updated_at
		FROM bank.accounts
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a := &models.Account{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.BranchID, &a.Number, &a.Type,
			&a.Balance, &a.OpeningBalance, &a.InterestRate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateAccount persists a new account row, filling in id and timestamps.
func (r *Repository) CreateAccount(ctx context.Context, acct *models.Account) error {
	query := `
		INSERT INTO bank.accounts (user_id, branch_id, account_number, account_type,
		                           balance, opening_balance, interest_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		acct.UserID, acct.BranchID, acct.Number, acct.Type,
		acct.Balance, acct.OpeningBalance, acct.InterestRate).
		Scan(&acct.ID, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccountsByUser returns all accounts owned by the user.
func (r *Repository) FindAccountsByUser(ctx context.Context, userID int64) ([]models.Account, error) {
	query := `
		SELECT id, user_id, branch_id, account_number, account_type,
		       balance, opening_balance, interest_rate, created_at, updated_at
		FROM bank.accounts
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.BranchID, &a.Number, &a.Type,
			&a.Balance, &a.OpeningBalance, &a.InterestRate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Append writes the transaction record and the post-operation balances in
// one database transaction: either both are durable or neither is.
func (r *Repository) Append(ctx context.Context, rec *models.Transaction, updates []ledger.BalanceUpdate) (*models.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bank.accounts SET balance = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			u.Balance, u.AccountID); err != nil {
			return nil, fmt.Errorf("failed to update balance for account %d: %w", u.AccountID, err)
		}
	}

	query := `
		INSERT INTO bank.transactions (transaction_type, from_account_id, to_account_id, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query,
		rec.Type, rec.FromAccountID, rec.ToAccountID, rec.Amount, rec.Description).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rec, nil
}

// History returns the records where the account is source or destination,
// most recent first.
func (r *Repository) History(ctx context.Context, accountID int64, limit int) ([]models.Transaction, error) {
	query := `
		SELECT id, transaction_type, from_account_id, to_account_id, amount, description, created_at
		FROM bank.transactions
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC, id DESC`
	args := []any{accountID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer rows.Close()

	var records []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.FromAccountID, &t.ToAccountID,
			&t.Amount, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, t)
	}
	return records, rows.Err()
}

// ListBranches returns all branches for the account-creation form.
func (r *Repository) ListBranches(ctx context.Context) ([]models.Branch, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, branch_name, address FROM bank.branches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch branches: %w", err)
	}
	defer rows.Close()

	var branches []models.Branch
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// UpdateSavingsRate sets the informational interest rate on every savings
// account.
func (r *Repository) UpdateSavingsRate(ctx context.Context, rate float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bank.accounts SET interest_rate = $1, updated_at = CURRENT_TIMESTAMP WHERE account_type = $2`,
		rate, models.AccountTypeSavings)
	if err != nil {
		return fmt.Errorf("failed to update savings rate: %w", err)
	}
	return nil
}

var (
	_ ledger.Journal  = (*Repository)(nil)
	_ ledger.Registry = (*Repository)(nil)
)
