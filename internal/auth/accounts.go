package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong
// password; callers must not distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Account is a staff login with a role.
type Account struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	PasswordHash string
}

// Accounts persists staff accounts and refresh tokens.
type Accounts interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	SaveRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error
	RevokeRefreshToken(ctx context.Context, token string) error
}

// Authenticate verifies an email/password pair against the account store.
func Authenticate(ctx context.Context, accounts Accounts, email, password string) (Account, error) {
	acct, err := accounts.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// PostgresAccounts is the production account store.
type PostgresAccounts struct {
	db *sql.DB
}

// NewPostgresAccounts creates an account store over an open pool.
func NewPostgresAccounts(db *sql.DB) *PostgresAccounts {
	return &PostgresAccounts{db: db}
}

func (a *PostgresAccounts) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, password_hash
		FROM staff_accounts WHERE email = $1
	`, email)
	var acct Account
	if err := row.Scan(&acct.ID, &acct.Email, &acct.Name, &acct.Role, &acct.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	return acct, nil
}

func (a *PostgresAccounts) SaveRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (account_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, accountID, token, expiresAt)
	return err
}

func (a *PostgresAccounts) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := a.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}

// MemoryAccounts is a fixture store for dev mode and tests.
type MemoryAccounts struct {
	mu      sync.Mutex
	byEmail map[string]Account
	revoked map[string]bool
	refresh map[string]string
}

// NewMemoryAccounts creates an empty in-memory account store.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		byEmail: make(map[string]Account),
		revoked: make(map[string]bool),
		refresh: make(map[string]string),
	}
}

// Seed registers an account, hashing the given plaintext password.
func (a *MemoryAccounts) Seed(acct Account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acct.PasswordHash = string(hash)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byEmail[strings.ToLower(acct.Email)] = acct
	return nil
}

func (a *MemoryAccounts) FindByEmail(_ context.Context, email string) (Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acct, ok := a.byEmail[email]
	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

func (a *MemoryAccounts) SaveRefreshToken(_ context.Context, accountID, token string, _ time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refresh[token] = accountID
	return nil
}

func (a *MemoryAccounts) RevokeRefreshToken(_ context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revoked[token] = true
	return nil
}
