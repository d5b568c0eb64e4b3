package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/accounts/internal/database"
	"github.com/forgo/accounts/internal/model"
	"github.com/forgo/accounts/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plaintext password of accounts created without WithPassword
const DefaultPassword = "testpass123"

// Factory creates test accounts in the database
type Factory struct {
	repo *repository.AccountRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{repo: repository.NewAccountRepository(db)}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// AccountOpts customizes account creation
type AccountOpts struct {
	Email    string
	Username string
	Password string
}

// WithEmail sets the account email
func WithEmail(email string) func(*AccountOpts) {
	return func(o *AccountOpts) { o.Email = email }
}

// WithPassword sets the plaintext password that is hashed into the account
func WithPassword(password string) func(*AccountOpts) {
	return func(o *AccountOpts) { o.Password = password }
}

// CreateAccount creates an account with optional customizations
func (f *Factory) CreateAccount(t *testing.T, opts ...func(*AccountOpts)) *model.Account {
	t.Helper()

	suffix := randomID()
	o := &AccountOpts{
		Email:    fmt.Sprintf("user_%s@test.local", suffix),
		Username: fmt.Sprintf("user_%s", suffix),
		Password: DefaultPassword,
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	account := &model.Account{
		Username: o.Username,
		Email:    o.Email,
		Hash:     string(hash),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := f.repo.Create(ctx, account); err != nil {
		t.Fatalf("fixtures: failed to create account: %v", err)
	}
	return account
}
