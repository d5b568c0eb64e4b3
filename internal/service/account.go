package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/accounts/internal/database"
	"github.com/forgo/accounts/internal/model"
	"github.com/go-playground/validator/v10"
)

// AccountRepository defines the interface for account storage
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) (int, error)
	Delete(ctx context.Context, id model.AccountID) (int, error)
	List(ctx context.Context) ([]*model.Account, error)
	Ping(ctx context.Context) error
}

// AccountService handles account management and credential checks
type AccountService struct {
	repo       AccountRepository
	bcryptCost int
	validate   *validator.Validate
}

// AccountServiceConfig holds configuration for the account service
type AccountServiceConfig struct {
	Repo       AccountRepository
	BcryptCost int // zero selects defaultBcryptCost
}

// NewAccountService creates a new account service
func NewAccountService(cfg AccountServiceConfig) *AccountService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = defaultBcryptCost
	}
	return &AccountService{
		repo:       cfg.Repo,
		bcryptCost: cost,
		validate:   validator.New(),
	}
}

// AccountInput carries the client-writable account fields
type AccountInput struct {
	Username string
	Email    string `validate:"required"`
	Password string
}

func (s *AccountService) validateInput(input *AccountInput) error {
	input.Email = strings.TrimSpace(input.Email)

	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Email" {
					return ErrEmailRequired
				}
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func parseID(id string) (model.AccountID, error) {
	if strings.TrimSpace(id) == "" {
		return model.AccountID{}, ErrIDRequired
	}
	parsed, err := model.ParseAccountID(id)
	if err != nil {
		return model.AccountID{}, ErrInvalidID
	}
	return parsed, nil
}

// CreateAccount validates input, hashes the password and stores a new account.
// An existing account with the same email yields ErrAccountExists.
func (s *AccountService) CreateAccount(ctx context.Context, input AccountInput) (*model.Account, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	hash, err := hashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Username: input.Username,
		Email:    input.Email,
		Hash:     hash,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		// Lost a race with a concurrent create; the unique index caught it
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by its external identifier
func (s *AccountService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	accountID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetAccountByEmail retrieves an account by exact email
func (s *AccountService) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// UpdateAccount replaces username, email and password of an existing account
// and returns the stored result
func (s *AccountService) UpdateAccount(ctx context.Context, id string, input AccountInput) (*model.Account, error) {
	accountID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	matched, err := s.repo.Update(ctx, &model.Account{
		ID:       accountID,
		Username: input.Username,
		Email:    input.Email,
		Hash:     hash,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	if matched == 0 {
		return nil, ErrAccountNotFound
	}

	// Re-read so the caller sees store-assigned fields
	updated, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrAccountNotFound
	}
	return updated, nil
}

// DeleteAccount removes an account
func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	accountID, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, accountID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ListAccounts returns every stored account
func (s *AccountService) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.repo.List(ctx)
}

// Login verifies an email/password pair. It returns nil on success and
// ErrInvalidCredentials for an unknown email or a wrong password.
func (s *AccountService) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidCredentials
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrInvalidCredentials
	}

	return checkPassword(password, account.Hash)
}

// Ping reports whether the account store is reachable
func (s *AccountService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
