package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/accounts/internal/database"
	"github.com/forgo/accounts/internal/model"
)

// ErrIDAlreadySet is returned by Create when the caller supplied an identifier
var ErrIDAlreadySet = errors.New("account id is assigned by the store")

// AccountRepository handles account data access
type AccountRepository struct {
	db database.Database
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db database.Database) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create assigns a new identifier, persists the account and fills in the
// stored identifier and timestamps
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	if !account.ID.IsZero() {
		return ErrIDAlreadySet
	}

	id, err := model.NewAccountID()
	if err != nil {
		return fmt.Errorf("generating account id: %w", err)
	}

	query := `
		CREATE type::thing("account", $id) CONTENT {
			username: $username,
			email: $email,
			hash: $hash,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"id":       id.String(),
		"username": account.Username,
		"email":    account.Email,
		"hash":     account.Hash,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isEmailConflict(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}

	records := statementRecords(result)
	if len(records) == 0 {
		return fmt.Errorf("%w: create returned no record", database.ErrQuery)
	}

	created, err := parseAccountResult(records[0])
	if err != nil {
		return err
	}

	account.ID = created.ID
	account.CreatedOn = created.CreatedOn
	account.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves an account by ID. Returns (nil, nil) when absent.
func (r *AccountRepository) GetByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	query := `SELECT * FROM type::thing("account", $id)`
	vars := map[string]interface{}{"id": id.String()}

	return r.getOne(ctx, query, vars)
}

// GetByEmail retrieves an account by exact email. Returns (nil, nil) when absent.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT * FROM account WHERE email = $email LIMIT 1`
	vars := map[string]interface{}{"email": email}

	return r.getOne(ctx, query, vars)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.Account, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	account, err := parseAccountResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// Update replaces username, email and hash of an existing account and
// returns the number of matched records (0 or 1). It never creates a record.
func (r *AccountRepository) Update(ctx context.Context, account *model.Account) (int, error) {
	query := `
		UPDATE account SET
			username = $username,
			email = $email,
			hash = $hash,
			updated_on = time::now()
		WHERE id = type::thing("account", $id)
		RETURN AFTER
	`

	vars := map[string]interface{}{
		"id":       account.ID.String(),
		"username": account.Username,
		"email":    account.Email,
		"hash":     account.Hash,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isEmailConflict(err) {
			return 0, fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return 0, err
	}

	return len(statementRecords(result)), nil
}

// Delete removes an account and returns the number of deleted records (0 or 1)
func (r *AccountRepository) Delete(ctx context.Context, id model.AccountID) (int, error) {
	query := `DELETE account WHERE id = type::thing("account", $id) RETURN BEFORE`
	vars := map[string]interface{}{"id": id.String()}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return 0, err
	}

	return len(statementRecords(result)), nil
}

// List returns every account in store order
func (r *AccountRepository) List(ctx context.Context) ([]*model.Account, error) {
	result, err := r.db.Query(ctx, `SELECT * FROM account`, nil)
	if err != nil {
		return nil, err
	}

	records := statementRecords(result)
	accounts := make([]*model.Account, 0, len(records))
	for _, rec := range records {
		account, err := parseAccountResult(rec)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// Ping checks that the backing store is reachable
func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func parseAccountResult(result interface{}) (*model.Account, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	// Navigate through SurrealDB response structure
	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, database.ErrNotFound
				}
				result = resultData[0]
			}
		}
	}

	// Handle array wrapper
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result format %T", database.ErrQuery, result)
	}

	id, err := accountIDFromRecord(data["id"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrQuery, err)
	}

	return &model.Account{
		ID:        id,
		Username:  getString(data, "username"),
		Email:     getString(data, "email"),
		Hash:      getString(data, "hash"),
		CreatedOn: parseTime(data["created_on"]),
		UpdatedOn: parseTime(data["updated_on"]),
	}, nil
}
