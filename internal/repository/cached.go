package repository

import (
	"context"

	"github.com/forgo/accounts/internal/model"
)

// AccountCache is the subset of cache.ViewCache used for account views
type AccountCache interface {
	Get(ctx context.Context, key string) (*model.Account, bool)
	Version(ctx context.Context, key string) (int64, bool)
	SetIfVersion(ctx context.Context, key string, value *model.Account, version int64) bool
	Invalidate(ctx context.Context, key string)
}

// AccountStore is the method set shared by AccountRepository and its decorators
type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) (int, error)
	Delete(ctx context.Context, id model.AccountID) (int, error)
	List(ctx context.Context) ([]*model.Account, error)
	Ping(ctx context.Context) error
}

// CachedAccountRepository serves id lookups from a cache and falls back to
// the wrapped store. Cached views never carry the password hash, so email
// lookups (used by login) always go to the store.
type CachedAccountRepository struct {
	AccountStore
	cache AccountCache
}

// NewCachedAccountRepository wraps store with a read-through id cache
func NewCachedAccountRepository(store AccountStore, cache AccountCache) *CachedAccountRepository {
	return &CachedAccountRepository{AccountStore: store, cache: cache}
}

// GetByID returns the cached view if present, otherwise loads and caches it.
// The version is read before the store so that a load racing an Update or
// Delete is discarded rather than cached.
func (r *CachedAccountRepository) GetByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	key := id.String()
	if account, ok := r.cache.Get(ctx, key); ok {
		return account, nil
	}

	version, cacheable := r.cache.Version(ctx, key)

	account, err := r.AccountStore.GetByID(ctx, id)
	if err != nil || account == nil {
		return account, err
	}

	if cacheable {
		r.cache.SetIfVersion(ctx, key, account.Public(), version)
	}
	return account, nil
}

// Update invalidates the cached view after every write attempt
func (r *CachedAccountRepository) Update(ctx context.Context, account *model.Account) (int, error) {
	matched, err := r.AccountStore.Update(ctx, account)
	r.cache.Invalidate(ctx, account.ID.String())
	return matched, err
}

// Delete invalidates the cached view after every delete attempt
func (r *CachedAccountRepository) Delete(ctx context.Context, id model.AccountID) (int, error) {
	deleted, err := r.AccountStore.Delete(ctx, id)
	r.cache.Invalidate(ctx, id.String())
	return deleted, err
}
