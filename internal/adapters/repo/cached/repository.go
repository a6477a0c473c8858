// Package cached decorates an account repository with a read-through cache.
// Lookups by key are served from the cache; every write through the
// decorator evicts the key it touched. Cache failures never fail a call,
// they fall through to the wrapped repository.
package cached

import (
	"context"
	"fmt"
	"time"

	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/bankingrestapi/bank/internal/ports"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"go.uber.org/zap"
)

type Repository struct {
	next   ports.AccountRepository
	cache  *marshaler.Marshaler
	ttl    time.Duration
	logger *zap.Logger
}

var _ ports.AccountRepository = (*Repository)(nil)

func NewRepository(next ports.AccountRepository, st store.StoreInterface, ttl time.Duration, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Repository{
		next:   next,
		cache:  marshaler.New(cache.New[any](st)),
		ttl:    ttl,
		logger: logger.With(zap.String("store_type", st.GetType())),
	}
}

func (r *Repository) FindByID(ctx context.Context, id domain.AccountID) (domain.Account, bool, error) {
	if account, ok := r.get(ctx, id); ok {
		return account, true, nil
	}

	account, found, err := r.next.FindByID(ctx, id)
	if err != nil || !found {
		return account, found, err
	}

	r.set(ctx, account)
	return account, true, nil
}

// ExistsByID always asks the wrapped repository. Callers use it to guard
// writes, so a cached entry for a key deleted elsewhere must not answer.
func (r *Repository) ExistsByID(ctx context.Context, id domain.AccountID) (bool, error) {
	return r.next.ExistsByID(ctx, id)
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Account, error) {
	return r.next.FindAll(ctx)
}

func (r *Repository) FindAllByID(ctx context.Context, ids []domain.AccountID) ([]domain.Account, error) {
	return r.next.FindAllByID(ctx, ids)
}

func (r *Repository) FindPage(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	return r.next.FindPage(ctx, req)
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.next.Count(ctx)
}

func (r *Repository) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	saved, err := r.next.Save(ctx, account)
	if err != nil {
		return domain.Account{}, err
	}

	r.evict(ctx, saved.ID)
	return saved, nil
}

func (r *Repository) DeleteByID(ctx context.Context, id domain.AccountID) error {
	if err := r.next.DeleteByID(ctx, id); err != nil {
		return err
	}

	r.evict(ctx, id)
	return nil
}

func (r *Repository) get(ctx context.Context, id domain.AccountID) (domain.Account, bool) {
	var entry accountEntry
	if _, err := r.cache.Get(ctx, cacheKey(id), &entry); err != nil {
		r.logger.Debug("account cache miss", zap.Int64("account_id", int64(id)), zap.Error(err))
		return domain.Account{}, false
	}
	if entry.ID != int64(id) {
		return domain.Account{}, false
	}

	return entry.account(), true
}

func (r *Repository) set(ctx context.Context, account domain.Account) {
	err := r.cache.Set(ctx, cacheKey(account.ID), newAccountEntry(account), store.WithExpiration(r.ttl))
	if err != nil {
		r.logger.Warn("failed to cache account", zap.Int64("account_id", int64(account.ID)), zap.Error(err))
	}
}

func (r *Repository) evict(ctx context.Context, id domain.AccountID) {
	if err := r.cache.Delete(ctx, cacheKey(id)); err != nil {
		r.logger.Warn("failed to evict cached account", zap.Int64("account_id", int64(id)), zap.Error(err))
	}
}

func cacheKey(id domain.AccountID) string {
	return fmt.Sprintf("account:%d", id)
}
