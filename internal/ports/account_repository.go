package ports

import (
	"context"

	"github.com/bankingrestapi/bank/internal/domain"
)

// AccountRepository is the persistence contract for accounts keyed by their
// numeric surrogate id.
//
// A missing key is not an error: FindByID reports it through the bool result
// and DeleteByID treats it as a no-op. Save inserts when account.ID is zero and
// assigns the next key, otherwise it replaces (or creates) the record stored
// under that key. FindAll and FindAllByID return records in ascending key order.
type AccountRepository interface {
	FindByID(ctx context.Context, id domain.AccountID) (domain.Account, bool, error)
	ExistsByID(ctx context.Context, id domain.AccountID) (bool, error)
	FindAll(ctx context.Context) ([]domain.Account, error)
	FindAllByID(ctx context.Context, ids []domain.AccountID) ([]domain.Account, error)
	FindPage(ctx context.Context, req domain.PageRequest) (domain.Page, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, account domain.Account) (domain.Account, error)
	DeleteByID(ctx context.Context, id domain.AccountID) error
}
