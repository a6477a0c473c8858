package cached

import (
	"time"

	"github.com/bankingrestapi/bank/internal/domain"
)

// accountEntry is the msgpack form of an account. Times travel as unix nanos
// so decoding does not depend on the local zone; zero means unset.
type accountEntry struct {
	ID                int64   `msgpack:"id"`
	AccountHolderName string  `msgpack:"account_holder_name"`
	Balance           float64 `msgpack:"balance"`
	CreatedAt         int64   `msgpack:"created_at"`
	UpdatedAt         int64   `msgpack:"updated_at"`
}

func newAccountEntry(account domain.Account) accountEntry {
	return accountEntry{
		ID:                int64(account.ID),
		AccountHolderName: account.AccountHolderName,
		Balance:           account.Balance,
		CreatedAt:         unixNano(account.CreatedAt),
		UpdatedAt:         unixNano(account.UpdatedAt),
	}
}

func (e accountEntry) account() domain.Account {
	return domain.Account{
		ID:                domain.AccountID(e.ID),
		AccountHolderName: e.AccountHolderName,
		Balance:           e.Balance,
		CreatedAt:         fromUnixNano(e.CreatedAt),
		UpdatedAt:         fromUnixNano(e.UpdatedAt),
	}
}

func unixNano(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UnixNano()
}

func fromUnixNano(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.Unix(0, value).UTC()
}
