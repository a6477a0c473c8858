package application

import (
	"time"

	"github.com/bankingrestapi/bank/internal/domain"
)

// Summary is the read model behind `bank status`.
type Summary struct {
	Accounts     []domain.Account
	TotalBalance float64
	// LargestBalance scales the balance bars; zero when every balance is zero.
	LargestBalance float64
	GeneratedAt    time.Time
}

func (s Summary) Count() int {
	return len(s.Accounts)
}

func newSummary(accounts []domain.Account, now time.Time) Summary {
	summary := Summary{Accounts: accounts, GeneratedAt: now}
	if summary.Accounts == nil {
		summary.Accounts = []domain.Account{}
	}

	for _, account := range summary.Accounts {
		summary.TotalBalance += account.Balance
		if account.Balance > summary.LargestBalance {
			summary.LargestBalance = account.Balance
		}
	}

	return summary
}
