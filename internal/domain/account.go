package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// AccountID is the surrogate key of an account. Zero means the store has not
// assigned one yet.
type AccountID int64

func (id AccountID) IsZero() bool {
	return id == 0
}

func (id AccountID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseAccountID(raw string) (AccountID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAccountID, raw)
	}

	return AccountID(n), nil
}

type Account struct {
	ID                AccountID
	AccountHolderName string
	Balance           float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NormalizeHolderName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidHolderName
	}

	return trimmed, nil
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0)
}

func (a *Account) Deposit(amount float64) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}

	a.Balance += amount
	return nil
}

func (a *Account) Withdraw(amount float64) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	if a.Balance < amount {
		return fmt.Errorf("%w: balance %.2f, requested %.2f", ErrInsufficientFunds, a.Balance, amount)
	}

	a.Balance -= amount
	return nil
}
