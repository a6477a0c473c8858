package domain

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountID   = errors.New("invalid account id")
	ErrInvalidHolderName  = errors.New("account holder name is required")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrNegativeBalance    = errors.New("balance cannot be negative")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidPageRequest = errors.New("invalid page request")
	ErrInvalidSortField   = errors.New("invalid sort field")
)
