package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

type SortField string

const (
	SortByID         SortField = "id"
	SortByHolderName SortField = "account_holder_name"
	SortByBalance    SortField = "balance"
	SortByCreatedAt  SortField = "created_at"
)

// Valid reports whether f names a sortable column. The empty field sorts by id.
func (f SortField) Valid() bool {
	switch f {
	case "", SortByID, SortByHolderName, SortByBalance, SortByCreatedAt:
		return true
	default:
		return false
	}
}

// Column returns the storage column for f, defaulting to the key.
func (f SortField) Column() string {
	if f == "" {
		return string(SortByID)
	}
	return string(f)
}

func ParseSortField(raw string) (SortField, error) {
	field := SortField(strings.ToLower(strings.TrimSpace(raw)))
	if !field.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortField, raw)
	}

	return field, nil
}

type Sort struct {
	Field      SortField
	Descending bool
}

type PageRequest struct {
	Number int
	Size   int
	Sort   Sort
}

func (r PageRequest) Validate() error {
	if r.Number < 0 {
		return fmt.Errorf("%w: page number %d is negative", ErrInvalidPageRequest, r.Number)
	}
	if r.Size <= 0 || r.Size > MaxPageSize {
		return fmt.Errorf("%w: page size %d outside 1..%d", ErrInvalidPageRequest, r.Size, MaxPageSize)
	}
	if r.Number > math.MaxInt/r.Size {
		return fmt.Errorf("%w: page %d of size %d is out of range", ErrInvalidPageRequest, r.Number, r.Size)
	}
	if !r.Sort.Field.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSortField, r.Sort.Field)
	}

	return nil
}

func (r PageRequest) Offset() int {
	return r.Number * r.Size
}

type Page struct {
	Items      []Account
	Number     int
	Size       int
	TotalItems int64
	TotalPages int
}

func NewPage(items []Account, req PageRequest, total int64) Page {
	if items == nil {
		items = []Account{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page{
		Items:      items,
		Number:     req.Number,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

func (p Page) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 0
}

// SortAccounts orders accounts in place. Ties on the sort field fall back to
// ascending id regardless of direction.
func SortAccounts(accounts []Account, s Sort) {
	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := accounts[i], accounts[j]
		cmp := compareAccounts(a, b, s.Field)
		if cmp == 0 {
			return a.ID < b.ID
		}
		if s.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

// PaginateAccounts sorts and slices an in-memory account set.
func PaginateAccounts(accounts []Account, req PageRequest) (Page, error) {
	if err := req.Validate(); err != nil {
		return Page{}, err
	}

	sorted := make([]Account, len(accounts))
	copy(sorted, accounts)
	SortAccounts(sorted, req.Sort)

	start := req.Offset()
	if start < 0 || start > len(sorted) {
		start = len(sorted)
	}
	end := start + req.Size
	if end > len(sorted) {
		end = len(sorted)
	}

	return NewPage(sorted[start:end], req, int64(len(sorted))), nil
}

func compareAccounts(a, b Account, field SortField) int {
	switch field {
	case SortByHolderName:
		return strings.Compare(a.AccountHolderName, b.AccountHolderName)
	case SortByBalance:
		switch {
		case a.Balance < b.Balance:
			return -1
		case a.Balance > b.Balance:
			return 1
		default:
			return 0
		}
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	}
}
