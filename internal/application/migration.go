package application

import (
	"context"
	"fmt"

	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/bankingrestapi/bank/internal/ports"
)

const migrationPageSize = 200

// CopyAccounts saves every account of src into dst under its own key, walking
// src in key order. progress, when set, receives the running total after each
// page. Running it twice leaves dst unchanged since saves upsert by key.
func CopyAccounts(ctx context.Context, src, dst ports.AccountRepository, progress func(copied int)) (int, error) {
	copied := 0
	req := domain.PageRequest{Size: migrationPageSize, Sort: domain.Sort{Field: domain.SortByID}}

	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}

		page, err := src.FindPage(ctx, req)
		if err != nil {
			return copied, fmt.Errorf("read source page %d: %w", req.Number, err)
		}

		for _, account := range page.Items {
			if _, err := dst.Save(ctx, account); err != nil {
				return copied, fmt.Errorf("copy account %s: %w", account.ID, err)
			}
			copied++
		}
		if progress != nil && len(page.Items) > 0 {
			progress(copied)
		}

		if !page.HasNext() {
			return copied, nil
		}
		req.Number++
	}
}
