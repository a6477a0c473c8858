package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/spf13/cobra"
)

type accountJSON struct {
	ID                int64      `json:"id"`
	AccountHolderName string     `json:"account_holder_name"`
	Balance           float64    `json:"balance"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

type pageJSON struct {
	Items      []accountJSON `json:"items"`
	Number     int           `json:"number"`
	Size       int           `json:"size"`
	TotalItems int64         `json:"total_items"`
	TotalPages int           `json:"total_pages"`
}

func toAccountJSON(account domain.Account) accountJSON {
	return accountJSON{
		ID:                int64(account.ID),
		AccountHolderName: account.AccountHolderName,
		Balance:           account.Balance,
		CreatedAt:         optionalTime(account.CreatedAt),
		UpdatedAt:         optionalTime(account.UpdatedAt),
	}
}

func toAccountsJSON(accounts []domain.Account) []accountJSON {
	out := make([]accountJSON, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountJSON(account))
	}
	return out
}

func optionalTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	utc := value.UTC()
	return &utc
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeAccount(cmd *cobra.Command, account domain.Account, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, toAccountJSON(account))
	}

	return writeAccountTable(cmd, []domain.Account{account})
}

func writeAccounts(cmd *cobra.Command, accounts []domain.Account, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, toAccountsJSON(accounts))
	}

	return writeAccountTable(cmd, accounts)
}

func writePage(cmd *cobra.Command, page domain.Page, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, pageJSON{
			Items:      toAccountsJSON(page.Items),
			Number:     page.Number,
			Size:       page.Size,
			TotalItems: page.TotalItems,
			TotalPages: page.TotalPages,
		})
	}

	if err := writeAccountTable(cmd, page.Items); err != nil {
		return err
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d accounts)\n", page.Number+1, page.TotalPages, page.TotalItems)
	return err
}

func writeAccountTable(cmd *cobra.Command, accounts []domain.Account) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, account := range accounts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\n", account.ID, account.AccountHolderName, account.Balance)
	}
	return w.Flush()
}
