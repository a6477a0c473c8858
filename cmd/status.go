package cmd

import (
	"fmt"
	"time"

	statusadapter "github.com/bankingrestapi/bank/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

const defaultDormantAfter = 90 * 24 * time.Hour

type summaryJSON struct {
	Accounts     []accountJSON `json:"accounts"`
	Count        int           `json:"count"`
	TotalBalance float64       `json:"total_balance"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var dormantAfter time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a summary of every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := app.service.Summary(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, summaryJSON{
					Accounts:     toAccountsJSON(summary.Accounts),
					Count:        summary.Count(),
					TotalBalance: summary.TotalBalance,
					GeneratedAt:  summary.GeneratedAt.UTC(),
				})
			}

			rendered, err := app.statusRenderer(summary, statusadapter.RenderOptions{
				Now:          app.now(),
				DormantAfter: dormantAfter,
			})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().DurationVar(&dormantAfter, "dormant-after", defaultDormantAfter, "Flag accounts not updated for this long (0 disables)")

	return cmd
}
