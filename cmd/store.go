package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bankingrestapi/bank/internal/application"
	"github.com/bankingrestapi/bank/internal/config"
	"github.com/bankingrestapi/bank/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStoreCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Maintain account stores",
	}

	cmd.AddCommand(newStoreMigrateCmd(app))

	return cmd
}

func newStoreMigrateCmd(app *app) *cobra.Command {
	var from, to string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every account from one store to another, keeping account numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from = strings.ToLower(strings.TrimSpace(from))
			to = strings.ToLower(strings.TrimSpace(to))
			if from == to {
				return fmt.Errorf("source and destination store are both %q", from)
			}

			logger := logging.Component(app.logger, "store_migrate")
			src, closeSrc, err := openRepository(cmd.Context(), app.viper, app.config, from, logger)
			if err != nil {
				return fmt.Errorf("open source store: %w", err)
			}
			dst, closeDst, err := openRepository(cmd.Context(), app.viper, app.config, to, logger)
			if err != nil {
				return errors.Join(fmt.Errorf("open destination store: %w", err), closeSrc())
			}
			app.closers = append(app.closers, closeSrc, closeDst)

			var copied int
			migrate := func(ctx context.Context, report func(string)) error {
				n, err := application.CopyAccounts(ctx, src, dst, func(n int) {
					if report != nil {
						report(fmt.Sprintf("Copied %d accounts...", n))
					}
				})
				copied = n
				return err
			}

			if quiet {
				err = migrate(cmd.Context(), nil)
			} else {
				err = runTaskSpinner(cmd.Context(), cmd.ErrOrStderr(), "Copying accounts...", migrate)
			}
			if err != nil {
				return fmt.Errorf("migrate accounts after %d copied: %w", copied, err)
			}

			logger.Info("store migrated", zap.String("from", from), zap.String("to", to), zap.Int("accounts", copied))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "copied %d accounts from %s to %s\n", copied, from, to)
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", config.StoreKindTOML, "Source store: toml or sql")
	cmd.Flags().StringVar(&to, "to", config.StoreKindSQL, "Destination store: toml or sql")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Do not draw a progress spinner")

	return cmd
}
