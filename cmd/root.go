package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// skipWireAnnotation marks commands that run without a store.
const skipWireAnnotation = "bank/skip-wire"

func Execute() error {
	return execute(newRootCmd())
}

// execute runs root and then releases whatever the command opened, also when
// the command failed. Cobra skips post-run hooks on error.
func execute(root *cobra.Command, app *app) error {
	err := root.Execute()
	return errors.Join(err, app.close())
}

func newRootCmd() (*cobra.Command, *app) {
	var opts globalOptions
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "bank",
		Short:         "Manage bank accounts from the terminal",
		Long:          "bank opens, updates and closes bank accounts kept in a local TOML file or a SQL database (sqlite, postgres, mysql), and can copy every account from one store to the other.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, skip := cmd.Annotations[skipWireAnnotation]; skip {
				return nil
			}

			wired, err := wireApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: ~/.bank/config.toml)")
	flags.StringVar(&opts.storeKind, "store", "", "Account store: toml or sql (overrides store.kind)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newStatusCmd(app),
		newStoreCmd(app),
	)

	return rootCmd, app
}
