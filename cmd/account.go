package cmd

import (
	"fmt"

	"github.com/bankingrestapi/bank/internal/application"
	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	cmd.AddCommand(
		newAccountOpenCmd(app),
		newAccountGetCmd(app),
		newAccountListCmd(app),
		newAccountRenameCmd(app),
		newAccountDepositCmd(app),
		newAccountWithdrawCmd(app),
		newAccountCloseCmd(app),
		newAccountCountCmd(app),
	)

	return cmd
}

func newAccountOpenCmd(app *app) *cobra.Command {
	var holder string
	var balance float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := app.service.Open(cmd.Context(), application.OpenAccountCommand{
				HolderName:     holder,
				InitialBalance: balance,
			})
			if err != nil {
				return err
			}

			return writeAccount(cmd, account, asJSON)
		},
	}

	cmd.Flags().StringVar(&holder, "holder", "", "Account holder name")
	cmd.Flags().Float64Var(&balance, "balance", 0, "Opening balance")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("holder")

	return cmd
}

func newAccountGetCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountIDArg(args[0])
			if err != nil {
				return err
			}

			account, err := app.service.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			return writeAccount(cmd, account, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	var (
		page   int
		size   int
		sortBy string
		desc   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts, optionally one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("page") && !flags.Changed("size") && !flags.Changed("sort") && !flags.Changed("desc") {
				accounts, err := app.service.List(cmd.Context())
				if err != nil {
					return err
				}
				return writeAccounts(cmd, accounts, asJSON)
			}

			field, err := domain.ParseSortField(sortBy)
			if err != nil {
				return err
			}
			result, err := app.service.ListPage(cmd.Context(), domain.PageRequest{
				Number: page,
				Size:   size,
				Sort:   domain.Sort{Field: field, Descending: desc},
			})
			if err != nil {
				return err
			}

			return writePage(cmd, result, asJSON)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Zero based page number")
	cmd.Flags().IntVar(&size, "size", domain.DefaultPageSize, "Page size")
	cmd.Flags().StringVar(&sortBy, "sort", string(domain.SortByID), "Sort field: id, account_holder_name, balance or created_at")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newAccountRenameCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Change the account holder name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountIDArg(args[0])
			if err != nil {
				return err
			}

			account, err := app.service.Rename(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}

			return writeAccount(cmd, account, false)
		},
	}
}

func newAccountDepositCmd(app *app) *cobra.Command {
	return newAccountAmountCmd("deposit ID AMOUNT", "Add money to an account", app.deposit)
}

func newAccountWithdrawCmd(app *app) *cobra.Command {
	return newAccountAmountCmd("withdraw ID AMOUNT", "Take money out of an account", app.withdraw)
}

type amountOp func(cmd *cobra.Command, id domain.AccountID, amount float64) (domain.Account, error)

func (a *app) deposit(cmd *cobra.Command, id domain.AccountID, amount float64) (domain.Account, error) {
	return a.service.Deposit(cmd.Context(), id, amount)
}

func (a *app) withdraw(cmd *cobra.Command, id domain.AccountID, amount float64) (domain.Account, error) {
	return a.service.Withdraw(cmd.Context(), id, amount)
}

func newAccountAmountCmd(use, short string, op amountOp) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountIDArg(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmountArg(args[1])
			if err != nil {
				return err
			}

			account, err := op(cmd, id, amount)
			if err != nil {
				return err
			}

			return writeAccount(cmd, account, false)
		},
	}
}

func newAccountCloseCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "close ID",
		Short: "Close (delete) an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountIDArg(args[0])
			if err != nil {
				return err
			}

			if err := app.service.Close(cmd.Context(), id); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "closed account %s\n", id)
			return err
		},
	}
}

func newAccountCountCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, err := app.service.Count(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), count)
			return err
		},
	}
}
