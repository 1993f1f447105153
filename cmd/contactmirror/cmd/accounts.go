package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/contactmirror/pkg/accounts"
	"github.com/agentstation/contactmirror/pkg/contacts"
)

// newAccountsCmd builds the accounts command group.
func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage address-book accounts",
	}
	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsCreateCmd())
	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available accounts and their record counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			list, err := store.ListAccounts(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No accounts found.")
				return nil
			}

			bold := color.New(color.Bold)
			for _, account := range list {
				records, err := store.FetchRecords(ctx, account.ID, accounts.AllFields())
				if err != nil {
					return err
				}
				name := account.DisplayName
				if name == "" {
					name = account.ID.String()
				}
				bold.Printf("%-20s", account.ID)
				fmt.Printf("  %-25s  %d records\n", name, len(records))
			}
			return nil
		},
	}
}

func newAccountsCreateCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "create <account-id>",
		Short: "Create an empty account in the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			account := accounts.Account{
				ID:          contacts.AccountID(args[0]),
				DisplayName: displayName,
			}
			if err := store.CreateAccount(account); err != nil {
				return err
			}
			fmt.Printf("Created account %s\n", account.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&displayName, "name", "n", "", "human-readable account name")
	return cmd
}
