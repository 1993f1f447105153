package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/contactmirror/pkg/accounts"
	"github.com/agentstation/contactmirror/pkg/cluster"
	"github.com/agentstation/contactmirror/pkg/contacts"
	"github.com/agentstation/contactmirror/pkg/errors"
	"github.com/agentstation/contactmirror/pkg/syncer"
)

// newSyncCmd builds the sync command.
func newSyncCmd() *cobra.Command {
	var (
		accountList []string
		strategy    string
		saveMode    string
		autoApprove bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync contact records across accounts",
		Long: `Sync fetches every selected account's records, detects duplicate
contacts across accounts, merges each duplicate cluster into a golden
record, and writes the unified set back to every account.

When duplicates are found they are listed for review before anything is
written; pass --yes to skip the prompt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore()
			if err != nil {
				return err
			}

			ids, err := selectAccounts(ctx, store, accountList)
			if err != nil {
				return err
			}

			mode, ok := syncer.ParseSaveMode(saveMode)
			if !ok {
				return errors.NewValidationError("save-mode", saveMode, "must be replace or append")
			}

			opts := []syncer.Option{
				syncer.WithSaveMode(mode),
				syncer.WithDryRun(dryRun),
			}
			switch strategy {
			case cluster.TypeEmailGraph.String():
				// Default strategy.
			case cluster.TypeNameMatch.String():
				opts = append(opts, syncer.WithStrategy(
					cluster.NewNameMatchStrategy(stdinDecider(cmd.InOrStdin()), nil)))
			default:
				return errors.NewValidationError("strategy", strategy, "must be email-graph or name-match")
			}

			s, err := syncer.New(store, opts...)
			if err != nil {
				return err
			}

			result, err := s.BeginSync(ctx, ids)
			if err != nil {
				return err
			}

			if s.State() == syncer.StateAwaitingApproval {
				printClusters(s.PendingClusters())
				if !autoApprove && !confirm(cmd.InOrStdin(), "Merge these clusters and sync?") {
					if err := s.Cancel(); err != nil {
						return err
					}
					fmt.Println("Sync canceled. Nothing was written.")
					return nil
				}
				result, err = s.Approve(ctx)
				if err != nil {
					return err
				}
			}

			fmt.Println(result.Summary())
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&accountList, "accounts", "a", nil, "account IDs to sync (default: all accounts)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", cluster.TypeEmailGraph.String(), "duplicate detection strategy (email-graph, name-match)")
	cmd.Flags().StringVar(&saveMode, "save-mode", syncer.SaveModeReplace.String(), "how to write the final set (replace, append)")
	cmd.Flags().BoolVarP(&autoApprove, "yes", "y", false, "merge duplicate clusters without prompting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "detect and merge but do not write anything")

	return cmd
}

// selectAccounts resolves the --accounts flag, defaulting to every account
// in the store.
func selectAccounts(ctx context.Context, store accounts.Store, flag []string) ([]contacts.AccountID, error) {
	if len(flag) > 0 {
		ids := make([]contacts.AccountID, 0, len(flag))
		for _, raw := range flag {
			ids = append(ids, contacts.AccountID(strings.TrimSpace(raw)))
		}
		return ids, nil
	}

	list, err := store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]contacts.AccountID, 0, len(list))
	for _, account := range list {
		ids = append(ids, account.ID)
	}
	return ids, nil
}

// printClusters lists each pending duplicate cluster for review.
func printClusters(clusters [][]contacts.ContactRecord) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	fmt.Printf("Found %d duplicate cluster(s):\n\n", len(clusters))
	for i, members := range clusters {
		bold.Printf("Cluster %d\n", i+1)
		for _, rec := range members {
			fmt.Printf("  %-30s", rec.DisplayName())
			faint.Printf("  [%s]", rec.AccountID)
			if len(rec.Emails) > 0 {
				faint.Printf("  %s", rec.Emails[0].Value)
			}
			fmt.Println()
		}
		fmt.Println()
	}
}

// stdinDecider asks the user to confirm each name collision the name-match
// strategy finds.
func stdinDecider(in io.Reader) cluster.Decider {
	reader := bufio.NewReader(in)
	return cluster.DeciderFunc(func(ctx context.Context, a, b contacts.ContactRecord) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		prompt := fmt.Sprintf("Are %q (%s) and %q (%s) the same person?",
			a.DisplayName(), a.AccountID, b.DisplayName(), b.AccountID)
		return ask(reader, prompt), nil
	})
}

// confirm asks a yes/no question and defaults to no.
func confirm(in io.Reader, prompt string) bool {
	return ask(bufio.NewReader(in), prompt)
}

func ask(reader *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
