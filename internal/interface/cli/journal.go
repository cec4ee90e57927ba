package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/journal"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Work with accounting journal entries",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newJournalListCmd())
	cmd.AddCommand(newJournalCreateCmd())
	return cmd
}

func newJournalListCmd() *cobra.Command {
	var filter string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			q := remote.Query{PageSize: globalConfig.PageSize(), Expression: filter}
			if err := rt.journals.List(cmd.Context(), q); err != nil {
				return fmt.Errorf("list journal entries: %w", err)
			}

			items := rt.journals.Items()
			if jsonOutput {
				b, err := json.MarshalIndent(items, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPOSTED\tACCOUNT\tAMOUNT\tMEMO")
			for _, e := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					shortID(e.ID), e.PostedAt.Format("2006-01-02"),
					e.AccountCode, formatAmount(e.Amount), e.Memo)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", `Client-side filter expression, e.g. 'Amount > 1000'`)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output entries as JSON")
	return cmd
}

func newJournalCreateCmd() *cobra.Command {
	var memo, account, posted string
	var amount float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a journal entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			postedAt := time.Now()
			if posted != "" {
				postedAt, err = time.Parse("2006-01-02", posted)
				if err != nil {
					return fmt.Errorf("parse --posted: %w", err)
				}
			}

			payload, err := journal.New(memo, account, amount, postedAt)
			if err != nil {
				return err
			}

			created, err := rt.journals.Create(cmd.Context(), payload)
			if err != nil {
				return fmt.Errorf("create journal entry: %w", err)
			}
			fmt.Printf("Created journal entry %s (%s %s)\n",
				created.ID, created.AccountCode, formatAmount(created.Amount))
			return nil
		},
	}

	cmd.Flags().StringVar(&memo, "memo", "", "Entry memo")
	cmd.Flags().StringVar(&account, "account", "", "Account code (required)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Entry amount")
	cmd.Flags().StringVar(&posted, "posted", "", "Posting date (YYYY-MM-DD, defaults to today)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
