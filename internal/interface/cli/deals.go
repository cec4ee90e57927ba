package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mirrordesk/mirrordesk/internal/application/pipeline"
	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

func newDealsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deals",
		Short: "Work with pipeline deals",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newDealsListCmd())
	cmd.AddCommand(newDealsShowCmd())
	cmd.AddCommand(newDealsCreateCmd())
	cmd.AddCommand(newDealsMoveCmd())
	cmd.AddCommand(newDealsDeleteCmd())
	return cmd
}

func newDealsListCmd() *cobra.Command {
	var search, filter string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deals",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			q := remote.Query{
				Search:     search,
				PageSize:   globalConfig.PageSize(),
				Expression: filter,
			}
			if err := rt.engine.Load(cmd.Context(), q); err != nil {
				return fmt.Errorf("list deals: %w", err)
			}

			deals := rt.engine.Deals()
			if jsonOutput {
				b, err := json.MarshalIndent(deals, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTAGE\tAMOUNT\tOWNER")
			for _, d := range deals {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					shortID(d.ID), d.Name, d.StageID, formatAmount(d.Amount), d.OwnerRef)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Server-side search term")
	cmd.Flags().StringVar(&filter, "filter", "", `Client-side filter expression, e.g. 'Amount > 10000'`)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output deals as JSON")
	return cmd
}

func newDealsShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <deal-id>",
		Short: "Show one deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			d, err := rt.engine.Cache().Get(cmd.Context(), args[0], true)
			if err != nil {
				return fmt.Errorf("show deal: %w", err)
			}

			if jsonOutput {
				b, err := json.MarshalIndent(d, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			fmt.Printf("ID      : %s\n", d.ID)
			fmt.Printf("Name    : %s\n", d.Name)
			fmt.Printf("Stage   : %s\n", d.StageID)
			fmt.Printf("Amount  : %s\n", formatAmount(d.Amount))
			fmt.Printf("Owner   : %s\n", d.OwnerRef)
			if !d.ExpectedCloseDate.IsZero() {
				fmt.Printf("Closes  : %s\n", d.ExpectedCloseDate.Format("2006-01-02"))
			}
			if len(d.Tags) > 0 {
				fmt.Printf("Tags    : %v\n", d.Tags)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the deal as JSON")
	return cmd
}

func newDealsCreateCmd() *cobra.Command {
	var name, stageID, owner string
	var amount float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			created, err := rt.engine.CreateDeal(cmd.Context(), name, amount, stageID)
			if err != nil {
				return fmt.Errorf("create deal: %w", err)
			}
			if owner != "" {
				created, err = rt.engine.UpdateDeal(cmd.Context(), created.ID, record.Patch{"owner_ref": owner})
				if err != nil {
					return fmt.Errorf("assign owner: %w", err)
				}
			}

			fmt.Printf("Created deal %s (%s) on stage %s\n", created.ID, created.Name, created.StageID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Deal name (required)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Deal amount")
	cmd.Flags().StringVar(&stageID, "stage", "", "Stage id (defaults to the leftmost stage)")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner reference")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDealsMoveCmd() *cobra.Command {
	var index int
	var force bool

	cmd := &cobra.Command{
		Use:   "move <deal-id> <stage-id>",
		Short: "Move a deal to another stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}
			if err := rt.engine.Load(cmd.Context(), remote.Query{PageSize: globalConfig.PageSize()}); err != nil {
				return fmt.Errorf("load deals: %w", err)
			}

			dealID, stageID := args[0], args[1]
			if rt.engine.WarnsOnMove(dealID) && !force {
				return fmt.Errorf("deal %s is on a closed stage; re-run with --force to move it anyway", dealID)
			}

			req := pipeline.MoveRequest{DealID: dealID, ToStageID: stageID, ToIndex: index}
			if err := rt.engine.Move(cmd.Context(), req); err != nil {
				return fmt.Errorf("move deal: %w", err)
			}

			summary, err := rt.engine.StageSummary(stageID)
			if err != nil {
				return err
			}
			fmt.Printf("Moved %s to %s (%d deals, total %s)\n",
				dealID, stageID, summary.DealCount, formatAmount(summary.TotalValue))
			return nil
		},
	}

	cmd.Flags().IntVar(&index, "index", 0, "Position within the destination stage")
	cmd.Flags().BoolVar(&force, "force", false, "Move even from a closed stage")
	return cmd
}

func newDealsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <deal-id>",
		Short: "Delete a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}
			if err := rt.engine.Load(cmd.Context(), remote.Query{PageSize: globalConfig.PageSize()}); err != nil {
				return fmt.Errorf("load deals: %w", err)
			}
			if err := rt.engine.DeleteDeal(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete deal: %w", err)
			}
			fmt.Printf("Deleted deal %s\n", args[0])
			return nil
		},
	}
}
