package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

func newBoardCmd() *cobra.Command {
	var search string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the pipeline board with per-stage totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			q := remote.Query{Search: search, PageSize: globalConfig.PageSize()}
			if err := rt.engine.Load(cmd.Context(), q); err != nil {
				return fmt.Errorf("load deals: %w", err)
			}

			summaries := rt.engine.BoardSummary()
			if jsonOutput {
				b, err := json.MarshalIndent(summaries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STAGE\tDEALS\tTOTAL\tWEIGHTED\tAVERAGE")
			var total, weighted float64
			for _, s := range summaries {
				def, _ := rt.board.ByID(s.StageID)
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					def.Name, s.DealCount,
					formatAmount(s.TotalValue),
					formatAmount(s.WeightedValue),
					formatAmount(s.AverageDealSize))
				total += s.TotalValue
				weighted += s.WeightedValue
			}
			fmt.Fprintf(w, "TOTAL\t%d\t%s\t%s\t\n",
				len(rt.engine.Deals()), formatAmount(total), formatAmount(weighted))
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Server-side search term")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output summaries as JSON")
	return cmd
}
