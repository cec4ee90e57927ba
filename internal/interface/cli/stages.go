package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStagesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the configured pipeline stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			stages := rt.board.Stages()
			if jsonOutput {
				b, err := json.MarshalIndent(stages, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tID\tNAME\tWIN%\tCOLOR")
			for _, s := range stages {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
					s.Order, s.ID, s.Name, s.WinProbabilityPercent, s.ColorHint)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output stages as JSON")
	return cmd
}
