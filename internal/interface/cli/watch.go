package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mirrordesk/mirrordesk/internal/application/push"
	"github.com/mirrordesk/mirrordesk/internal/domain/remote"
)

// newWatchCmd consumes push notifications as JSON lines on stdin and
// applies them to the caches, printing the board after each change.
// A websocket gateway or a test harness can pipe into it.
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Apply push notifications from stdin to the local caches",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(globalConfig)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			q := remote.Query{PageSize: globalConfig.PageSize()}
			if err := rt.engine.Load(ctx, q); err != nil {
				return fmt.Errorf("load deals: %w", err)
			}
			if err := rt.contacts.List(ctx, q); err != nil {
				return fmt.Errorf("load contacts: %w", err)
			}
			if err := rt.journals.List(ctx, q); err != nil {
				return fmt.Errorf("load journal entries: %w", err)
			}

			d := push.NewDispatcher()
			d.Register("deals", rt.engine.Cache())
			d.Register("contacts", rt.contacts)
			d.Register("journal-entries", rt.journals)

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := scanner.Bytes()
				if len(line) == 0 {
					continue
				}

				var n push.Notification
				if err := json.Unmarshal(line, &n); err != nil {
					fmt.Fprintf(os.Stderr, "skipping malformed notification: %v\n", err)
					continue
				}
				if err := d.Dispatch(ctx, n); err != nil {
					fmt.Fprintf(os.Stderr, "dispatch failed: %v\n", err)
					continue
				}

				fmt.Printf("%s %s %s\n", n.ResourceType, n.RecordID, n.ChangeKind)
				if n.ResourceType == "deals" {
					for _, s := range rt.engine.BoardSummary() {
						fmt.Printf("  %s: %d deals, total %s\n",
							s.StageID, s.DealCount, formatAmount(s.TotalValue))
					}
				}
			}
			return scanner.Err()
		},
	}
}
