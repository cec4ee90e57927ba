package cli

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mirrordesk/mirrordesk/internal/app/config"
	"github.com/mirrordesk/mirrordesk/internal/interface/cli/version"
	infraConfig "github.com/mirrordesk/mirrordesk/internal/infra/config"
)

// globalConfig holds the loaded configuration for all commands
var globalConfig config.Config

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirrordesk",
		Short: "Mirrordesk dashboard sync CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration before any command runs
			// Priority: settings.yaml > ENV > defaults
			baseDir := ".mirrordesk"
			if home := os.Getenv("MIRRORDESK_HOME"); home != "" {
				baseDir = home
			}

			cfg, err := infraConfig.LoadSettings(afero.NewOsFs(), baseDir)
			if err != nil {
				return err
			}
			globalConfig = cfg
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newDealsCmd())
	cmd.AddCommand(newContactsCmd())
	cmd.AddCommand(newJournalCmd())
	cmd.AddCommand(newBoardCmd())
	cmd.AddCommand(newStagesCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(version.NewCommand())
	return cmd
}
