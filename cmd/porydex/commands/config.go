package commands

import (
	"github.com/BurntSushi/toml"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/porydex/config"
	"github.com/teranos/porydex/errors"
)

// ConfigCmd prints the effective configuration
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration as TOML",
	Long: `Print the configuration after merging defaults, ~/.porydex/config.toml,
the nearest porydex.toml and PORYDEX_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	ConfigCmd.Flags().Bool("sources", false, "Also list the configuration files that were checked")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	if sources, _ := cmd.Flags().GetBool("sources"); sources {
		pterm.Println()
		for _, src := range config.Sources() {
			if src.Found {
				pterm.Printf("%s %s\n", pterm.Green("✓"), src.Path)
			} else {
				pterm.Printf("%s %s\n", pterm.Gray("·"), src.Path)
			}
		}
	}
	return nil
}
