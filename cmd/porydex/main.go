package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/porydex/cmd/porydex/commands"
	"github.com/teranos/porydex/config"
	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/logger"
	"github.com/teranos/porydex/version"
)

var rootCmd = &cobra.Command{
	Use:   "porydex",
	Short: "porydex - generation-scoped Pokémon catalog",
	Long: `porydex - generation-scoped Pokémon catalog.

Every species, form, type, ability, move and stat keeps one identity across
generations and a snapshot per generation it appears in. Queries resolve to a
pinned generation, or to the latest one the entity exists in.

Available commands:
  load        - Create the schema and load the reference CSV files
  reload      - Drop all catalog tables, then load
  dump        - Write the store back to CSV files
  generations - List generations in release order
  show        - Resolve one entity
  list        - List the entities visible in a generation
  config      - Show the effective configuration

Examples:
  porydex load --data ./data
  porydex show form raichu-alola
  porydex list pokemon -g red-blue`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}

		// version works without a usable configuration
		if cmd.Name() == "version" {
			return nil
		}
		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func loadConfig(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")
	logger.Outputw(verbosity, logger.OutputConfig, "Configuration loaded",
		logger.FieldVersion, version.Get().Short(),
		logger.FieldURI, cfg.Database.URI,
		logger.FieldLocation, cfg.Data.Location,
		logger.FieldGenerationID, cfg.Catalog.Generation,
		"default_languages", cfg.Catalog.DefaultLanguages,
	)
	return nil
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("config", "", "Read configuration from this file only")

	rootCmd.AddCommand(commands.LoadCmd)
	rootCmd.AddCommand(commands.ReloadCmd)
	rootCmd.AddCommand(commands.DumpCmd)
	rootCmd.AddCommand(commands.GenerationsCmd)
	rootCmd.AddCommand(commands.ShowCmd)
	rootCmd.AddCommand(commands.ListCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		commands.PrintError(err)
		os.Exit(1)
	}
}
