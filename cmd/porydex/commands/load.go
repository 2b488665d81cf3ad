package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/porydex/config"
	"github.com/teranos/porydex/db"
	"github.com/teranos/porydex/loader"
	"github.com/teranos/porydex/logger"
	"github.com/teranos/porydex/tabular"
)

// LoadCmd creates the schema and loads the reference data into an empty store
var LoadCmd = &cobra.Command{
	Use:   "load [store-uri]",
	Short: "Create the catalog schema and load the reference CSV files",
	Long: `Create the catalog tables and bulk-insert every reference CSV file, in one
transaction. The store must not hold catalog rows yet; use reload to replace them.

Examples:
  porydex load                              # database.uri from config, ./data
  porydex load dex.db --data ./csv
  porydex load postgres://localhost/dex --data s3://porydex-data/v2`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, args, "Loaded", "from", func(ctx context.Context, d *db.DB, loc tabular.Location, opts loader.Options) ([]loader.TableCount, error) {
			return loader.Load(ctx, d, loc, opts)
		})
	},
}

// ReloadCmd drops the catalog tables and loads them again
var ReloadCmd = &cobra.Command{
	Use:   "reload [store-uri]",
	Short: "Drop all catalog tables, then load",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, args, "Reloaded", "from", func(ctx context.Context, d *db.DB, loc tabular.Location, opts loader.Options) ([]loader.TableCount, error) {
			return loader.Reload(ctx, d, loc, opts)
		})
	},
}

// DumpCmd writes the store contents back to CSV files
var DumpCmd = &cobra.Command{
	Use:   "dump [store-uri]",
	Short: "Write the store contents back to the reference CSV files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, args, "Dumped", "to", func(ctx context.Context, d *db.DB, loc tabular.Location, opts loader.Options) ([]loader.TableCount, error) {
			return loader.Dump(ctx, d, loc, opts)
		})
	},
}

var (
	dataFlag string
	sqlFlag  bool
)

func init() {
	for _, cmd := range []*cobra.Command{LoadCmd, ReloadCmd, DumpCmd} {
		cmd.Flags().StringVar(&dataFlag, "data", "", "CSV directory or s3://bucket/prefix (default data.location)")
		cmd.Flags().BoolVarP(&sqlFlag, "sql", "s", false, "Log every SQL statement")
	}
}

type transferFunc func(ctx context.Context, d *db.DB, loc tabular.Location, opts loader.Options) ([]loader.TableCount, error)

func runTransfer(cmd *cobra.Command, args []string, verb, preposition string, transfer transferFunc) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	location := cfg.Data.Location
	if dataFlag != "" {
		location = dataFlag
	}
	loc, err := tabular.Parse(ctx, location, cfg.S3Options())
	if err != nil {
		return err
	}

	// statements are logged at debug level
	if sqlFlag && verbosity(cmd) < logger.VerbosityDebug {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, logger.VerbosityDebug); err != nil {
			return err
		}
	}

	d, err := openDatabase(ctx, cfg, args)
	if err != nil {
		return err
	}
	defer d.Close()

	opts := loader.Options{
		Logger:  logger.ComponentLogger("loader"),
		EchoSQL: sqlFlag || logger.ShouldOutput(verbosity(cmd), logger.OutputSQLQueries),
	}
	if logger.ShouldOutput(verbosity(cmd), logger.OutputProgress) {
		opts.Progress = func(table string, rows int) {
			pterm.Printf("  %s %s %s\n", pterm.Gray("→"), table, pterm.LightCyan(fmt.Sprintf("%d rows", rows)))
		}
	}

	start := time.Now()
	counts, err := transfer(ctx, d, loc, opts)
	if err != nil {
		return err
	}
	logger.Outputw(verbosity(cmd), logger.OutputTiming, verb,
		logger.FieldLocation, loc.String(),
		logger.FieldCount, len(counts),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	total := 0
	for _, c := range counts {
		total += c.Rows
	}
	pterm.Success.Printf("%s %d rows in %d tables %s %s\n", verb, total, len(counts), preposition, loc)
	return nil
}
