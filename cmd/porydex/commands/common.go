package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/config"
	"github.com/teranos/porydex/db"
	"github.com/teranos/porydex/dex"
	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/logger"
	"github.com/teranos/porydex/store"
)

// PrintError prints err with its hints and details to stderr.
func PrintError(err error) {
	pterm.Error.Println(err.Error())
	for _, detail := range errors.GetAllDetails(err) {
		pterm.Printf("  %s %s\n", pterm.Gray("→"), detail)
	}
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.Println(hint)
	}
}

func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Flags().GetCount("verbose")
	return v
}

// openDatabase opens the store named by args[0], or database.uri.
func openDatabase(ctx context.Context, cfg *config.Config, args []string) (*db.DB, error) {
	uri := cfg.Database.URI
	if len(args) > 0 {
		uri = args[0]
	}
	return db.Open(ctx, uri, logger.ComponentLogger("db"))
}

// storeLogger returns the logger for store queries, which are only shown at
// the SQL verbosity.
func storeLogger(cmd *cobra.Command) *zap.SugaredLogger {
	if logger.ShouldOutput(verbosity(cmd), logger.OutputSQLQueries) {
		return logger.ComponentLogger("store")
	}
	return nil
}

// openCatalog opens the configured store and builds the catalog from it.
func openCatalog(cmd *cobra.Command, cfg *config.Config) (*dex.Dex, *store.Store, func(), error) {
	ctx := cmd.Context()
	d, err := openDatabase(ctx, cfg, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	start := time.Now()
	st := store.Open(d, storeLogger(cmd))
	built, err := dex.Build(ctx, st, logger.ComponentLogger("dex"))
	if err != nil {
		d.Close()
		return nil, nil, nil, errors.WithHint(err, "load the reference data first: porydex load")
	}
	logger.Outputw(verbosity(cmd), logger.OutputTiming, "Catalog ready",
		logger.FieldURI, cfg.Database.URI,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return built, st, func() { d.Close() }, nil
}

// openSession opens a session on d pinned by --generation or the configured
// default.
func openSession(cmd *cobra.Command, d *dex.Dex, cfg *config.Config) (*catalog.Session, error) {
	pin, err := sessionPin(cmd, d, cfg)
	if err != nil {
		return nil, err
	}
	session, err := d.Session(pin)
	if err != nil {
		return nil, err
	}
	g, pinned := session.Pinned()
	logger.Outputw(verbosity(cmd), logger.OutputSession, "Session opened",
		logger.FieldSessionID, session.ID().String(),
		logger.FieldPinned, pinned,
		logger.FieldGenerationID, int(g.ID),
		logger.FieldGeneration, sessionLabel(session),
	)
	return session, nil
}

// sessionPin reads --generation, accepting a generation id or identifier.
// Without the flag the configured default applies.
func sessionPin(cmd *cobra.Command, d *dex.Dex, cfg *config.Config) (catalog.GenerationID, error) {
	if !cmd.Flags().Changed("generation") {
		return cfg.Pin(), nil
	}
	value, _ := cmd.Flags().GetString("generation")
	if id, err := strconv.Atoi(value); err == nil {
		return catalog.GenerationID(id), nil
	}
	g, err := d.Registry.Lookup(value)
	if err != nil {
		return 0, err
	}
	return g.ID, nil
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("generation", "g", "", "Pin to a generation id or identifier (0 = latest)")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to format JSON")
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func renderTable(w io.Writer, data [][]string) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

func sessionLabel(session *catalog.Session) string {
	if g, ok := session.Pinned(); ok {
		return g.String()
	}
	return "latest"
}
