// Package loader moves the catalog between a store and its CSV reference
// files: Load and Reload fill a store, Dump writes one back out.
package loader

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/porydex/db"
	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/logger"
	"github.com/teranos/porydex/schema"
	"github.com/teranos/porydex/store"
	"github.com/teranos/porydex/tabular"
)

// Options configures a load or dump.
type Options struct {
	// Logger receives progress at info level; nil is silent.
	Logger *zap.SugaredLogger
	// EchoSQL logs every statement at debug level.
	EchoSQL bool
	// Progress, if set, is called after each table with its row count.
	Progress func(table string, rows int)
}

// TableCount is the number of rows moved for one table.
type TableCount struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// Load creates the schema if needed and inserts every table from src in
// load order, all in one transaction. Any failure rolls the whole load back.
func Load(ctx context.Context, d *db.DB, src tabular.Source, opts Options) ([]TableCount, error) {
	return inTx(ctx, d, opts, func(q db.Querier) ([]TableCount, error) {
		if err := db.Migrate(ctx, q, d.Dialect, opts.Logger); err != nil {
			return nil, err
		}
		return loadTables(ctx, q, d.Dialect, src, opts)
	})
}

// Reload drops every catalog table and loads from src, in one transaction.
func Reload(ctx context.Context, d *db.DB, src tabular.Source, opts Options) ([]TableCount, error) {
	return inTx(ctx, d, opts, func(q db.Querier) ([]TableCount, error) {
		if err := db.Drop(ctx, q, d.Dialect, opts.Logger); err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, q, d.Dialect, opts.Logger); err != nil {
			return nil, err
		}
		return loadTables(ctx, q, d.Dialect, src, opts)
	})
}

func inTx(ctx context.Context, d *db.DB, opts Options, fn func(q db.Querier) ([]TableCount, error)) ([]TableCount, error) {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.MarkStorage(err, "begin load tx")
	}
	var q db.Querier = tx
	if opts.EchoSQL {
		q = db.Echo(tx, opts.Logger)
	}

	counts, err := fn(q)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && opts.Logger != nil {
			opts.Logger.Warnw("Rollback failed", logger.FieldError, rbErr.Error())
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, db.Classify(err, "commit load")
	}
	return counts, nil
}

func loadTables(ctx context.Context, q db.Querier, dialect db.Dialect, src tabular.Source, opts Options) ([]TableCount, error) {
	start := time.Now()
	counts := make([]TableCount, 0, len(schema.Tables))
	for _, table := range schema.Tables {
		n, err := loadTable(ctx, q, dialect, src, table, opts.Logger)
		if err != nil {
			return nil, err
		}
		if opts.Logger != nil {
			opts.Logger.Infow("Loaded table", logger.FieldTable, table.Name, logger.FieldRows, n)
		}
		if opts.Progress != nil {
			opts.Progress(table.Name, n)
		}
		counts = append(counts, TableCount{Table: table.Name, Rows: n})
	}
	if opts.Logger != nil {
		opts.Logger.Infow("Load complete",
			logger.FieldLocation, src.String(),
			logger.FieldCount, len(counts),
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	return counts, nil
}

func loadTable(ctx context.Context, q db.Querier, dialect db.Dialect, src tabular.Source, table *schema.Table, log *zap.SugaredLogger) (int, error) {
	r, err := src.Open(ctx, table.Name)
	if err != nil {
		return 0, err
	}
	rows, err := readRows(table, r)
	r.Close()
	if err != nil {
		return 0, err
	}

	// Self-referencing tables declare a total order in which every row's
	// referent precedes it.
	if table.LoadOrder != "" {
		idx := table.Index(table.LoadOrder)
		sort.SliceStable(rows, func(i, j int) bool {
			a, _ := rows[i].values[idx].(int64)
			b, _ := rows[j].values[idx].(int64)
			return a < b
		})
	}

	file := tabular.FileName(table.Name)
	stmt := dialect.Rebind(insertStatement(table))
	for _, row := range rows {
		if _, err := q.ExecContext(ctx, stmt, row.values...); err != nil {
			err = db.Classify(err, "insert into %s", table.Name)
			if log != nil {
				logger.ChildLogger(log, logger.FieldTable, table.Name).Warnw("Row rejected",
					logger.FieldFile, file,
					logger.FieldLine, row.line,
					logger.FieldError, err.Error(),
				)
			}
			return 0, errors.WithDetailf(err, "%s line %d", file, row.line)
		}
	}
	return len(rows), nil
}

func insertStatement(table *schema.Table) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(table.Columns)), ", ")
	return "INSERT INTO " + schema.Quote(table.Name) +
		" (" + schema.QuoteAll(table.ColumnNames()) + ") VALUES (" + placeholders + ")"
}

// Dump writes every table of d to sink, rows ordered by primary key.
func Dump(ctx context.Context, d *db.DB, sink tabular.Sink, opts Options) ([]TableCount, error) {
	var q db.Querier = d
	if opts.EchoSQL {
		q = db.Echo(d, opts.Logger)
	}
	st := store.New(q, d.Dialect, opts.Logger)

	counts := make([]TableCount, 0, len(schema.Tables))
	for _, table := range schema.Tables {
		records, err := st.ReadTable(ctx, table)
		if err != nil {
			return nil, err
		}
		if err := dumpTable(ctx, sink, table, records); err != nil {
			return nil, err
		}
		if opts.Logger != nil {
			opts.Logger.Infow("Dumped table", logger.FieldTable, table.Name, logger.FieldRows, len(records))
		}
		if opts.Progress != nil {
			opts.Progress(table.Name, len(records))
		}
		counts = append(counts, TableCount{Table: table.Name, Rows: len(records)})
	}
	return counts, nil
}

func dumpTable(ctx context.Context, sink tabular.Sink, table *schema.Table, records []schema.Record) error {
	var buf bytes.Buffer
	if err := writeRows(table, records, &buf); err != nil {
		return errors.Wrapf(err, "encode %s", table.Name)
	}
	w, err := sink.Create(ctx, table.Name)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		w.Close()
		return errors.Wrapf(err, "write %s", tabular.FileName(table.Name))
	}
	return w.Close()
}
