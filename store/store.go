// Package store reads the catalog back out of a relational store.
//
// It is the storage collaborator of the catalog: ReadTable and
// FetchSnapshots materialize rows, and Resolve expresses generation
// resolution as a filter, sort and limit evaluated by the database itself.
package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/db"
	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/logger"
	"github.com/teranos/porydex/schema"
)

// Store runs catalog queries through a *sql.DB or *sql.Tx.
type Store struct {
	q       db.Querier
	dialect db.Dialect
	logger  *zap.SugaredLogger
}

// New creates a store over q. logger may be nil.
func New(q db.Querier, dialect db.Dialect, logger *zap.SugaredLogger) *Store {
	return &Store{
		q:       q,
		dialect: dialect,
		logger:  logger,
	}
}

// Open wraps an open database.
func Open(d *db.DB, logger *zap.SugaredLogger) *Store {
	return New(d, d.Dialect, logger)
}

// Dialect returns the SQL dialect queries are rendered in.
func (s *Store) Dialect() db.Dialect {
	return s.dialect
}

func quote(ident string) string {
	return schema.Quote(ident)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	query = s.dialect.Rebind(query)
	if s.logger != nil {
		s.logger.Debugw("Query", logger.FieldQuery, query, logger.FieldArgs, args)
	}
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.MarkStorage(err, "query")
	}
	return rows, nil
}

// ReadTable returns every row of table ordered by its primary key.
func (s *Store) ReadTable(ctx context.Context, table *schema.Table) ([]schema.Record, error) {
	query := "SELECT " + schema.QuoteAll(table.ColumnNames()) +
		" FROM " + quote(table.Name) +
		" ORDER BY " + schema.QuoteAll(table.PrimaryKey)

	records, err := s.readRecords(ctx, table, query)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debugw("Read table", logger.FieldTable, table.Name, logger.FieldRows, len(records))
	}
	return records, nil
}

// readRecords runs a query selecting every column of table in declaration
// order.
func (s *Store) readRecords(ctx context.Context, table *schema.Table, query string, args ...interface{}) ([]schema.Record, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", table.Name)
	}
	defer rows.Close()

	var records []schema.Record
	for rows.Next() {
		targets := scanTargets(table)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.MarkStorage(err, "scan %s", table.Name)
		}
		records = append(records, schema.Record{Table: table, Values: scannedValues(targets)})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.MarkStorage(err, "read %s", table.Name)
	}
	return records, nil
}

// Generations returns the generations table in release order.
func (s *Store) Generations(ctx context.Context) ([]catalog.Generation, error) {
	rows, err := s.query(ctx, `SELECT id, identifier, release_order, is_base_series FROM generations ORDER BY release_order`)
	if err != nil {
		return nil, errors.Wrap(err, "read generations")
	}
	defer rows.Close()
	return scanGenerations(rows)
}

// Registry loads the generation registry.
func (s *Store) Registry(ctx context.Context) (*catalog.Registry, error) {
	gens, err := s.Generations(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewRegistry(gens)
}

// Snapshot is one generation of an entity as stored: a generation it exists
// in and the attribute rows recorded for it there.
type Snapshot struct {
	Generation catalog.Generation
	// Attributes holds the rows of each of the kind's attribute tables, by
	// table name, in primary-key order.
	Attributes map[string][]schema.Record
}

// FetchSnapshots returns the snapshots of the entity with the given key, in
// release order.
func (s *Store) FetchSnapshots(ctx context.Context, kind *schema.Kind, key []int64) ([]Snapshot, error) {
	if len(key) != len(kind.RefKey) {
		return nil, errors.Newf("%s key needs %d values, got %d", kind.Name, len(kind.RefKey), len(key))
	}

	gens, err := s.snapshotGenerations(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	snaps := make([]Snapshot, len(gens))
	index := make(map[catalog.GenerationID]int, len(gens))
	for i, g := range gens {
		snaps[i] = Snapshot{Generation: g, Attributes: make(map[string][]schema.Record, len(kind.Attributes))}
		index[g.ID] = i
	}

	for _, table := range kind.Attributes {
		qb := &queryBuilder{from: quote(table.Name) + " a"}
		for _, c := range table.ColumnNames() {
			qb.selectList = append(qb.selectList, column("a", c))
		}
		for _, c := range table.PrimaryKey {
			qb.orderBy = append(qb.orderBy, column("a", c))
		}
		qb.buildKeyFilter("a", kind.RefKey, key)

		records, err := s.readRecords(ctx, table, qb.build(), qb.args...)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch %s snapshots", kind.Name)
		}
		for _, r := range records {
			gen := catalog.GenerationID(r.Int("generation_id"))
			i, ok := index[gen]
			if !ok {
				return nil, errors.NewIntegrityError("%s row for %s %s is in generation %d, which has no snapshot",
					table.Name, kind.Name, keyString(key), gen)
			}
			snaps[i].Attributes[table.Name] = append(snaps[i].Attributes[table.Name], r)
		}
	}
	return snaps, nil
}

// snapshotGenerations returns the generations in which the entity has a
// snapshot, in release order.
func (s *Store) snapshotGenerations(ctx context.Context, kind *schema.Kind, key []int64) ([]catalog.Generation, error) {
	qb := &queryBuilder{
		selectList: []string{"g.id", "g.identifier", "g.release_order", "g.is_base_series"},
		from:       quote(kind.Snapshots.Name) + " s",
		joins:      []string{"JOIN generations g ON g.id = s.generation_id"},
		orderBy:    []string{"g.release_order"},
	}
	qb.buildKeyFilter("s", kind.RefKey, key)

	rows, err := s.query(ctx, qb.build(), qb.args...)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s snapshots", kind.Name)
	}
	defer rows.Close()
	return scanGenerations(rows)
}

func scanGenerations(rows *sql.Rows) ([]catalog.Generation, error) {
	var gens []catalog.Generation
	for rows.Next() {
		var g catalog.Generation
		if err := rows.Scan(&g.ID, &g.Identifier, &g.ReleaseOrder, &g.IsBaseSeries); err != nil {
			return nil, errors.MarkStorage(err, "scan generation")
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.MarkStorage(err, "read generations")
	}
	return gens, nil
}

func scanTargets(table *schema.Table) []any {
	targets := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		switch c.Type {
		case schema.Int:
			targets[i] = new(sql.NullInt64)
		case schema.Bool:
			targets[i] = new(sql.NullBool)
		default:
			targets[i] = new(sql.NullString)
		}
	}
	return targets
}

func scannedValues(targets []any) []any {
	values := make([]any, len(targets))
	for i, t := range targets {
		switch v := t.(type) {
		case *sql.NullInt64:
			if v.Valid {
				values[i] = v.Int64
			}
		case *sql.NullBool:
			if v.Valid {
				values[i] = v.Bool
			}
		case *sql.NullString:
			if v.Valid {
				values[i] = v.String
			}
		}
	}
	return values
}

// keyString renders a composite key for log and error messages.
func keyString(key []int64) string {
	parts := make([]string, len(key))
	for i, k := range key {
		parts[i] = strconv.FormatInt(k, 10)
	}
	return strings.Join(parts, "/")
}
