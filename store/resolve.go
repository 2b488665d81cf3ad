package store

import (
	"context"
	"database/sql"

	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/logger"
	"github.com/teranos/porydex/schema"
)

// ResolveQuery selects entities of one kind and resolves each to its
// current generation inside the database.
type ResolveQuery struct {
	Kind *schema.Kind
	// Pin fixes resolution to one generation; nil resolves to the latest
	// generation per catalog.RankKeys.
	Pin *catalog.GenerationID
	// Key restricts the query to one entity.
	Key []int64
	// Limit caps the number of entities returned; 0 means no limit.
	Limit int
}

// ForSession builds a query for kind resolved under session's pin.
func ForSession(kind *schema.Kind, session *catalog.Session) ResolveQuery {
	q := ResolveQuery{Kind: kind}
	if pin, ok := session.Pinned(); ok {
		id := pin.ID
		q.Pin = &id
	}
	return q
}

// Resolution is one entity's resolved generation.
type Resolution struct {
	Key []int64
	// Generation is meaningful only when Present is true. An absent result
	// means the entity has no snapshot at the resolved generation.
	Generation catalog.GenerationID
	Present    bool
}

// Resolve runs q and returns one resolution per matching entity, ordered by
// entity key.
//
// Pinned queries inner-join the snapshot table on the pin, so entities that
// do not exist in the pinned generation are filtered out. Unpinned queries
// return every entity, with a correlated sub-select picking the top-ranked
// snapshot generation (absent when the entity has none).
func (s *Store) Resolve(ctx context.Context, q ResolveQuery) ([]Resolution, error) {
	if q.Kind == nil {
		return nil, errors.New("resolve query has no kind")
	}
	if q.Key != nil && len(q.Key) != len(q.Kind.EntityKey) {
		return nil, errors.Newf("%s key needs %d values, got %d", q.Kind.Name, len(q.Kind.EntityKey), len(q.Key))
	}

	sqlText, args := buildResolve(q)
	rows, err := s.query(ctx, sqlText, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", q.Kind.Name)
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		key := make([]int64, len(q.Kind.EntityKey))
		targets := make([]any, 0, len(key)+1)
		for i := range key {
			targets = append(targets, &key[i])
		}
		var gen sql.NullInt64
		targets = append(targets, &gen)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.MarkStorage(err, "scan %s resolution", q.Kind.Name)
		}
		out = append(out, Resolution{
			Key:        key,
			Generation: catalog.GenerationID(gen.Int64),
			Present:    gen.Valid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.MarkStorage(err, "resolve %s", q.Kind.Name)
	}
	return out, nil
}

// ResolveOne resolves a single entity. The boolean is false when the entity
// is absent: either it has no snapshot at the resolved generation, or (for
// pinned queries) it does not exist in the pinned generation.
func (s *Store) ResolveOne(ctx context.Context, kind *schema.Kind, key []int64, pin *catalog.GenerationID) (catalog.GenerationID, bool, error) {
	res, err := s.Resolve(ctx, ResolveQuery{Kind: kind, Pin: pin, Key: key, Limit: 1})
	if err != nil {
		return 0, false, err
	}
	if len(res) == 0 || !res[0].Present {
		if s.logger != nil {
			s.logger.Debugw("Entity absent", logger.FieldKind, kind.Name, logger.FieldEntity, keyString(key))
		}
		return 0, false, nil
	}
	return res[0].Generation, true, nil
}

func buildResolve(q ResolveQuery) (string, []interface{}) {
	kind := q.Kind
	qb := &queryBuilder{
		from:  quote(kind.Entity.Name) + " e",
		limit: q.Limit,
	}
	for _, c := range kind.EntityKey {
		qb.selectList = append(qb.selectList, column("e", c))
		qb.orderBy = append(qb.orderBy, column("e", c))
	}

	if q.Pin != nil {
		qb.selectList = append(qb.selectList, column("s", "generation_id"))
		qb.addJoin("JOIN " + quote(kind.Snapshots.Name) + " s ON " +
			columnsEqual("s", kind.RefKey, "e", kind.EntityKey))
		qb.addClause(column("s", "generation_id")+" = ?", int64(*q.Pin))
	} else {
		qb.selectList = append(qb.selectList, "("+latestSubselect(kind)+") AS "+quote("generation_id"))
	}

	if q.Key != nil {
		qb.buildKeyFilter("e", kind.EntityKey, q.Key)
	}
	return qb.build(), qb.args
}

// latestSubselect picks, for the outer entity e, the generation of its
// top-ranked snapshot. The ORDER BY is generated from catalog.RankKeys so
// the SQL and in-memory rules cannot drift apart.
func latestSubselect(kind *schema.Kind) string {
	sub := &queryBuilder{
		selectList: []string{column("s", "generation_id")},
		from:       quote(kind.Snapshots.Name) + " s",
		joins:      []string{"JOIN generations g ON g.id = s.generation_id"},
		limit:      1,
	}
	sub.addClause(columnsEqual("s", kind.RefKey, "e", kind.EntityKey))
	for _, key := range catalog.RankKeys {
		sub.orderBy = append(sub.orderBy, column("g", key.Column)+" DESC")
	}
	return sub.build()
}
