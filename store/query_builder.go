package store

import (
	"strconv"
	"strings"
)

// queryBuilder accumulates the WHERE clauses, ordering and limit of one
// SELECT together with its '?' arguments. The caller rebinds the result
// for the store's dialect.
type queryBuilder struct {
	selectList   []string
	from         string
	joins        []string
	whereClauses []string
	orderBy      []string
	limit        int
	args         []interface{}
}

// addClause appends a WHERE clause with its arguments
func (qb *queryBuilder) addClause(clause string, args ...interface{}) {
	qb.whereClauses = append(qb.whereClauses, clause)
	qb.args = append(qb.args, args...)
}

// addJoin appends a JOIN clause with its arguments. Joins must be added
// before any WHERE clause so arguments stay in placeholder order.
func (qb *queryBuilder) addJoin(join string, args ...interface{}) {
	qb.joins = append(qb.joins, join)
	qb.args = append(qb.args, args...)
}

// buildKeyFilter matches each column of alias against the given key values.
func (qb *queryBuilder) buildKeyFilter(alias string, columns []string, key []int64) {
	for i, c := range columns {
		qb.addClause(column(alias, c)+" = ?", key[i])
	}
}

// where returns the WHERE clauses joined with AND
func (qb *queryBuilder) where() string {
	return strings.Join(qb.whereClauses, " AND ")
}

func (qb *queryBuilder) build() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(qb.selectList, ", "))
	b.WriteString("\nFROM ")
	b.WriteString(qb.from)
	for _, j := range qb.joins {
		b.WriteString("\n")
		b.WriteString(j)
	}
	if len(qb.whereClauses) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(qb.where())
	}
	if len(qb.orderBy) > 0 {
		b.WriteString("\nORDER BY ")
		b.WriteString(strings.Join(qb.orderBy, ", "))
	}
	if qb.limit > 0 {
		b.WriteString("\nLIMIT ")
		b.WriteString(strconv.Itoa(qb.limit))
	}
	return b.String()
}

// column renders alias."name".
func column(alias, name string) string {
	return alias + "." + quote(name)
}

// columnsEqual renders a.x = b.y AND ... for two parallel column lists.
func columnsEqual(leftAlias string, left []string, rightAlias string, right []string) string {
	parts := make([]string, len(left))
	for i := range left {
		parts[i] = column(leftAlias, left[i]) + " = " + column(rightAlias, right[i])
	}
	return strings.Join(parts, " AND ")
}
