package schema

// Record is one row of a table. Values follow Table.Columns and hold int64,
// string, bool or nil (SQL NULL).
type Record struct {
	Table  *Table
	Values []any
}

func (r Record) get(column string) any {
	i := r.Table.Index(column)
	if i < 0 || i >= len(r.Values) {
		return nil
	}
	return r.Values[i]
}

// Int returns an integer column, or 0 when it is NULL.
func (r Record) Int(column string) int64 {
	v, _ := r.NullInt(column)
	return v
}

// NullInt returns an integer column and whether it was non-NULL.
func (r Record) NullInt(column string) (int64, bool) {
	v, ok := r.get(column).(int64)
	return v, ok
}

// Text returns a text column, or "" when it is NULL.
func (r Record) Text(column string) string {
	v, _ := r.get(column).(string)
	return v
}

// NullText returns a text column and whether it was non-NULL.
func (r Record) NullText(column string) (string, bool) {
	v, ok := r.get(column).(string)
	return v, ok
}

// Bool returns a boolean column, or false when it is NULL.
func (r Record) Bool(column string) bool {
	v, _ := r.get(column).(bool)
	return v
}

// Ints returns the named integer columns, in order.
func (r Record) Ints(columns []string) []int64 {
	out := make([]int64, len(columns))
	for i, c := range columns {
		out[i] = r.Int(c)
	}
	return out
}
