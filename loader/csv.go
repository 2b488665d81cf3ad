package loader

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/schema"
	"github.com/teranos/porydex/tabular"
)

// row is one parsed CSV record in table column order, with the line it came from.
type row struct {
	line   int
	values []any
}

// readRows parses a table's CSV file. The header must name every column of
// the table exactly once, in any order.
func readRows(table *schema.Table, r io.Reader) ([]row, error) {
	file := tabular.FileName(table.Name)
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewIntegrityError("%s: missing header row", file)
	}
	if err != nil {
		return nil, errors.MarkIntegrity(err, "%s: read header", file)
	}

	// positions[i] is the table column index of CSV field i
	positions := make([]int, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		idx := table.Index(name)
		if idx < 0 {
			return nil, errors.WithHintf(errors.NewIntegrityError("%s: unknown column %q", file, name),
				"%s columns are: %s", table.Name, strings.Join(table.ColumnNames(), ", "))
		}
		if seen[name] {
			return nil, errors.NewIntegrityError("%s: duplicate column %q", file, name)
		}
		seen[name] = true
		positions[i] = idx
	}
	for _, c := range table.Columns {
		if !seen[c.Name] {
			return nil, errors.NewIntegrityError("%s: missing column %q", file, c.Name)
		}
	}

	var rows []row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.MarkIntegrity(err, "%s", file)
		}
		line, _ := cr.FieldPos(0)
		values := make([]any, len(table.Columns))
		for i, raw := range record {
			col := table.Columns[positions[i]]
			v, err := parseValue(col, raw)
			if err != nil {
				return nil, errors.MarkIntegrity(err, "%s line %d: column %s", file, line, col.Name)
			}
			values[positions[i]] = v
		}
		rows = append(rows, row{line: line, values: values})
	}
	return rows, nil
}

// parseValue converts one CSV field. Empty fields of nullable columns are
// NULL; booleans are True/False in any case.
func parseValue(col schema.Column, raw string) (any, error) {
	if raw == "" && col.Nullable {
		return nil, nil
	}
	switch col.Type {
	case schema.Int:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Newf("%q is not an integer", raw)
		}
		return v, nil
	case schema.Bool:
		switch {
		case strings.EqualFold(raw, "true"):
			return true, nil
		case strings.EqualFold(raw, "false"):
			return false, nil
		}
		return nil, errors.Newf("%q is not True or False", raw)
	default:
		return raw, nil
	}
}

// formatValue renders a stored value the way readRows parses it back.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		return v
	default:
		return ""
	}
}

// writeRows writes a header row followed by records, one per line with "\n"
// terminators.
func writeRows(table *schema.Table, records []schema.Record, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.ColumnNames()); err != nil {
		return err
	}
	fields := make([]string, len(table.Columns))
	for _, rec := range records {
		for i, v := range rec.Values {
			fields[i] = formatValue(v)
		}
		if err := cw.Write(fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
