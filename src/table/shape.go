package table

import (
	"log/slog"

	"DataScope/src/utils"
)

// ColumnSpec narrows a table's columns. A non-empty Include wins over
// Exclude; with neither set, shaping is a no-op copy.
type ColumnSpec struct {
	Include []string
	Exclude []string
}

// IsZero reports whether no shaping was requested at all.
func (s ColumnSpec) IsZero() bool {
	return len(s.Include) == 0 && len(s.Exclude) == 0
}

// Shape narrows the table's column set.
//
// Include keeps the columns present in both the request and the table, in the
// table's own order. When nothing matches, the result declares the full
// include list with zero rows, so the caller sees "no such columns" instead
// of a silently unshaped table. Exclude drops the matching columns; when no
// exclude name exists the table comes back unchanged. Both degenerate paths
// log a diagnostic and neither is an error: consumers downstream inspect the
// result's shape. The input is never mutated.
func Shape(t Table, spec ColumnSpec, log *slog.Logger) Table {
	switch {
	case len(spec.Include) > 0:
		keep := make([]string, 0, len(spec.Include))
		for _, name := range t.cols {
			if utils.Contains(spec.Include, name) {
				keep = append(keep, name)
			}
		}
		if len(keep) == 0 {
			if log != nil {
				log.Warn("none of the requested columns exist, returning empty table",
					"include", spec.Include, "columns", t.cols)
			}
			return NewEmpty(spec.Include)
		}
		return t.selectColumns(keep)

	case len(spec.Exclude) > 0:
		keep := make([]string, 0, len(t.cols))
		for _, name := range t.cols {
			if !utils.Contains(spec.Exclude, name) {
				keep = append(keep, name)
			}
		}
		if len(keep) == len(t.cols) {
			if log != nil {
				log.Warn("none of the excluded columns exist, table unchanged",
					"exclude", spec.Exclude, "columns", t.cols)
			}
			return t.Copy()
		}
		if len(keep) == 0 {
			return Table{}
		}
		return t.selectColumns(keep)

	default:
		return t.Copy()
	}
}

// selectColumns keeps the given columns, which must exist, preserving the
// row index.
func (t Table) selectColumns(keep []string) Table {
	return Table{
		cols:  append([]string(nil), keep...),
		df:    t.df.Select(keep),
		index: t.index,
	}
}
