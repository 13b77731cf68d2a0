package entity

// Table is the generic tabular payload produced by the CSV, HTML and JSON
// parsers. Cells hold nil, string, float64 or bool values.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable creates an empty table with the given header.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table is nil or has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnIndex returns the position of the column named exactly name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col); short rows yield nil.
func (t *Table) Cell(row, col int) any {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return nil
	}
	r := t.Rows[row]
	if col >= len(r) {
		return nil
	}
	return r[col]
}

// SetCell stores v at (row, col), growing the row if needed.
func (t *Table) SetCell(row, col int, v any) {
	r := t.Rows[row]
	for len(r) <= col {
		r = append(r, nil)
	}
	r[col] = v
	t.Rows[row] = r
}

// EnsureColumn returns the index of name, appending an empty column if it
// does not exist yet.
func (t *Table) EnsureColumn(name string) int {
	if i := t.ColumnIndex(name); i >= 0 {
		return i
	}
	t.Columns = append(t.Columns, name)
	return len(t.Columns) - 1
}

// AppendRecord appends a row built from a column-name keyed map. Unknown
// names are added as new columns.
func (t *Table) AppendRecord(rec map[string]any) {
	row := make([]any, len(t.Columns))
	for name, v := range rec {
		i := t.EnsureColumn(name)
		for len(row) <= i {
			row = append(row, nil)
		}
		row[i] = v
	}
	t.Rows = append(t.Rows, row)
}

// Filter returns a new table holding only the rows for which keep is true.
func (t *Table) Filter(keep func(row []any) bool) *Table {
	out := NewTable(t.Columns...)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Clone returns a deep copy of the header and row slices.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}
	return out
}
