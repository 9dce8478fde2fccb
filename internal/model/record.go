package model

// Record represents a single row of data flowing through a node.
// Values are positional and align with the fields of the schema
// negotiated for the connection that carries the record.
type Record struct {
	Values []any `json:"values"`
}

// NewRecord creates a record from positional values
func NewRecord(values ...any) Record {
	return Record{Values: values}
}

// NumValues returns the number of values in the record
func (r Record) NumValues() int {
	return len(r.Values)
}

// Clone returns a shallow copy of the record with its own value slice
func (r Record) Clone() Record {
	values := make([]any, len(r.Values))
	copy(values, r.Values)
	return Record{Values: values}
}

// Table is a columnar view over a set of records sharing one schema
type Table struct {
	Schema Schema  `json:"schema"`
	Rows   [][]any `json:"rows"`
}

// NewTable builds a columnar table from a schema and its records
func NewTable(schema Schema, records []Record) Table {
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec.Values))
		copy(row, rec.Values)
		rows[i] = row
	}
	return Table{Schema: schema, Rows: rows}
}

// NumRows returns the number of rows in the table
func (t Table) NumRows() int {
	return len(t.Rows)
}

// Column returns all values of the named column in row order
func (t Table) Column(name string) ([]any, bool) {
	idx := -1
	for i, f := range t.Schema.Fields {
		if f.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	values := make([]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, nil)
		}
	}
	return values, true
}

// Records converts the table back to positional records
func (t Table) Records() []Record {
	records := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		values := make([]any, len(row))
		copy(values, row)
		records[i] = Record{Values: values}
	}
	return records
}
