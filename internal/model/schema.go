package model

// FieldType represents the wire type of a schema field
type FieldType string

const (
	// BoolField holds a boolean value
	BoolField FieldType = "BOOL"
	// Int64Field holds a 64-bit integer value
	Int64Field FieldType = "INT64"
	// DoubleField holds a 64-bit floating point value
	DoubleField FieldType = "DOUBLE"
	// StringField holds a variable-length string value
	StringField FieldType = "STRING"
	// BlobField holds an opaque binary value
	BlobField FieldType = "BLOB"
	// SpatialField holds a spatial object value
	SpatialField FieldType = "SPATIAL"
)

// Field describes a single column in a record schema
type Field struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`
	Size int       `json:"size,omitempty" yaml:"size,omitempty"`
}

// Schema describes the ordered columns of a record stream
type Schema struct {
	Fields []Field `json:"fields" yaml:"fields"`
}

// NewSchema creates a schema from an ordered list of fields
func NewSchema(fields ...Field) Schema {
	return Schema{Fields: fields}
}

// NumFields returns the number of columns in the schema
func (s Schema) NumFields() int {
	return len(s.Fields)
}

// FieldNames returns the column names in schema order
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldByName returns the field with the given name
func (s Schema) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Clone returns a deep copy of the schema
func (s Schema) Clone() Schema {
	fields := make([]Field, len(s.Fields))
	copy(fields, s.Fields)
	return Schema{Fields: fields}
}

// Extend returns a copy of the schema with additional fields appended
func (s Schema) Extend(fields ...Field) Schema {
	out := s.Clone()
	out.Fields = append(out.Fields, fields...)
	return out
}

// IsEmpty reports whether the schema has no fields
func (s Schema) IsEmpty() bool {
	return len(s.Fields) == 0
}
