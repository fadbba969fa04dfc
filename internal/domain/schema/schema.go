// Package schema describes which fields of a dataset are queryable.
// Descriptors are static per dataset and drive filter validation, the
// machine-callable tool definitions, and the MCP tool surface.
package schema

import "fmt"

// FieldType is the scalar type of a queryable field.
type FieldType string

// Queryable field types.
const (
	String FieldType = "string"
	Number FieldType = "number"
	Date   FieldType = "date"
)

// Field describes one queryable field and its capabilities.
type Field struct {
	name        string
	fieldType   FieldType
	description string
	enum        []string
	filterable  bool
	sortable    bool
	searchable  bool
}

// NewField creates a field descriptor. Capabilities are added with the
// With* methods, which return updated copies.
func NewField(name string, t FieldType, description string) Field {
	return Field{name: name, fieldType: t, description: description}
}

// WithFilter marks the field filterable; enum (optional) lists the
// accepted values.
func (f Field) WithFilter(enum ...string) Field {
	f.filterable = true
	f.enum = enum
	return f
}

// WithSort marks the field sortable.
func (f Field) WithSort() Field {
	f.sortable = true
	return f
}

// WithSearch marks the field searchable by free text.
func (f Field) WithSearch() Field {
	f.searchable = true
	return f
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Type returns the field's scalar type.
func (f Field) Type() FieldType { return f.fieldType }

// Description returns the human/LLM-facing description.
func (f Field) Description() string { return f.description }

// Enum returns the accepted filter values (nil when unconstrained).
func (f Field) Enum() []string { return f.enum }

// Filterable reports whether the field accepts filter predicates.
func (f Field) Filterable() bool { return f.filterable }

// Sortable reports whether the field can be a sort key.
func (f Field) Sortable() bool { return f.sortable }

// Searchable reports whether free-text search scans the field.
func (f Field) Searchable() bool { return f.searchable }

// Descriptor is the static queryable-field metadata for one dataset.
type Descriptor struct {
	dataset     string
	description string
	idField     string
	defaultSort string
	fields      []Field
}

// NewDescriptor validates and creates a dataset descriptor.
func NewDescriptor(dataset, description, idField, defaultSort string, fields []Field) (Descriptor, error) {
	if dataset == "" {
		return Descriptor{}, fmt.Errorf("dataset name is required")
	}
	if defaultSort != "" {
		if f, ok := fieldByName(fields, defaultSort); !ok || !f.Sortable() {
			return Descriptor{}, fmt.Errorf("default sort field %q is not a sortable field", defaultSort)
		}
	}
	return Descriptor{
		dataset:     dataset,
		description: description,
		idField:     idField,
		defaultSort: defaultSort,
		fields:      fields,
	}, nil
}

// Dataset returns the dataset identifier.
func (d Descriptor) Dataset() string { return d.dataset }

// Description returns the dataset description.
func (d Descriptor) Description() string { return d.description }

// IDField returns the primary identifier field ("" when the dataset has none).
func (d Descriptor) IDField() string { return d.idField }

// DefaultSort returns the fallback sort field.
func (d Descriptor) DefaultSort() string { return d.defaultSort }

// Fields returns all queryable fields in declaration order.
func (d Descriptor) Fields() []Field { return d.fields }

// FieldByName looks up a field descriptor.
func (d Descriptor) FieldByName(name string) (Field, bool) {
	return fieldByName(d.fields, name)
}

// SearchFields returns the names of the searchable fields.
func (d Descriptor) SearchFields() []string {
	var out []string
	for _, f := range d.fields {
		if f.Searchable() {
			out = append(out, f.Name())
		}
	}
	return out
}

// IsFilterable reports whether name is a known filterable field.
func (d Descriptor) IsFilterable(name string) bool {
	f, ok := fieldByName(d.fields, name)
	return ok && f.Filterable()
}

// IsSortable reports whether name is a known sortable field.
func (d Descriptor) IsSortable(name string) bool {
	f, ok := fieldByName(d.fields, name)
	return ok && f.Sortable()
}

func fieldByName(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name() == name {
			return f, true
		}
	}
	return Field{}, false
}
