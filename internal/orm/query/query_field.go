// Package query provides the building blocks for criteria and ordering in the
// Habanero ORM: queryable fields, source (join) trees built from relationship
// paths, and order criteria that compare business objects.
package query

import "strings"

// QueryField identifies a queryable attribute: the property on the business
// object, the database field that stores it and the source it comes from.
// QueryField is immutable.
type QueryField struct {
	propertyName string
	fieldName    string
	sourceName   string
}

// NewQueryField creates a new QueryField
func NewQueryField(propertyName, fieldName, sourceName string) QueryField {
	return QueryField{
		propertyName: propertyName,
		fieldName:    fieldName,
		sourceName:   sourceName,
	}
}

// QueryFieldFromString parses "Source.Field" or "Field". The property and field
// names are both set to the trailing segment.
func QueryFieldFromString(s string) QueryField {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		name := s[i+1:]
		return NewQueryField(name, name, s[:i])
	}
	return NewQueryField(s, s, "")
}

// PropertyName returns the business object property name
func (f QueryField) PropertyName() string { return f.propertyName }

// FieldName returns the database field name
func (f QueryField) FieldName() string { return f.fieldName }

// SourceName returns the name of the source the field belongs to
func (f QueryField) SourceName() string { return f.sourceName }

// String returns "Source.Field", or "Field" when there is no source
func (f QueryField) String() string {
	if f.sourceName == "" {
		return f.fieldName
	}
	return f.sourceName + "." + f.fieldName
}
