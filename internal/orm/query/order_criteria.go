package query

import (
	"slices"
	"strings"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
)

// SortDirection is the direction of an order field
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// String returns ASC or DESC
func (d SortDirection) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// ParseSortDirection parses ASC or DESC, ignoring case
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC":
		return Ascending, nil
	case "DESC":
		return Descending, nil
	default:
		return Ascending, ormerrors.NewInvalidArgument(
			"'%s' is an invalid sort order, valid options are ASC and DESC", s)
	}
}

// OrderCriteriaField is a single sort key. The property may live on a related
// object reached through Source.
type OrderCriteriaField struct {
	propertyName string
	source       *Source
	direction    SortDirection

	// bound on first comparison
	comparer PropertyComparer
}

// NewOrderCriteriaField creates a field. A nil source means the property is on
// the object being compared.
func NewOrderCriteriaField(propertyName string, source *Source, direction SortDirection) *OrderCriteriaField {
	return &OrderCriteriaField{
		propertyName: propertyName,
		source:       source,
		direction:    direction,
	}
}

// OrderCriteriaFieldFromString parses "[source.]property [ASC|DESC]"
func OrderCriteriaFieldFromString(s string) (*OrderCriteriaField, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, ormerrors.NewInvalidArgument("an order criteria field cannot be empty")
	}
	if len(parts) > 2 {
		return nil, ormerrors.NewInvalidArgument(
			"'%s' is an invalid order criteria field, expected '<property> [ASC|DESC]'", strings.TrimSpace(s))
	}

	direction := Ascending
	if len(parts) == 2 {
		var err error
		if direction, err = ParseSortDirection(parts[1]); err != nil {
			return nil, err
		}
	}

	source, name := splitPropertyPath(parts[0])
	return NewOrderCriteriaField(name, source, direction), nil
}

// splitPropertyPath splits "A.B.Prop" into the source path A.B and Prop
func splitPropertyPath(path string) (*Source, string) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return nil, path
	}
	return SourceFromString(path[:i]), path[i+1:]
}

// PropertyName returns the name of the property being sorted on
func (f *OrderCriteriaField) PropertyName() string { return f.propertyName }

// Source returns the relationship path to the property, or nil
func (f *OrderCriteriaField) Source() *Source { return f.source }

// SortDirection returns the direction of the field
func (f *OrderCriteriaField) SortDirection() SortDirection { return f.direction }

// FullName returns the dotted path including the source, e.g. "Manager.Surname"
func (f *OrderCriteriaField) FullName() string {
	if f.source == nil {
		return f.propertyName
	}
	return f.source.String() + "." + f.propertyName
}

// Compare compares x and y on this field. The comparer is created from x on
// the first call and reused afterwards.
func (f *OrderCriteriaField) Compare(x, y Sortable) (int, error) {
	if f.comparer == nil {
		comparer, err := x.CreatePropertyComparer(f.FullName())
		if err != nil {
			return 0, err
		}
		comparer.SetPropertyName(f.propertyName)
		comparer.SetSource(f.source)
		f.comparer = comparer
	}

	result, err := f.comparer.Compare(x, y)
	if err != nil {
		return 0, err
	}
	if f.direction == Descending {
		return -result, nil
	}
	return result, nil
}

// Equals compares full name and direction
func (f *OrderCriteriaField) Equals(other *OrderCriteriaField) bool {
	if other == nil {
		return false
	}
	return f.FullName() == other.FullName() && f.direction == other.direction
}

// String returns "FullName ASC|DESC"
func (f *OrderCriteriaField) String() string {
	return f.FullName() + " " + f.direction.String()
}

// Field is the string based form of an order field
type Field struct {
	Name      string
	Source    string
	Direction SortDirection
}

// FieldFromString parses a Field using the same grammar as OrderCriteriaFieldFromString
func FieldFromString(s string) (Field, error) {
	f, err := OrderCriteriaFieldFromString(s)
	if err != nil {
		return Field{}, err
	}
	return f.legacy(), nil
}

func (f *OrderCriteriaField) legacy() Field {
	return Field{
		Name:      f.propertyName,
		Source:    f.source.String(),
		Direction: f.direction,
	}
}

// FullName returns "Source.Name" or "Name"
func (f Field) FullName() string {
	if f.Source == "" {
		return f.Name
	}
	return f.Source + "." + f.Name
}

// String returns "FullName ASC|DESC"
func (f Field) String() string {
	return f.FullName() + " " + f.Direction.String()
}

// OrderCriteria is an ordered list of sort fields. The first field is the
// primary key; later fields only break ties.
type OrderCriteria struct {
	fields []*OrderCriteriaField
}

// NewOrderCriteria creates an empty OrderCriteria
func NewOrderCriteria() *OrderCriteria {
	return &OrderCriteria{fields: make([]*OrderCriteriaField, 0)}
}

// OrderCriteriaFromString parses "Surname, Age DESC, Manager.Surname ASC".
// Empty input gives empty criteria.
func OrderCriteriaFromString(s string) (*OrderCriteria, error) {
	oc := NewOrderCriteria()
	if strings.TrimSpace(s) == "" {
		return oc, nil
	}

	for _, segment := range strings.Split(s, ",") {
		field, err := OrderCriteriaFieldFromString(strings.TrimSpace(segment))
		if err != nil {
			return nil, err
		}
		oc.AddField(field)
	}
	return oc, nil
}

// Add appends an ascending field. The name may include a dotted source path.
func (oc *OrderCriteria) Add(name string) *OrderCriteria {
	return oc.AddWithDirection(name, Ascending)
}

// AddWithDirection appends a field with the given direction
func (oc *OrderCriteria) AddWithDirection(name string, direction SortDirection) *OrderCriteria {
	source, propertyName := splitPropertyPath(strings.TrimSpace(name))
	return oc.AddField(NewOrderCriteriaField(propertyName, source, direction))
}

// AddField appends a field
func (oc *OrderCriteria) AddField(field *OrderCriteriaField) *OrderCriteria {
	oc.fields = append(oc.fields, field)
	return oc
}

// Fields returns the fields in priority order
func (oc *OrderCriteria) Fields() []*OrderCriteriaField {
	return slices.Clone(oc.fields)
}

// LegacyFields returns the fields in their string based form
func (oc *OrderCriteria) LegacyFields() []Field {
	result := make([]Field, 0, len(oc.fields))
	for _, f := range oc.fields {
		result = append(result, f.legacy())
	}
	return result
}

// Count returns the number of fields
func (oc *OrderCriteria) Count() int {
	return len(oc.fields)
}

// IsEmpty returns true when there are no fields
func (oc *OrderCriteria) IsEmpty() bool {
	return len(oc.fields) == 0
}

// Compare compares x and y field by field; the first non-zero result wins
func (oc *OrderCriteria) Compare(x, y Sortable) (int, error) {
	for _, field := range oc.fields {
		result, err := field.Compare(x, y)
		if err != nil {
			return 0, err
		}
		if result != 0 {
			return result, nil
		}
	}
	return 0, nil
}

// Equals returns true if both criteria have the same fields in the same order
func (oc *OrderCriteria) Equals(other *OrderCriteria) bool {
	if other == nil || len(oc.fields) != len(other.fields) {
		return false
	}
	for i, f := range oc.fields {
		if !f.Equals(other.fields[i]) {
			return false
		}
	}
	return true
}

// String renders the criteria in the form accepted by OrderCriteriaFromString
func (oc *OrderCriteria) String() string {
	parts := make([]string, 0, len(oc.fields))
	for _, f := range oc.fields {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ", ")
}

// Sort stable-sorts items by oc. It returns the first comparison error; the
// order of items is unspecified when an error is returned.
func Sort[T Sortable](oc *OrderCriteria, items []T) error {
	var firstErr error
	slices.SortStableFunc(items, func(a, b T) int {
		if firstErr != nil {
			return 0
		}
		result, err := oc.Compare(a, b)
		if err != nil {
			firstErr = err
			return 0
		}
		return result
	})
	return firstErr
}
