package query

// Sortable is implemented by business objects that can be ordered by
// OrderCriteria. The object's class definition builds the comparer and the
// object itself resolves property values, following relationships when a
// source is given.
type Sortable interface {
	CreatePropertyComparer(fullPropertyName string) (PropertyComparer, error)
	PropertyValue(source *Source, propertyName string) (interface{}, error)
}

// PropertyComparer compares two objects on a single property. It is bound to
// a property type when created, but not to the Go type of the objects it
// compares.
type PropertyComparer interface {
	PropertyName() string
	SetPropertyName(name string)
	Source() *Source
	SetSource(source *Source)
	Compare(x, y Sortable) (int, error)
}
