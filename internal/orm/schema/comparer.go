package schema

import (
	"cmp"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/habanero-go/habanero/internal/orm/query"
)

// PropertyComparer orders business objects by one property, optionally
// reached through a relationship path. Nil values sort first.
type PropertyComparer struct {
	propType     PropType
	propertyName string
	source       *query.Source
	collator     *collate.Collator
}

// NewPropertyComparer creates a comparer for a property of the given type
func NewPropertyComparer(propType PropType, propertyName string) *PropertyComparer {
	return &PropertyComparer{
		propType:     propType,
		propertyName: propertyName,
		collator:     collate.New(language.English),
	}
}

// PropertyName implements query.PropertyComparer
func (c *PropertyComparer) PropertyName() string { return c.propertyName }

// SetPropertyName implements query.PropertyComparer
func (c *PropertyComparer) SetPropertyName(name string) { c.propertyName = name }

// Source implements query.PropertyComparer
func (c *PropertyComparer) Source() *query.Source { return c.source }

// SetSource implements query.PropertyComparer
func (c *PropertyComparer) SetSource(source *query.Source) { c.source = source }

// Compare implements query.PropertyComparer
func (c *PropertyComparer) Compare(x, y query.Sortable) (int, error) {
	vx, err := x.PropertyValue(c.source, c.propertyName)
	if err != nil {
		return 0, err
	}
	vy, err := y.PropertyValue(c.source, c.propertyName)
	if err != nil {
		return 0, err
	}
	return c.CompareValues(vx, vy)
}

// CompareValues compares two values of the comparer's property type
func (c *PropertyComparer) CompareValues(x, y interface{}) (int, error) {
	switch {
	case x == nil && y == nil:
		return 0, nil
	case x == nil:
		return -1, nil
	case y == nil:
		return 1, nil
	}

	vx, err := c.propType.Convert(x)
	if err != nil {
		return 0, fmt.Errorf("comparing %s: %w", c.propertyName, err)
	}
	vy, err := c.propType.Convert(y)
	if err != nil {
		return 0, fmt.Errorf("comparing %s: %w", c.propertyName, err)
	}
	if vx == nil || vy == nil {
		return c.CompareValues(vx, vy)
	}

	switch a := vx.(type) {
	case string:
		return c.collator.CompareString(a, vy.(string)), nil
	case int:
		return cmp.Compare(a, vy.(int)), nil
	case int64:
		return cmp.Compare(a, vy.(int64)), nil
	case float64:
		return cmp.Compare(a, vy.(float64)), nil
	case bool:
		b := vy.(bool)
		switch {
		case a == b:
			return 0, nil
		case !a:
			return -1, nil
		default:
			return 1, nil
		}
	case time.Time:
		return a.Compare(vy.(time.Time)), nil
	case uuid.UUID:
		return cmp.Compare(a.String(), vy.(uuid.UUID).String()), nil
	}
	return 0, fmt.Errorf("comparing %s: unsupported value type %T", c.propertyName, vx)
}
