package bo

import (
	"slices"
	"strings"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

// FieldChange represents a change to a single property since it was last
// persisted
type FieldChange struct {
	Field    string
	OldValue interface{}
	NewValue interface{}
}

// PropCol is the property collection of one business object. Names are
// matched ignoring case.
type PropCol struct {
	props map[string]*Prop
	order []*Prop
}

// NewPropCol creates an empty collection
func NewPropCol() *PropCol {
	return &PropCol{
		props: make(map[string]*Prop),
		order: make([]*Prop, 0),
	}
}

// NewPropColFor creates a collection holding a new property for every
// definition in defs
func NewPropColFor(defs *schema.PropDefCol) (*PropCol, error) {
	col := NewPropCol()
	for _, def := range defs.PropDefs() {
		prop, err := NewProp(def)
		if err != nil {
			return nil, err
		}
		if err := col.Add(prop); err != nil {
			return nil, err
		}
	}
	return col, nil
}

// Add adds a property. A property whose name is already present, in any
// case, is rejected.
func (c *PropCol) Add(prop *Prop) error {
	if prop == nil {
		return ormerrors.NewArgument("prop", "cannot be nil")
	}
	key := strings.ToUpper(prop.Name())
	if _, exists := c.props[key]; exists {
		return ormerrors.NewInvalidProperty(
			"the property with the name '%s' already exists in the collection", prop.Name())
	}
	c.props[key] = prop
	c.order = append(c.order, prop)
	return nil
}

// AddAll adds every property of other
func (c *PropCol) AddAll(other *PropCol) error {
	for _, prop := range other.order {
		if err := c.Add(prop); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the named property. A missing property is an error, never a
// nil property.
func (c *PropCol) Get(name string) (*Prop, error) {
	prop, ok := c.props[strings.ToUpper(name)]
	if !ok {
		return nil, ormerrors.NewInvalidPropertyName(
			"a property with the name '%s' does not exist in the collection of properties", name)
	}
	return prop, nil
}

// Contains returns true if the named property exists
func (c *PropCol) Contains(name string) bool {
	_, ok := c.props[strings.ToUpper(name)]
	return ok
}

// Remove removes the named property. It returns false when the property is
// not in the collection.
func (c *PropCol) Remove(name string) bool {
	key := strings.ToUpper(name)
	prop, ok := c.props[key]
	if !ok {
		return false
	}
	delete(c.props, key)
	c.order = slices.DeleteFunc(c.order, func(p *Prop) bool { return p == prop })
	return true
}

// Count returns the number of properties
func (c *PropCol) Count() int {
	return len(c.order)
}

// Props returns the properties in the order they were added
func (c *PropCol) Props() []*Prop {
	return slices.Clone(c.order)
}

// SortedValues returns the properties sorted by name, ignoring case
func (c *PropCol) SortedValues() []*Prop {
	sorted := slices.Clone(c.order)
	slices.SortStableFunc(sorted, func(a, b *Prop) int {
		return strings.Compare(strings.ToUpper(a.Name()), strings.ToUpper(b.Name()))
	})
	return sorted
}

// DirtyXML returns the dirty properties as an XML fragment, in name order
func (c *PropCol) DirtyXML() string {
	var b strings.Builder
	b.WriteString("<Properties>")
	for _, prop := range c.SortedValues() {
		if prop.IsDirty() {
			b.WriteString(prop.DirtyXML())
		}
	}
	b.WriteString("</Properties>")
	return b.String()
}

// IsValid validates every property and returns false with the reasons of
// all invalid properties, one per line, when any is invalid
func (c *PropCol) IsValid() (bool, string) {
	var reasons []string
	for _, prop := range c.order {
		if !prop.Validate() {
			reasons = append(reasons, prop.InvalidReason())
		}
	}
	if len(reasons) > 0 {
		return false, strings.Join(reasons, "\n")
	}
	return true, ""
}

// RestorePropertyValues reverts every property to its persisted value
func (c *PropCol) RestorePropertyValues() {
	for _, prop := range c.order {
		prop.RestorePropValue()
	}
}

// BackupPropertyValues makes the current value of every property its
// persisted value
func (c *PropCol) BackupPropertyValues() {
	for _, prop := range c.order {
		prop.BackupPropValue()
	}
}

// IsDirty returns true if any property is dirty
func (c *PropCol) IsDirty() bool {
	for _, prop := range c.order {
		if prop.IsDirty() {
			return true
		}
	}
	return false
}

// HasAutoIncrementingField returns true if any property is filled in by the
// database on insert
func (c *PropCol) HasAutoIncrementingField() bool {
	return c.AutoIncrementingProp() != nil
}

// AutoIncrementingProp returns the first auto-incrementing property, or nil
func (c *PropCol) AutoIncrementingProp() *Prop {
	for _, prop := range c.order {
		if prop.Def().AutoIncrementing {
			return prop
		}
	}
	return nil
}

// DirtyProps returns the dirty properties in the order they were added
func (c *PropCol) DirtyProps() []*Prop {
	var dirty []*Prop
	for _, prop := range c.order {
		if prop.IsDirty() {
			dirty = append(dirty, prop)
		}
	}
	return dirty
}

// Changes returns the change of every dirty property, in name order
func (c *PropCol) Changes() []FieldChange {
	var changes []FieldChange
	for _, prop := range c.SortedValues() {
		if prop.IsDirty() {
			changes = append(changes, FieldChange{
				Field:    prop.Name(),
				OldValue: prop.PersistedValue(),
				NewValue: prop.Value(),
			})
		}
	}
	return changes
}

// PropertyValues returns the current values keyed by property name
func (c *PropCol) PropertyValues() map[string]interface{} {
	values := make(map[string]interface{}, len(c.order))
	for _, prop := range c.order {
		values[prop.Name()] = prop.Value()
	}
	return values
}

// SetObjectNew sets the new object flag of every property
func (c *PropCol) SetObjectNew(isNew bool) {
	for _, prop := range c.order {
		prop.SetObjectNew(isNew)
	}
}
