// Package bo provides the live, per-instance side of the Habanero ORM: property
// values with dirty tracking, keys bound to those values and the business
// object that owns them.
//
// Objects in this package are owned by a single business object and are not
// safe for concurrent use.
package bo

import (
	"encoding/xml"
	"fmt"
	"reflect"
	"strings"
	"time"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

// Prop holds the value of one property of a business object together with
// its last persisted value
type Prop struct {
	def *schema.PropDef

	value               interface{}
	persistedValue      interface{}
	valueBeforeLastEdit interface{}

	isDirty       bool
	isValid       bool
	invalidReason string
	isObjectNew   bool
}

// NewProp creates a property holding the definition's default value. The
// property is not dirty and belongs to a new object.
func NewProp(def *schema.PropDef) (*Prop, error) {
	if def == nil {
		return nil, ormerrors.NewArgument("def", "cannot be nil")
	}
	value, err := def.DefaultValue()
	if err != nil {
		return nil, err
	}
	p := &Prop{def: def, isObjectNew: true}
	p.InitialiseProp(value)
	return p, nil
}

// Def returns the property definition
func (p *Prop) Def() *schema.PropDef { return p.def }

// Name returns the property name
func (p *Prop) Name() string { return p.def.Name }

// FieldName returns the database field name
func (p *Prop) FieldName() string { return p.def.FieldName() }

// Value returns the current value
func (p *Prop) Value() interface{} { return p.value }

// PersistedValue returns the value last loaded from or saved to the database
func (p *Prop) PersistedValue() interface{} { return p.persistedValue }

// ValueBeforeLastEdit returns the value replaced by the last SetValue
func (p *Prop) ValueBeforeLastEdit() interface{} { return p.valueBeforeLastEdit }

// IsDirty returns true when the value differs from the persisted value
func (p *Prop) IsDirty() bool { return p.isDirty }

// IsValid returns the result of the last validation
func (p *Prop) IsValid() bool { return p.isValid }

// InvalidReason returns why the last validation failed, or ""
func (p *Prop) InvalidReason() string { return p.invalidReason }

// IsObjectNew reports whether the owning object has never been persisted
func (p *Prop) IsObjectNew() bool { return p.isObjectNew }

// SetObjectNew sets whether the owning object has been persisted
func (p *Prop) SetObjectNew(isNew bool) { p.isObjectNew = isNew }

// SetValue converts and sets the value. Read-only properties, and write-new
// properties of persisted objects, cannot be set.
func (p *Prop) SetValue(value interface{}) error {
	switch {
	case p.def.ReadWriteRule == schema.ReadOnly:
		return ormerrors.NewInvalidProperty("the property '%s' is read only", p.def.Label())
	case p.def.ReadWriteRule == schema.WriteNew && !p.isObjectNew:
		return ormerrors.NewInvalidProperty(
			"the property '%s' can only be set on an object that has not been saved", p.def.Label())
	}

	converted, err := p.def.ConvertValue(value)
	if err != nil {
		return err
	}
	if valuesEqual(converted, p.value) {
		return nil
	}

	p.valueBeforeLastEdit = p.value
	p.value = converted
	p.isDirty = !valuesEqual(p.value, p.persistedValue)
	p.Validate()
	return nil
}

// InitialiseProp sets a value loaded from the database. The value becomes the
// persisted value and the property is clean. Conversion failures keep the raw
// value and mark the property invalid.
func (p *Prop) InitialiseProp(value interface{}) {
	if converted, err := p.def.ConvertValue(value); err == nil {
		value = converted
	}
	p.value = value
	p.persistedValue = value
	p.valueBeforeLastEdit = value
	p.isDirty = false
	p.Validate()
}

// Validate revalidates the current value
func (p *Prop) Validate() bool {
	p.isValid, p.invalidReason = p.def.Validate(p.value)
	return p.isValid
}

// BackupPropValue makes the current value the persisted value
func (p *Prop) BackupPropValue() {
	p.persistedValue = p.value
	p.valueBeforeLastEdit = p.value
	p.isDirty = false
}

// RestorePropValue reverts the value to the persisted value
func (p *Prop) RestorePropValue() {
	p.valueBeforeLastEdit = p.value
	p.value = p.persistedValue
	p.isDirty = false
	p.Validate()
}

// PropertyValueString returns the value as text, "" for nil
func (p *Prop) PropertyValueString() string {
	return formatValue(p.value)
}

// DirtyXML returns the property's previous and new value as an XML fragment
func (p *Prop) DirtyXML() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(p.def.Name)
	b.WriteString("><PreviousValue>")
	writeEscaped(&b, formatValue(p.persistedValue))
	b.WriteString("</PreviousValue><NewValue>")
	writeEscaped(&b, formatValue(p.value))
	b.WriteString("</NewValue></")
	b.WriteString(p.def.Name)
	b.WriteString(">")
	return b.String()
}

func writeEscaped(b *strings.Builder, s string) {
	// strings.Builder never returns a write error
	_ = xml.EscapeText(b, []byte(s))
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// valuesEqual compares two property values, treating equal instants as equal
// times regardless of location
func valuesEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}
