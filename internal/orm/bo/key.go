package bo

import (
	"strings"

	"github.com/google/uuid"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

// Key is a key definition bound to the live properties of one object
type Key struct {
	def   *schema.KeyDef
	props []*Prop
}

func newKey(def *schema.KeyDef, props *PropCol) (*Key, error) {
	key := &Key{def: def, props: make([]*Prop, 0, def.Count())}
	for _, pd := range def.Props() {
		prop, err := props.Get(pd.Name)
		if err != nil {
			return nil, err
		}
		key.props = append(key.props, prop)
	}
	return key, nil
}

// KeyName returns the name of the key definition
func (k *Key) KeyName() string { return k.def.KeyName() }

// Def returns the key definition
func (k *Key) Def() *schema.KeyDef { return k.def }

// Props returns the key's properties in key order
func (k *Key) Props() []*Prop {
	result := make([]*Prop, len(k.props))
	copy(result, k.props)
	return result
}

// Count returns the number of properties in the key
func (k *Key) Count() int { return len(k.props) }

// IsComposite returns true for keys of more than one property
func (k *Key) IsComposite() bool { return len(k.props) > 1 }

// IsDirty returns true if any key property is dirty
func (k *Key) IsDirty() bool {
	for _, p := range k.props {
		if p.IsDirty() {
			return true
		}
	}
	return false
}

// HasNullValue returns true if any key property is nil
func (k *Key) HasNullValue() bool {
	for _, p := range k.props {
		if p.Value() == nil {
			return true
		}
	}
	return false
}

// Values returns the current values in key order
func (k *Key) Values() []interface{} {
	values := make([]interface{}, len(k.props))
	for i, p := range k.props {
		values[i] = p.Value()
	}
	return values
}

// PersistedValues returns the persisted values in key order, used to find the
// stored row when the key itself has been edited
func (k *Key) PersistedValues() []interface{} {
	values := make([]interface{}, len(k.props))
	for i, p := range k.props {
		values[i] = p.PersistedValue()
	}
	return values
}

// String renders the key as "Name=value" pairs joined by " AND "
func (k *Key) String() string {
	parts := make([]string, len(k.props))
	for i, p := range k.props {
		parts[i] = p.Name() + "=" + p.PropertyValueString()
	}
	return strings.Join(parts, " AND ")
}

// Equals returns true if other has the same property names and values
func (k *Key) Equals(other *Key) bool {
	if other == nil || len(k.props) != len(other.props) {
		return false
	}
	for i, p := range k.props {
		o := other.props[i]
		if !strings.EqualFold(p.Name(), o.Name()) || !valuesEqual(p.Value(), o.Value()) {
			return false
		}
	}
	return true
}

// PrimaryKey is the key that identifies a persisted object
type PrimaryKey struct {
	Key
	isGUIDObjectID bool
}

// NewPrimaryKey binds a primary key definition to props
func NewPrimaryKey(def *schema.PrimaryKeyDef, props *PropCol) (*PrimaryKey, error) {
	if def == nil {
		return nil, ormerrors.NewArgument("def", "cannot be nil")
	}
	key, err := newKey(&def.KeyDef, props)
	if err != nil {
		return nil, err
	}
	return &PrimaryKey{Key: *key, isGUIDObjectID: def.IsGUIDObjectID}, nil
}

// IsGUIDObjectID returns true for single uuid keys generated for new objects
func (k *PrimaryKey) IsGUIDObjectID() bool { return k.isGUIDObjectID }

// ObjectID returns the uuid of a GUID keyed object
func (k *PrimaryKey) ObjectID() (uuid.UUID, bool) {
	if !k.isGUIDObjectID || len(k.props) != 1 {
		return uuid.Nil, false
	}
	id, ok := k.props[0].Value().(uuid.UUID)
	return id, ok
}

// KeyCol holds the alternate keys of one object by name
type KeyCol struct {
	keys  map[string]*Key
	order []*Key
}

// NewKeyCol binds every key definition in defs to the properties in props
func NewKeyCol(defs *schema.KeyDefCol, props *PropCol) (*KeyCol, error) {
	if defs == nil {
		return nil, ormerrors.NewArgument("defs", "cannot be nil")
	}
	if props == nil {
		return nil, ormerrors.NewArgument("props", "cannot be nil")
	}

	col := &KeyCol{
		keys:  make(map[string]*Key, defs.Count()),
		order: make([]*Key, 0, defs.Count()),
	}
	for _, def := range defs.KeyDefs() {
		key, err := newKey(def, props)
		if err != nil {
			return nil, err
		}
		col.keys[strings.ToUpper(def.KeyName())] = key
		col.order = append(col.order, key)
	}
	return col, nil
}

// Get returns the named key
func (c *KeyCol) Get(name string) (*Key, bool) {
	key, ok := c.keys[strings.ToUpper(name)]
	return key, ok
}

// Count returns the number of keys
func (c *KeyCol) Count() int { return len(c.order) }

// Keys returns the keys in definition order
func (c *KeyCol) Keys() []*Key {
	result := make([]*Key, len(c.order))
	copy(result, c.order)
	return result
}
