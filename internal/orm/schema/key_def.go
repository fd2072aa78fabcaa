package schema

import (
	"strings"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
)

// KeyDef is an ordered set of properties whose combined values identify an
// object, such as a unique or alternate key
type KeyDef struct {
	name  string
	props []*PropDef
	// IgnoreIfNull skips uniqueness checks when any key value is nil
	IgnoreIfNull bool
	// Message is reported when the key is violated
	Message string
}

// NewKeyDef creates a key definition over props
func NewKeyDef(name string, props ...*PropDef) *KeyDef {
	kd := &KeyDef{name: name, props: make([]*PropDef, 0, len(props))}
	for _, p := range props {
		kd.Add(p)
	}
	return kd
}

// KeyName returns the key's name, or the property names joined by "_" when
// no name was given
func (k *KeyDef) KeyName() string {
	if k.name != "" {
		return k.name
	}
	names := make([]string, 0, len(k.props))
	for _, p := range k.props {
		names = append(names, p.Name)
	}
	return strings.Join(names, "_")
}

// Add appends a property to the key; a property already in the key is ignored
func (k *KeyDef) Add(prop *PropDef) {
	if prop == nil || k.Contains(prop.Name) {
		return
	}
	k.props = append(k.props, prop)
}

// Props returns the key's properties in order
func (k *KeyDef) Props() []*PropDef {
	result := make([]*PropDef, len(k.props))
	copy(result, k.props)
	return result
}

// Contains returns true if the key includes the named property
func (k *KeyDef) Contains(propName string) bool {
	for _, p := range k.props {
		if strings.EqualFold(p.Name, propName) {
			return true
		}
	}
	return false
}

// Count returns the number of properties in the key
func (k *KeyDef) Count() int {
	return len(k.props)
}

// IsComposite returns true for keys made of more than one property
func (k *KeyDef) IsComposite() bool {
	return len(k.props) > 1
}

// PrimaryKeyDef is the key that identifies a persisted object
type PrimaryKeyDef struct {
	KeyDef
	// IsGUIDObjectID marks a single uuid key generated for new objects
	IsGUIDObjectID bool
}

// NewPrimaryKeyDef creates a primary key definition
func NewPrimaryKeyDef(props ...*PropDef) *PrimaryKeyDef {
	pk := &PrimaryKeyDef{KeyDef: *NewKeyDef("PrimaryKey", props...)}
	if len(props) == 1 && props[0].Type == TypeUUID && !props[0].AutoIncrementing {
		pk.IsGUIDObjectID = true
	}
	return pk
}

// KeyDefCol maps key names to key definitions, preserving insertion order
type KeyDefCol struct {
	keys  map[string]*KeyDef
	order []*KeyDef
}

// NewKeyDefCol creates an empty collection
func NewKeyDefCol() *KeyDefCol {
	return &KeyDefCol{
		keys:  make(map[string]*KeyDef),
		order: make([]*KeyDef, 0),
	}
}

// Add adds a key definition; duplicate names are rejected
func (c *KeyDefCol) Add(def *KeyDef) error {
	if def == nil {
		return ormerrors.NewArgument("def", "cannot be nil")
	}
	key := strings.ToUpper(def.KeyName())
	if _, exists := c.keys[key]; exists {
		return ormerrors.NewInvalidXMLDefinition(
			"a key definition with the name '%s' already exists", def.KeyName())
	}
	c.keys[key] = def
	c.order = append(c.order, def)
	return nil
}

// Get returns the key definition for name, ignoring case
func (c *KeyDefCol) Get(name string) (*KeyDef, bool) {
	def, ok := c.keys[strings.ToUpper(name)]
	return def, ok
}

// Contains returns true if a key with the name exists
func (c *KeyDefCol) Contains(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Count returns the number of key definitions
func (c *KeyDefCol) Count() int {
	return len(c.order)
}

// KeyDefs returns the key definitions in insertion order
func (c *KeyDefCol) KeyDefs() []*KeyDef {
	result := make([]*KeyDef, len(c.order))
	copy(result, c.order)
	return result
}
