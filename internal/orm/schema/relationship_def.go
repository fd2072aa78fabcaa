package schema

import (
	"strings"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
)

// RelationshipType distinguishes single from multiple relationships
type RelationshipType int

const (
	// RelationshipSingle relates an object to at most one other object
	RelationshipSingle RelationshipType = iota
	// RelationshipMultiple relates an object to a collection
	RelationshipMultiple
)

// String returns the string representation of the relationship type
func (r RelationshipType) String() string {
	if r == RelationshipMultiple {
		return "multiple"
	}
	return "single"
}

// ParseRelationshipType parses "single" or "multiple", ignoring case
func ParseRelationshipType(s string) (RelationshipType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		return RelationshipSingle, nil
	case "multiple":
		return RelationshipMultiple, nil
	default:
		return RelationshipSingle, ormerrors.NewInvalidXMLDefinition("unknown relationship type: %s", s)
	}
}

// RelPropDef pairs a property on the owning class with the matching
// property on the related class
type RelPropDef struct {
	OwnerPropertyName   string
	RelatedPropertyName string
}

// RelationshipDef defines a relationship from one class to another
type RelationshipDef struct {
	Name                string
	RelatedAssemblyName string
	RelatedClassName    string
	Type                RelationshipType
	RelProps            []RelPropDef
	// OrderBy is the order criteria string for multiple relationships
	OrderBy string

	owner *ClassDef
}

// NewRelationshipDef creates a relationship definition
func NewRelationshipDef(name, relatedClassName string, relType RelationshipType, relProps ...RelPropDef) *RelationshipDef {
	return &RelationshipDef{
		Name:             name,
		RelatedClassName: relatedClassName,
		Type:             relType,
		RelProps:         relProps,
	}
}

// OwningClassDef returns the class definition the relationship belongs to
func (r *RelationshipDef) OwningClassDef() *ClassDef {
	return r.owner
}

// RelatedClassDef resolves the related class through the registry the owning
// class is registered in. The owner's assembly is used when no related
// assembly is given.
func (r *RelationshipDef) RelatedClassDef() (*ClassDef, error) {
	if r.owner == nil || r.owner.col == nil {
		return nil, ormerrors.NewDeveloper(
			"the relationship '"+r.Name+"' could not be resolved",
			"the owning class definition must be added to a ClassDefCol before relationships can be resolved",
		)
	}
	assembly := r.RelatedAssemblyName
	if assembly == "" {
		assembly = r.owner.AssemblyName
	}
	return r.owner.col.GetByName(assembly, r.RelatedClassName)
}

// RelationshipDefCol is a case-insensitive, insertion ordered collection of
// relationship definitions
type RelationshipDefCol struct {
	defs  map[string]*RelationshipDef
	order []*RelationshipDef
}

// NewRelationshipDefCol creates an empty collection
func NewRelationshipDefCol() *RelationshipDefCol {
	return &RelationshipDefCol{
		defs:  make(map[string]*RelationshipDef),
		order: make([]*RelationshipDef, 0),
	}
}

// Add adds a relationship definition; duplicate names are rejected
func (c *RelationshipDefCol) Add(def *RelationshipDef) error {
	if def == nil {
		return ormerrors.NewArgument("def", "cannot be nil")
	}
	key := strings.ToUpper(def.Name)
	if _, exists := c.defs[key]; exists {
		return ormerrors.NewInvalidXMLDefinition(
			"a relationship with the name '%s' already exists", def.Name)
	}
	c.defs[key] = def
	c.order = append(c.order, def)
	return nil
}

// Get returns the relationship definition for name, ignoring case
func (c *RelationshipDefCol) Get(name string) (*RelationshipDef, bool) {
	def, ok := c.defs[strings.ToUpper(name)]
	return def, ok
}

// Contains returns true if a relationship with the name exists
func (c *RelationshipDefCol) Contains(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Count returns the number of relationships
func (c *RelationshipDefCol) Count() int {
	return len(c.order)
}

// RelationshipDefs returns the definitions in insertion order
func (c *RelationshipDefCol) RelationshipDefs() []*RelationshipDef {
	result := make([]*RelationshipDef, len(c.order))
	copy(result, c.order)
	return result
}
