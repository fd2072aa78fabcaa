package schema

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
)

// ReadWriteRule controls when a property may be edited
type ReadWriteRule int

const (
	ReadWrite ReadWriteRule = iota
	ReadOnly
	// WriteNew allows edits only while the object has not been persisted
	WriteNew
)

// String returns the string representation of the rule
func (r ReadWriteRule) String() string {
	switch r {
	case ReadOnly:
		return "ReadOnly"
	case WriteNew:
		return "WriteNew"
	default:
		return "ReadWrite"
	}
}

// ParseReadWriteRule parses a rule name, ignoring case. Empty means ReadWrite.
func ParseReadWriteRule(s string) (ReadWriteRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "readwrite":
		return ReadWrite, nil
	case "readonly":
		return ReadOnly, nil
	case "writenew":
		return WriteNew, nil
	default:
		return ReadWrite, fmt.Errorf("unknown read-write rule: %s", s)
	}
}

// PropRule is a validation rule attached to a property definition
type PropRule interface {
	// IsValid returns false and a reason when value breaks the rule.
	// value is never nil.
	IsValid(displayName string, value interface{}) (bool, string)
}

// RangeRule restricts a numeric property to [Min, Max]. A nil bound is open.
type RangeRule struct {
	Min *float64
	Max *float64
}

// IsValid implements PropRule
func (r RangeRule) IsValid(displayName string, value interface{}) (bool, string) {
	n, err := toFloat64(value)
	if err != nil {
		return false, fmt.Sprintf("'%s' must be a number", displayName)
	}
	if r.Min != nil && n < *r.Min {
		return false, fmt.Sprintf("'%s' must be at least %v", displayName, *r.Min)
	}
	if r.Max != nil && n > *r.Max {
		return false, fmt.Sprintf("'%s' must be at most %v", displayName, *r.Max)
	}
	return true, ""
}

// LengthRule restricts the length of a text property, counted in runes
type LengthRule struct {
	Min int
	Max int
}

// IsValid implements PropRule
func (r LengthRule) IsValid(displayName string, value interface{}) (bool, string) {
	s, ok := value.(string)
	if !ok {
		return true, ""
	}
	n := utf8.RuneCountInString(s)
	if n < r.Min {
		return false, fmt.Sprintf("'%s' must be at least %d characters", displayName, r.Min)
	}
	if r.Max > 0 && n > r.Max {
		return false, fmt.Sprintf("'%s' must be at most %d characters", displayName, r.Max)
	}
	return true, ""
}

// PatternRule requires a text property to match a regular expression
type PatternRule struct {
	Pattern *regexp.Regexp
	Message string
}

// IsValid implements PropRule
func (r PatternRule) IsValid(displayName string, value interface{}) (bool, string) {
	s, ok := value.(string)
	if !ok || r.Pattern.MatchString(s) {
		return true, ""
	}
	if r.Message != "" {
		return false, fmt.Sprintf("'%s' %s", displayName, r.Message)
	}
	return false, fmt.Sprintf("'%s' does not match the pattern %s", displayName, r.Pattern.String())
}

// PropDef defines a single property of a class
type PropDef struct {
	Name              string
	DisplayName       string
	Type              PropType
	DatabaseFieldName string
	Compulsory        bool
	ReadWriteRule     ReadWriteRule
	AutoIncrementing  bool
	// Default is converted with Type when a new object is created. The
	// string "now" gives the current time for time types.
	Default interface{}
	// Length is the maximum length of text values; 0 means unlimited
	Length      int
	Rules       []PropRule
	Description string
}

// NewPropDef creates a property definition with the given name and type
func NewPropDef(name string, propType PropType) *PropDef {
	return &PropDef{
		Name:  name,
		Type:  propType,
		Rules: make([]PropRule, 0),
	}
}

// FieldName returns the database field name, defaulting to the property name
func (p *PropDef) FieldName() string {
	if p.DatabaseFieldName != "" {
		return p.DatabaseFieldName
	}
	return p.Name
}

// Label returns the display name, defaulting to the property name
func (p *PropDef) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// AddRule adds a validation rule
func (p *PropDef) AddRule(rule PropRule) *PropDef {
	p.Rules = append(p.Rules, rule)
	return p
}

// ConvertValue converts value to the property's Go type
func (p *PropDef) ConvertValue(value interface{}) (interface{}, error) {
	converted, err := p.Type.Convert(value)
	if err != nil {
		return nil, ormerrors.NewInvalidProperty(
			"'%s' cannot be set to '%v': %v", p.Label(), value, err)
	}
	return converted, nil
}

// DefaultValue returns the converted default for a new object. Compulsory
// uuid properties without a default get a new random uuid.
func (p *PropDef) DefaultValue() (interface{}, error) {
	if p.Default == nil {
		if p.Type == TypeUUID && p.Compulsory && !p.AutoIncrementing {
			return uuid.New(), nil
		}
		return nil, nil
	}
	return p.ConvertValue(p.Default)
}

// Validate checks value against compulsory, length and rule constraints. All
// failures are reported, one per line.
func (p *PropDef) Validate(value interface{}) (bool, string) {
	if value == nil || value == "" {
		if p.Compulsory && !p.AutoIncrementing {
			return false, fmt.Sprintf("'%s' is a compulsory field and has no value.", p.Label())
		}
		return true, ""
	}

	var reasons []string
	if s, ok := value.(string); ok && p.Length > 0 && utf8.RuneCountInString(s) > p.Length {
		reasons = append(reasons, fmt.Sprintf(
			"'%s' for value '%s' exceeds the maximum length of %d.", p.Label(), s, p.Length))
	}
	for _, rule := range p.Rules {
		if ok, reason := rule.IsValid(p.Label(), value); !ok {
			reasons = append(reasons, reason)
		}
	}

	if len(reasons) > 0 {
		return false, strings.Join(reasons, "\n")
	}
	return true, ""
}

// PropDefCol is a case-insensitive, insertion ordered collection of property
// definitions
type PropDefCol struct {
	defs  map[string]*PropDef
	order []*PropDef
}

// NewPropDefCol creates an empty collection
func NewPropDefCol() *PropDefCol {
	return &PropDefCol{
		defs:  make(map[string]*PropDef),
		order: make([]*PropDef, 0),
	}
}

// Add adds a property definition; duplicate names are rejected
func (c *PropDefCol) Add(def *PropDef) error {
	if def == nil {
		return ormerrors.NewArgument("def", "cannot be nil")
	}
	key := strings.ToUpper(def.Name)
	if _, exists := c.defs[key]; exists {
		return ormerrors.NewInvalidXMLDefinition(
			"a property definition with the name '%s' already exists", def.Name)
	}
	c.defs[key] = def
	c.order = append(c.order, def)
	return nil
}

// Get returns the definition for name, ignoring case
func (c *PropDefCol) Get(name string) (*PropDef, bool) {
	def, ok := c.defs[strings.ToUpper(name)]
	return def, ok
}

// Contains returns true if a definition exists for name
func (c *PropDefCol) Contains(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Count returns the number of definitions
func (c *PropDefCol) Count() int {
	return len(c.order)
}

// PropDefs returns the definitions in insertion order
func (c *PropDefCol) PropDefs() []*PropDef {
	result := make([]*PropDef, len(c.order))
	copy(result, c.order)
	return result
}
