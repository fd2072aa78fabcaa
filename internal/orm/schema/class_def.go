package schema

import (
	"path"
	"reflect"
	"strings"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
	"github.com/habanero-go/habanero/internal/orm/query"
)

// ClassTypeInfo identifies a business object type: the assembly (module or
// package path) it lives in and its class name, optionally namespace
// qualified ("Models.Person").
type ClassTypeInfo struct {
	AssemblyName string
	ClassName    string
}

// TypeInfoOf derives the ClassTypeInfo of a Go value. The package path is the
// assembly and the package name is the namespace, so a models.Person value
// from "example.com/app/models" maps to assembly "example.com/app/models",
// class "models.Person".
func TypeInfoOf(v interface{}) ClassTypeInfo {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ClassTypeInfo{}
	}
	className := t.Name()
	if pkg := t.PkgPath(); pkg != "" {
		className = path.Base(pkg) + "." + className
	}
	return ClassTypeInfo{AssemblyName: t.PkgPath(), ClassName: className}
}

// ClassDef is the schema of a business object class: its properties, keys,
// relationships and table mapping
type ClassDef struct {
	AssemblyName  string
	ClassName     string
	TableName     string
	DisplayName   string
	PropDefs      *PropDefCol
	KeyDefs       *KeyDefCol
	PrimaryKeyDef *PrimaryKeyDef
	Relationships *RelationshipDefCol

	// registry the class was added to, used to resolve relationships
	col *ClassDefCol
}

// NewClassDef creates a class definition. className may include a namespace.
// The table name defaults to the class name without namespace.
func NewClassDef(assemblyName, className string) *ClassDef {
	cd := &ClassDef{
		AssemblyName:  assemblyName,
		ClassName:     className,
		PropDefs:      NewPropDefCol(),
		KeyDefs:       NewKeyDefCol(),
		Relationships: NewRelationshipDefCol(),
	}
	cd.TableName = cd.ClassNameExcludingNamespace()
	return cd
}

// Namespace returns the namespace part of the class name, or ""
func (c *ClassDef) Namespace() string {
	ns, _ := splitClassName(c.ClassName)
	return ns
}

// ClassNameExcludingNamespace returns the class name without namespace
func (c *ClassDef) ClassNameExcludingNamespace() string {
	_, name := splitClassName(c.ClassName)
	return name
}

// FullClassName returns the namespace qualified class name
func (c *ClassDef) FullClassName() string {
	return c.ClassName
}

// TypeInfo returns the class's ClassTypeInfo
func (c *ClassDef) TypeInfo() ClassTypeInfo {
	return ClassTypeInfo{AssemblyName: c.AssemblyName, ClassName: c.ClassName}
}

// TypeID returns the registry key of the class
func (c *ClassDef) TypeID(includeNamespace bool) string {
	return GetTypeID(c.AssemblyName, c.ClassName, includeNamespace)
}

// Label returns the display name, defaulting to the class name
func (c *ClassDef) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.ClassNameExcludingNamespace()
}

// ClassDefCol returns the registry the class belongs to, or nil
func (c *ClassDef) ClassDefCol() *ClassDefCol {
	return c.col
}

// AddPropDef adds a property definition
func (c *ClassDef) AddPropDef(def *PropDef) error {
	return c.PropDefs.Add(def)
}

// AddKeyDef adds an alternate key definition
func (c *ClassDef) AddKeyDef(def *KeyDef) error {
	return c.KeyDefs.Add(def)
}

// SetPrimaryKey sets the primary key to the named properties
func (c *ClassDef) SetPrimaryKey(propNames ...string) error {
	props := make([]*PropDef, 0, len(propNames))
	for _, name := range propNames {
		def, err := c.GetPropDef(name)
		if err != nil {
			return err
		}
		props = append(props, def)
	}
	c.PrimaryKeyDef = NewPrimaryKeyDef(props...)
	return nil
}

// AddRelationship adds a relationship definition owned by this class
func (c *ClassDef) AddRelationship(def *RelationshipDef) error {
	if err := c.Relationships.Add(def); err != nil {
		return err
	}
	def.owner = c
	return nil
}

// GetPropDef returns the named property definition
func (c *ClassDef) GetPropDef(name string) (*PropDef, error) {
	def, ok := c.PropDefs.Get(name)
	if !ok {
		return nil, ormerrors.NewInvalidPropertyName(
			"the property '%s' does not exist on the class '%s'", name, c.ClassName)
	}
	return def, nil
}

// GetRelationship returns the named relationship definition
func (c *ClassDef) GetRelationship(name string) (*RelationshipDef, error) {
	def, ok := c.Relationships.Get(name)
	if !ok {
		return nil, ormerrors.NewInvalidPropertyName(
			"the relationship '%s' does not exist on the class '%s'", name, c.ClassName)
	}
	return def, nil
}

// ResolvePropDef resolves a dotted property path such as
// "Manager.Department.Name" by following single relationships to the class
// that owns the final property. A leading segment naming this class itself is
// skipped.
func (c *ClassDef) ResolvePropDef(propertyPath string) (*PropDef, error) {
	segments := strings.Split(propertyPath, ".")
	current := c
	for i, segment := range segments[:len(segments)-1] {
		if i == 0 && !current.Relationships.Contains(segment) &&
			strings.EqualFold(segment, current.ClassNameExcludingNamespace()) {
			continue
		}
		rel, err := current.GetRelationship(segment)
		if err != nil {
			return nil, err
		}
		if rel.Type != RelationshipSingle {
			return nil, ormerrors.NewDeveloper(
				"the property '"+propertyPath+"' cannot be used here",
				"the relationship '"+rel.Name+"' on '"+current.ClassName+"' is a multiple relationship and cannot be traversed in a property path",
			)
		}
		if current, err = rel.RelatedClassDef(); err != nil {
			return nil, err
		}
	}
	return current.GetPropDef(segments[len(segments)-1])
}

// GetPropType returns the type of the property at propertyPath
func (c *ClassDef) GetPropType(propertyPath string) (PropType, error) {
	def, err := c.ResolvePropDef(propertyPath)
	if err != nil {
		return 0, err
	}
	return def.Type, nil
}

// CreatePropertyComparer creates a comparer for the property at propertyPath,
// which may cross single relationships
func (c *ClassDef) CreatePropertyComparer(propertyPath string) (query.PropertyComparer, error) {
	def, err := c.ResolvePropDef(propertyPath)
	if err != nil {
		return nil, err
	}
	return NewPropertyComparer(def.Type, def.Name), nil
}

// Source returns the query source of the class: named after the class and
// backed by its table
func (c *ClassDef) Source() *query.Source {
	return query.NewSourceWithEntity(c.ClassNameExcludingNamespace(), c.TableName)
}

func splitClassName(className string) (string, string) {
	i := strings.LastIndexByte(className, '.')
	if i < 0 {
		return "", className
	}
	return className[:i], className[i+1:]
}
