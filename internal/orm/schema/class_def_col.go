package schema

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
)

// ClassDefCol is the registry of class definitions for an application. It is
// built once at start-up by the composition root and passed to the code that
// needs it; it does no locking, so loading must finish before it is shared.
//
// Class definitions are keyed by a type id derived from assembly, namespace
// and class name. Lookups try the id without namespace first and fall back to
// the namespace qualified id, so a class can be found by its short or its
// qualified name.
type ClassDefCol struct {
	classDefs map[string]*ClassDef
	order     []*ClassDef
	logger    *zap.Logger
}

// Option configures a ClassDefCol
type Option func(*ClassDefCol)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *ClassDefCol) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClassDefCol creates an empty registry
func NewClassDefCol(opts ...Option) *ClassDefCol {
	c := &ClassDefCol{
		classDefs: make(map[string]*ClassDef),
		order:     make([]*ClassDef, 0),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CleanUpAssemblyName strips version, culture and public key token details
// and a .dll/.exe extension from an assembly name:
// "MyApp, Version=1.0.0.0, Culture=neutral" becomes "MyApp".
func CleanUpAssemblyName(assemblyName string) string {
	name := assemblyName
	if i := strings.IndexByte(name, ','); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".dll") || strings.HasSuffix(lower, ".exe") {
		name = name[:len(name)-4]
	}
	return name
}

// GetTypeID builds the registry key for a class. The namespace, taken from
// everything before the last "." of className, is included only when
// includeNamespace is true and a namespace is present.
func GetTypeID(assemblyName, className string, includeNamespace bool) string {
	namespace, name := splitClassName(className)

	var b strings.Builder
	b.WriteString("ASSEMBLY:")
	b.WriteString(CleanUpAssemblyName(assemblyName))
	if includeNamespace && namespace != "" {
		b.WriteString(" NAMESPACE:")
		b.WriteString(namespace)
	}
	b.WriteString(" _CLASSNAME:")
	b.WriteString(name)
	return strings.ToUpper(b.String())
}

// Add registers a class definition. A class definition whose type id is
// already registered is rejected.
func (c *ClassDefCol) Add(cd *ClassDef) error {
	if cd == nil {
		return ormerrors.NewArgument("cd", "cannot be nil")
	}

	shortID := cd.TypeID(false)
	if existing, exists := c.classDefs[shortID]; exists {
		return ormerrors.NewInvalidXMLDefinition(
			"a duplicate class definition has been defined for the type %s (already registered as %s in %s)",
			shortID, existing.ClassName, existing.AssemblyName)
	}
	fullID := cd.TypeID(true)
	if _, exists := c.classDefs[fullID]; exists {
		return ormerrors.NewInvalidXMLDefinition(
			"a duplicate class definition has been defined for the type %s", fullID)
	}

	c.classDefs[shortID] = cd
	c.classDefs[fullID] = cd
	c.order = append(c.order, cd)
	cd.col = c

	c.logger.Debug("class definition added",
		zap.String("class", cd.ClassName),
		zap.String("assembly", cd.AssemblyName),
		zap.String("type_id", fullID))
	return nil
}

// Remove unregisters a class definition. It returns false when the class
// definition was not registered.
func (c *ClassDefCol) Remove(cd *ClassDef) bool {
	if !c.ContainsClassDef(cd) {
		return false
	}
	delete(c.classDefs, cd.TypeID(false))
	delete(c.classDefs, cd.TypeID(true))
	for i, existing := range c.order {
		if existing == cd {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if cd.col == c {
		cd.col = nil
	}
	return true
}

// LoadClassDefs loads the class definitions of col into this registry. When
// this registry is empty its contents are replaced by col's; otherwise every
// class definition of col not already registered is added. This lets class
// definitions be loaded from several files without losing earlier loads.
func (c *ClassDefCol) LoadClassDefs(col *ClassDefCol) error {
	if col == nil {
		return ormerrors.NewArgument("col", "cannot be nil")
	}

	if c.Count() == 0 {
		c.classDefs = make(map[string]*ClassDef, len(col.classDefs))
		for id, cd := range col.classDefs {
			c.classDefs[id] = cd
		}
		c.order = append(make([]*ClassDef, 0, len(col.order)), col.order...)
		for _, cd := range c.order {
			cd.col = c
		}
		c.logger.Info("class definitions loaded", zap.Int("count", c.Count()))
		return nil
	}

	added := 0
	for _, cd := range col.order {
		if c.ContainsClassDef(cd) {
			continue
		}
		if err := c.Add(cd); err != nil {
			return err
		}
		added++
	}
	c.logger.Info("class definitions merged",
		zap.Int("added", added),
		zap.Int("skipped", col.Count()-added),
		zap.Int("count", c.Count()))
	return nil
}

// Get returns the class definition for a type
func (c *ClassDefCol) Get(info ClassTypeInfo) (*ClassDef, error) {
	return c.GetByName(info.AssemblyName, info.ClassName)
}

// GetByName returns the class definition for an assembly and class name. The
// class name may or may not be namespace qualified.
func (c *ClassDefCol) GetByName(assemblyName, className string) (*ClassDef, error) {
	if cd, ok := c.lookup(assemblyName, className); ok {
		return cd, nil
	}
	return nil, ormerrors.NewDeveloper(
		fmt.Sprintf("no class definition has been loaded for the class '%s'", className),
		fmt.Sprintf("no class definition was found for the class '%s' in the assembly '%s'. "+
			"Check that the assembly name in the class definitions matches the assembly "+
			"name of the business object, for example after a project has been renamed",
			className, CleanUpAssemblyName(assemblyName)),
	)
}

// For returns the class definition for the type of the Go value v
func (c *ClassDefCol) For(v interface{}) (*ClassDef, error) {
	return c.Get(TypeInfoOf(v))
}

func (c *ClassDefCol) lookup(assemblyName, className string) (*ClassDef, bool) {
	if cd, ok := c.classDefs[GetTypeID(assemblyName, className, false)]; ok {
		return cd, true
	}
	cd, ok := c.classDefs[GetTypeID(assemblyName, className, true)]
	return cd, ok
}

// Contains returns true if a class definition exists for the type
func (c *ClassDefCol) Contains(info ClassTypeInfo) bool {
	return c.ContainsName(info.AssemblyName, info.ClassName)
}

// ContainsName returns true if a class definition exists for the assembly and class name
func (c *ClassDefCol) ContainsName(assemblyName, className string) bool {
	_, ok := c.lookup(assemblyName, className)
	return ok
}

// ContainsClassDef returns true if a class definition with the same type id as cd is registered
func (c *ClassDefCol) ContainsClassDef(cd *ClassDef) bool {
	if cd == nil {
		return false
	}
	return c.ContainsName(cd.AssemblyName, cd.ClassName)
}

// FindByClassName returns the first class definition, in registration order,
// whose short or qualified class name matches className, ignoring assembly
// and case
func (c *ClassDefCol) FindByClassName(className string) (*ClassDef, bool) {
	for _, cd := range c.order {
		if strings.EqualFold(cd.ClassName, className) ||
			strings.EqualFold(cd.ClassNameExcludingNamespace(), className) {
			return cd, true
		}
	}
	return nil, false
}

// Count returns the number of class definitions
func (c *ClassDefCol) Count() int {
	return len(c.order)
}

// ClassDefs returns the class definitions sorted by type id
func (c *ClassDefCol) ClassDefs() []*ClassDef {
	result := make([]*ClassDef, len(c.order))
	copy(result, c.order)
	sort.Slice(result, func(i, j int) bool {
		return result[i].TypeID(true) < result[j].TypeID(true)
	})
	return result
}
