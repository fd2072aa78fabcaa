package schema

import (
	"fmt"
	"strings"
)

// ValidationError is a class definition problem found by ClassDefValidator
type ValidationError struct {
	Class   string
	Member  string
	Message string
	Hint    string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var b strings.Builder

	if e.Class != "" {
		b.WriteString(e.Class)
		if e.Member != "" {
			b.WriteString(".")
			b.WriteString(e.Member)
		}
		b.WriteString(": ")
	}

	b.WriteString(e.Message)

	if e.Hint != "" {
		b.WriteString("\n  hint: ")
		b.WriteString(e.Hint)
	}

	return b.String()
}

// ClassDefValidator checks that the class definitions of a registry are
// complete and consistent with each other
type ClassDefValidator struct {
	errors   []*ValidationError
	warnings []string
}

// NewClassDefValidator creates a validator
func NewClassDefValidator() *ClassDefValidator {
	return &ClassDefValidator{
		errors:   make([]*ValidationError, 0),
		warnings: make([]string, 0),
	}
}

// Validate validates every class in col. Relationship cycles are reported as
// warnings, since self and mutual references are legitimate.
func (v *ClassDefValidator) Validate(col *ClassDefCol) error {
	v.errors = make([]*ValidationError, 0)
	v.warnings = make([]string, 0)

	for _, cd := range col.ClassDefs() {
		v.validatePrimaryKey(cd)
		v.validateKeys(cd)
		v.validateRelationships(cd)
	}

	for _, cycle := range NewRelationshipGraph(col).DetectCycles() {
		v.warnings = append(v.warnings, "circular dependency: "+formatCycles([][]string{cycle}))
	}

	if len(v.errors) > 0 {
		var msgs []string
		for _, err := range v.errors {
			msgs = append(msgs, err.Error())
		}
		return fmt.Errorf("class definition validation failed with %d errors:\n%s",
			len(v.errors), strings.Join(msgs, "\n"))
	}
	return nil
}

func (v *ClassDefValidator) validatePrimaryKey(cd *ClassDef) {
	if cd.PrimaryKeyDef == nil || cd.PrimaryKeyDef.Count() == 0 {
		v.errors = append(v.errors, &ValidationError{
			Class:   cd.ClassName,
			Message: "class must have a primary key",
			Hint:    "add a primaryKey section naming one or more properties",
		})
		return
	}
	for _, p := range cd.PrimaryKeyDef.Props() {
		if !cd.PropDefs.Contains(p.Name) {
			v.errors = append(v.errors, &ValidationError{
				Class:   cd.ClassName,
				Member:  p.Name,
				Message: "primary key property is not defined on the class",
			})
		}
	}
}

func (v *ClassDefValidator) validateKeys(cd *ClassDef) {
	for _, kd := range cd.KeyDefs.KeyDefs() {
		if kd.Count() == 0 {
			v.errors = append(v.errors, &ValidationError{
				Class:   cd.ClassName,
				Member:  kd.KeyName(),
				Message: "key has no properties",
			})
		}
		for _, p := range kd.Props() {
			if !cd.PropDefs.Contains(p.Name) {
				v.errors = append(v.errors, &ValidationError{
					Class:   cd.ClassName,
					Member:  kd.KeyName(),
					Message: fmt.Sprintf("key property %s is not defined on the class", p.Name),
				})
			}
		}
	}
}

func (v *ClassDefValidator) validateRelationships(cd *ClassDef) {
	for _, rel := range cd.Relationships.RelationshipDefs() {
		related, err := rel.RelatedClassDef()
		if err != nil {
			v.errors = append(v.errors, &ValidationError{
				Class:   cd.ClassName,
				Member:  rel.Name,
				Message: fmt.Sprintf("related class %s is not loaded", rel.RelatedClassName),
				Hint:    "check the related class name and assembly of the relationship",
			})
			continue
		}

		if len(rel.RelProps) == 0 {
			v.errors = append(v.errors, &ValidationError{
				Class:   cd.ClassName,
				Member:  rel.Name,
				Message: "relationship has no relationship properties",
			})
		}
		for _, rp := range rel.RelProps {
			if !cd.PropDefs.Contains(rp.OwnerPropertyName) {
				v.errors = append(v.errors, &ValidationError{
					Class:   cd.ClassName,
					Member:  rel.Name,
					Message: fmt.Sprintf("owner property %s is not defined on %s", rp.OwnerPropertyName, cd.ClassName),
				})
			}
			if !related.PropDefs.Contains(rp.RelatedPropertyName) {
				v.errors = append(v.errors, &ValidationError{
					Class:   cd.ClassName,
					Member:  rel.Name,
					Message: fmt.Sprintf("related property %s is not defined on %s", rp.RelatedPropertyName, related.ClassName),
				})
			}
		}

		if rel.OrderBy != "" && rel.Type == RelationshipSingle {
			v.warnings = append(v.warnings,
				fmt.Sprintf("%s.%s: order by is ignored on a single relationship", cd.ClassName, rel.Name))
		}
	}
}

// Errors returns the errors found by the last Validate call
func (v *ClassDefValidator) Errors() []*ValidationError {
	return v.errors
}

// Warnings returns the warnings found by the last Validate call
func (v *ClassDefValidator) Warnings() []string {
	return v.warnings
}
