package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
)

// Definition file format. One file holds the classes of one assembly.
//
//	assembly: MyApp
//	classes:
//	  - name: MyApp.Models.Contact
//	    table: contact
//	    properties:
//	      - {name: ContactID, type: uuid, field: contact_id, compulsory: true}
//	      - {name: Surname, type: string, length: 50, compulsory: true}
//	    primaryKey: {properties: [ContactID]}
//	    relationships:
//	      - name: Manager
//	        relatedClass: MyApp.Models.Contact
//	        relProps: [{owner: ManagerID, related: ContactID}]
type definitionFile struct {
	Assembly string            `yaml:"assembly"`
	Classes  []classDefinition `yaml:"classes"`
}

type classDefinition struct {
	Name          string                   `yaml:"name"`
	Assembly      string                   `yaml:"assembly"`
	Table         string                   `yaml:"table"`
	DisplayName   string                   `yaml:"displayName"`
	Properties    []propertyDefinition     `yaml:"properties"`
	PrimaryKey    *primaryKeyDefinition    `yaml:"primaryKey"`
	Keys          []keyDefinition          `yaml:"keys"`
	Relationships []relationshipDefinition `yaml:"relationships"`
}

type propertyDefinition struct {
	Name          string           `yaml:"name"`
	Type          string           `yaml:"type"`
	Field         string           `yaml:"field"`
	DisplayName   string           `yaml:"displayName"`
	Compulsory    bool             `yaml:"compulsory"`
	ReadWriteRule string           `yaml:"readWriteRule"`
	AutoIncrement bool             `yaml:"autoIncrement"`
	Default       interface{}      `yaml:"default"`
	Length        int              `yaml:"length"`
	Description   string           `yaml:"description"`
	Rules         []ruleDefinition `yaml:"rules"`
}

type ruleDefinition struct {
	Type    string   `yaml:"type"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Pattern string   `yaml:"pattern"`
	Message string   `yaml:"message"`
}

type primaryKeyDefinition struct {
	Properties []string `yaml:"properties"`
}

type keyDefinition struct {
	Name         string   `yaml:"name"`
	Properties   []string `yaml:"properties"`
	IgnoreIfNull bool     `yaml:"ignoreIfNull"`
	Message      string   `yaml:"message"`
}

type relationshipDefinition struct {
	Name            string                `yaml:"name"`
	RelatedClass    string                `yaml:"relatedClass"`
	RelatedAssembly string                `yaml:"relatedAssembly"`
	Type            string                `yaml:"type"`
	OrderBy         string                `yaml:"orderBy"`
	RelProps        []relPropDefinition `yaml:"relProps"`
}

type relPropDefinition struct {
	Owner   string `yaml:"owner"`
	Related string `yaml:"related"`
}

// Loader reads class definition files
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadDir loads every .yml and .yaml file in dir, in name order, into one
// collection
func (l *Loader) LoadDir(dir string) (*ClassDefCol, error) {
	var files []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	col := NewClassDefCol(WithLogger(l.logger))
	for _, path := range files {
		loaded, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, cd := range loaded.order {
			if err := col.Add(cd); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return col, nil
}

// LoadFile loads a single definition file
func (l *Loader) LoadFile(path string) (*ClassDefCol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	col, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.logger.Info("class definition file loaded",
		zap.String("path", path),
		zap.Int("classes", col.Count()))
	return col, nil
}

// LoadPath loads a definition file, or every definition file of a
// directory
func (l *Loader) LoadPath(path string) (*ClassDefCol, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return l.LoadDir(path)
	}
	return l.LoadFile(path)
}

// Parse parses definition file contents. Unknown keys are rejected.
func (l *Loader) Parse(data []byte) (*ClassDefCol, error) {
	var file definitionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, ormerrors.NewInvalidXMLDefinition("invalid class definition file: %v", err)
	}

	col := NewClassDefCol(WithLogger(l.logger))
	for _, def := range file.Classes {
		cd, err := buildClassDef(file.Assembly, def)
		if err != nil {
			return nil, err
		}
		if err := col.Add(cd); err != nil {
			return nil, err
		}
	}
	return col, nil
}

func buildClassDef(assembly string, def classDefinition) (*ClassDef, error) {
	if def.Name == "" {
		return nil, ormerrors.NewInvalidXMLDefinition("a class definition has no name")
	}
	if def.Assembly != "" {
		assembly = def.Assembly
	}
	if assembly == "" {
		return nil, ormerrors.NewInvalidXMLDefinition("the class %s has no assembly", def.Name)
	}

	cd := NewClassDef(assembly, def.Name)
	if def.Table != "" {
		cd.TableName = def.Table
	}
	cd.DisplayName = def.DisplayName

	for _, p := range def.Properties {
		pd, err := buildPropDef(def.Name, p)
		if err != nil {
			return nil, err
		}
		if err := cd.AddPropDef(pd); err != nil {
			return nil, err
		}
	}

	if def.PrimaryKey != nil {
		if err := cd.SetPrimaryKey(def.PrimaryKey.Properties...); err != nil {
			return nil, ormerrors.NewInvalidXMLDefinition("%s primary key: %v", def.Name, err)
		}
	}

	for _, k := range def.Keys {
		kd := NewKeyDef(k.Name)
		kd.IgnoreIfNull = k.IgnoreIfNull
		kd.Message = k.Message
		for _, name := range k.Properties {
			pd, err := cd.GetPropDef(name)
			if err != nil {
				return nil, ormerrors.NewInvalidXMLDefinition("%s key %s: %v", def.Name, k.Name, err)
			}
			kd.Add(pd)
		}
		if err := cd.AddKeyDef(kd); err != nil {
			return nil, err
		}
	}

	for _, r := range def.Relationships {
		relType, err := ParseRelationshipType(r.Type)
		if err != nil {
			return nil, err
		}
		relProps := make([]RelPropDef, 0, len(r.RelProps))
		for _, rp := range r.RelProps {
			relProps = append(relProps, RelPropDef{OwnerPropertyName: rp.Owner, RelatedPropertyName: rp.Related})
		}
		rd := NewRelationshipDef(r.Name, r.RelatedClass, relType, relProps...)
		rd.RelatedAssemblyName = r.RelatedAssembly
		rd.OrderBy = r.OrderBy
		if err := cd.AddRelationship(rd); err != nil {
			return nil, err
		}
	}

	return cd, nil
}

func buildPropDef(className string, p propertyDefinition) (*PropDef, error) {
	if p.Name == "" {
		return nil, ormerrors.NewInvalidXMLDefinition("a property of %s has no name", className)
	}
	typeName := p.Type
	if typeName == "" {
		typeName = "string"
	}
	propType, err := ParsePropType(typeName)
	if err != nil {
		return nil, ormerrors.NewInvalidXMLDefinition("%s.%s: %v", className, p.Name, err)
	}
	rwRule, err := ParseReadWriteRule(p.ReadWriteRule)
	if err != nil {
		return nil, ormerrors.NewInvalidXMLDefinition("%s.%s: %v", className, p.Name, err)
	}

	pd := NewPropDef(p.Name, propType)
	pd.DatabaseFieldName = p.Field
	pd.DisplayName = p.DisplayName
	pd.Compulsory = p.Compulsory
	pd.ReadWriteRule = rwRule
	pd.AutoIncrementing = p.AutoIncrement
	pd.Default = p.Default
	pd.Length = p.Length
	pd.Description = p.Description

	for _, r := range p.Rules {
		rule, err := buildRule(r)
		if err != nil {
			return nil, ormerrors.NewInvalidXMLDefinition("%s.%s: %v", className, p.Name, err)
		}
		pd.AddRule(rule)
	}
	return pd, nil
}

func buildRule(r ruleDefinition) (PropRule, error) {
	switch r.Type {
	case "range":
		return RangeRule{Min: r.Min, Max: r.Max}, nil
	case "length":
		rule := LengthRule{}
		if r.Min != nil {
			rule.Min = int(*r.Min)
		}
		if r.Max != nil {
			rule.Max = int(*r.Max)
		}
		return rule, nil
	case "pattern":
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		return PatternRule{Pattern: re, Message: r.Message}, nil
	default:
		return nil, fmt.Errorf("unknown rule type: %s", r.Type)
	}
}
