package bo

import (
	"strings"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
	"github.com/habanero-go/habanero/internal/orm/query"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

// BusinessObject is one instance of a class described by a ClassDef
type BusinessObject struct {
	classDef   *schema.ClassDef
	props      *PropCol
	keys       *KeyCol
	primaryKey *PrimaryKey

	// related objects by upper-cased relationship name
	single   map[string]*BusinessObject
	multiple map[string][]*BusinessObject

	isNew     bool
	isDeleted bool
	isEditing bool
}

var _ query.Sortable = (*BusinessObject)(nil)

// New creates a new, unsaved object of the class
func New(cd *schema.ClassDef) (*BusinessObject, error) {
	if cd == nil {
		return nil, ormerrors.NewArgument("cd", "cannot be nil")
	}

	props, err := NewPropColFor(cd.PropDefs)
	if err != nil {
		return nil, err
	}
	keys, err := NewKeyCol(cd.KeyDefs, props)
	if err != nil {
		return nil, err
	}

	obj := &BusinessObject{
		classDef: cd,
		props:    props,
		keys:     keys,
		single:   make(map[string]*BusinessObject),
		multiple: make(map[string][]*BusinessObject),
		isNew:    true,
	}
	if cd.PrimaryKeyDef != nil {
		if obj.primaryKey, err = NewPrimaryKey(cd.PrimaryKeyDef, props); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// ClassDef returns the class definition
func (b *BusinessObject) ClassDef() *schema.ClassDef { return b.classDef }

// Props returns the property collection
func (b *BusinessObject) Props() *PropCol { return b.props }

// Keys returns the alternate keys
func (b *BusinessObject) Keys() *KeyCol { return b.keys }

// PrimaryKey returns the primary key, or nil when the class has none
func (b *BusinessObject) PrimaryKey() *PrimaryKey { return b.primaryKey }

// IsNew returns true until the object has been saved or was loaded
func (b *BusinessObject) IsNew() bool { return b.isNew }

// IsDeleted returns true when the object is marked for deletion
func (b *BusinessObject) IsDeleted() bool { return b.isDeleted }

// IsEditing returns true between the first edit and save or cancel
func (b *BusinessObject) IsEditing() bool { return b.isEditing }

// IsDirty returns true when the object has changes to persist
func (b *BusinessObject) IsDirty() bool {
	return b.props.IsDirty() || (b.isDeleted && !b.isNew)
}

// ID returns the primary key rendered as text
func (b *BusinessObject) ID() string {
	if b.primaryKey == nil {
		return ""
	}
	return b.primaryKey.String()
}

// GetPropertyValue returns the current value of the named property
func (b *BusinessObject) GetPropertyValue(name string) (interface{}, error) {
	prop, err := b.props.Get(name)
	if err != nil {
		return nil, err
	}
	return prop.Value(), nil
}

// SetPropertyValue sets the named property and starts an edit
func (b *BusinessObject) SetPropertyValue(name string, value interface{}) error {
	if b.isDeleted {
		return ormerrors.NewDeveloper(
			"the object cannot be edited",
			"the "+b.classDef.ClassName+" object "+b.ID()+" has been marked for deletion and cannot be edited",
		)
	}
	prop, err := b.props.Get(name)
	if err != nil {
		return err
	}
	if err := prop.SetValue(value); err != nil {
		return err
	}
	b.isEditing = true
	return nil
}

// BeginEdit starts an edit
func (b *BusinessObject) BeginEdit() {
	b.isEditing = true
}

// CancelEdits reverts all properties to their persisted values and undoes a
// pending deletion
func (b *BusinessObject) CancelEdits() {
	b.props.RestorePropertyValues()
	b.isDeleted = false
	b.isEditing = false
}

// MarkForDelete flags the object for deletion on the next commit
func (b *BusinessObject) MarkForDelete() {
	b.isDeleted = true
	b.isEditing = true
}

// IsValid validates every property
func (b *BusinessObject) IsValid() (bool, string) {
	return b.props.IsValid()
}

// DirtyXML returns the dirty properties as an XML fragment
func (b *BusinessObject) DirtyXML() string {
	return b.props.DirtyXML()
}

// InitialiseFromLoad marks a freshly constructed object as loaded from the
// database with the given values keyed by property name
func (b *BusinessObject) InitialiseFromLoad(values map[string]interface{}) error {
	for name, value := range values {
		prop, err := b.props.Get(name)
		if err != nil {
			return err
		}
		prop.InitialiseProp(value)
	}
	b.isNew = false
	b.isEditing = false
	b.props.SetObjectNew(false)
	return nil
}

// AfterSave records a successful save: values become persisted, a deleted
// object stays deleted and the object is no longer new
func (b *BusinessObject) AfterSave() {
	b.props.BackupPropertyValues()
	b.props.SetObjectNew(false)
	b.isNew = false
	b.isEditing = false
}

// SetRelatedObject sets the object of a single relationship. The owner
// properties of the relationship are copied from the related object; a nil
// related object clears them.
func (b *BusinessObject) SetRelatedObject(relationshipName string, related *BusinessObject) error {
	rel, err := b.relationship(relationshipName, schema.RelationshipSingle)
	if err != nil {
		return err
	}
	for _, rp := range rel.RelProps {
		var value interface{}
		if related != nil {
			if value, err = related.GetPropertyValue(rp.RelatedPropertyName); err != nil {
				return err
			}
		}
		if err := b.SetPropertyValue(rp.OwnerPropertyName, value); err != nil {
			return err
		}
	}
	key := strings.ToUpper(rel.Name)
	if related == nil {
		delete(b.single, key)
	} else {
		b.single[key] = related
	}
	return nil
}

// GetRelatedObject returns the object of a single relationship, or nil when
// none has been set
func (b *BusinessObject) GetRelatedObject(relationshipName string) (*BusinessObject, error) {
	rel, err := b.relationship(relationshipName, schema.RelationshipSingle)
	if err != nil {
		return nil, err
	}
	return b.single[strings.ToUpper(rel.Name)], nil
}

// SetRelatedObjects sets the objects of a multiple relationship, sorted by
// the relationship's order criteria
func (b *BusinessObject) SetRelatedObjects(relationshipName string, related []*BusinessObject) error {
	rel, err := b.relationship(relationshipName, schema.RelationshipMultiple)
	if err != nil {
		return err
	}
	objs := make([]*BusinessObject, len(related))
	copy(objs, related)
	if rel.OrderBy != "" {
		criteria, err := query.OrderCriteriaFromString(rel.OrderBy)
		if err != nil {
			return err
		}
		if err := query.Sort(criteria, objs); err != nil {
			return err
		}
	}
	b.multiple[strings.ToUpper(rel.Name)] = objs
	return nil
}

// GetRelatedObjects returns the objects of a multiple relationship
func (b *BusinessObject) GetRelatedObjects(relationshipName string) ([]*BusinessObject, error) {
	rel, err := b.relationship(relationshipName, schema.RelationshipMultiple)
	if err != nil {
		return nil, err
	}
	objs := b.multiple[strings.ToUpper(rel.Name)]
	result := make([]*BusinessObject, len(objs))
	copy(result, objs)
	return result, nil
}

func (b *BusinessObject) relationship(name string, relType schema.RelationshipType) (*schema.RelationshipDef, error) {
	rel, err := b.classDef.GetRelationship(name)
	if err != nil {
		return nil, err
	}
	if rel.Type != relType {
		return nil, ormerrors.NewDeveloper(
			"the relationship '"+name+"' cannot be used here",
			"the relationship '"+name+"' on '"+b.classDef.ClassName+"' is a "+rel.Type.String()+" relationship",
		)
	}
	return rel, nil
}

// CreatePropertyComparer implements query.Sortable
func (b *BusinessObject) CreatePropertyComparer(fullPropertyName string) (query.PropertyComparer, error) {
	return b.classDef.CreatePropertyComparer(fullPropertyName)
}

// PropertyValue implements query.Sortable. The value is read from the object
// reached by following single relationships along the first-join chain of
// source; a root source named after this object's class is skipped. A missing
// related object gives a nil value.
func (b *BusinessObject) PropertyValue(source *query.Source, propertyName string) (interface{}, error) {
	obj := b
	node := source
	if node != nil && !b.classDef.Relationships.Contains(node.Name) &&
		strings.EqualFold(node.Name, b.classDef.ClassNameExcludingNamespace()) {
		node = node.ChildSource()
	}
	for node != nil {
		related, err := obj.GetRelatedObject(node.Name)
		if err != nil {
			return nil, err
		}
		if related == nil {
			return nil, nil
		}
		obj = related
		node = node.ChildSource()
	}
	return obj.GetPropertyValue(propertyName)
}
