package sqlgen

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
	"github.com/habanero-go/habanero/internal/orm/bo"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

// WhereProps builds an equality condition on properties of the root class,
// keyed by property name. Values are converted to the property type and nil
// values compare with IS NULL.
func WhereProps(cd *schema.ClassDef, values map[string]interface{}) (squirrel.Eq, error) {
	eq := squirrel.Eq{}
	alias := cd.Source().Name
	for name, value := range values {
		def, err := cd.GetPropDef(name)
		if err != nil {
			return nil, err
		}
		if err := validateIdentifiers(def.FieldName()); err != nil {
			return nil, err
		}
		converted, err := def.ConvertValue(value)
		if err != nil {
			return nil, err
		}
		eq[alias+"."+def.FieldName()] = converted
	}
	return eq, nil
}

// Insert builds the INSERT for a new object. An auto-incrementing property
// without a value is left to the database; dialects that support it return
// the generated value.
func (g *Generator) Insert(obj *bo.BusinessObject) (squirrel.InsertBuilder, error) {
	cd := obj.ClassDef()
	if err := validateIdentifiers(cd.TableName); err != nil {
		return squirrel.InsertBuilder{}, err
	}

	var columns []string
	var values []interface{}
	for _, prop := range obj.Props().Props() {
		if prop.Def().AutoIncrementing && prop.Value() == nil {
			continue
		}
		if err := validateIdentifiers(prop.FieldName()); err != nil {
			return squirrel.InsertBuilder{}, err
		}
		columns = append(columns, prop.FieldName())
		values = append(values, prop.Value())
	}

	ib := g.builder.Insert(cd.TableName).Columns(columns...).Values(values...)
	if auto := obj.Props().AutoIncrementingProp(); auto != nil && auto.Value() == nil && g.dialect.Returning {
		ib = ib.Suffix("RETURNING " + auto.FieldName())
	}
	return ib, nil
}

// Update builds the UPDATE of the dirty properties of a loaded object. The
// row is found by the primary key values last read from or written to the
// database.
func (g *Generator) Update(obj *bo.BusinessObject) (squirrel.UpdateBuilder, error) {
	cd := obj.ClassDef()
	where, err := primaryKeyCondition(obj)
	if err != nil {
		return squirrel.UpdateBuilder{}, err
	}

	dirty := obj.Props().DirtyProps()
	if len(dirty) == 0 {
		return squirrel.UpdateBuilder{}, ormerrors.NewDeveloper(
			"there is nothing to save",
			fmt.Sprintf("the %s object '%s' has no dirty properties", cd.ClassName, obj.ID()),
		)
	}

	ub := g.builder.Update(cd.TableName)
	for _, prop := range dirty {
		if err := validateIdentifiers(prop.FieldName()); err != nil {
			return squirrel.UpdateBuilder{}, err
		}
		ub = ub.Set(prop.FieldName(), prop.Value())
	}
	return ub.Where(where), nil
}

// Delete builds the DELETE of a loaded object by its primary key
func (g *Generator) Delete(obj *bo.BusinessObject) (squirrel.DeleteBuilder, error) {
	where, err := primaryKeyCondition(obj)
	if err != nil {
		return squirrel.DeleteBuilder{}, err
	}
	return g.builder.Delete(obj.ClassDef().TableName).Where(where), nil
}

func primaryKeyCondition(obj *bo.BusinessObject) (squirrel.Eq, error) {
	cd := obj.ClassDef()
	pk := obj.PrimaryKey()
	if pk == nil || pk.Count() == 0 {
		return nil, ormerrors.NewDeveloper(
			"the object cannot be saved",
			fmt.Sprintf("the class '%s' has no primary key", cd.ClassName),
		)
	}
	if err := validateIdentifiers(cd.TableName); err != nil {
		return nil, err
	}

	eq := squirrel.Eq{}
	for _, prop := range pk.Props() {
		if err := validateIdentifiers(prop.FieldName()); err != nil {
			return nil, err
		}
		eq[prop.FieldName()] = prop.PersistedValue()
	}
	return eq, nil
}
