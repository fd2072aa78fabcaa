package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testAssembly = "MyApp"

func float(f float64) *float64 { return &f }

// newDepartmentClassDef: Department(DepartmentID auto int, Name)
func newDepartmentClassDef(t *testing.T) *ClassDef {
	t.Helper()

	cd := NewClassDef(testAssembly, "MyApp.Models.Department")
	cd.TableName = "department"

	id := NewPropDef("DepartmentID", TypeInt)
	id.DatabaseFieldName = "department_id"
	id.AutoIncrementing = true
	id.Compulsory = true
	require.NoError(t, cd.AddPropDef(id))

	name := NewPropDef("Name", TypeString)
	name.Compulsory = true
	name.Length = 30
	require.NoError(t, cd.AddPropDef(name))

	require.NoError(t, cd.SetPrimaryKey("DepartmentID"))
	return cd
}

// newContactClassDef: Contact(ContactID uuid, Surname, FirstName, Age,
// DateOfBirth, DepartmentID, ManagerID) with a Department relationship, a
// self referencing Manager relationship and a multiple Reports relationship
func newContactClassDef(t *testing.T) *ClassDef {
	t.Helper()

	cd := NewClassDef(testAssembly, "MyApp.Models.Contact")
	cd.TableName = "contact"

	id := NewPropDef("ContactID", TypeUUID)
	id.DatabaseFieldName = "contact_id"
	id.Compulsory = true
	require.NoError(t, cd.AddPropDef(id))

	surname := NewPropDef("Surname", TypeString)
	surname.Compulsory = true
	surname.Length = 50
	require.NoError(t, cd.AddPropDef(surname))

	require.NoError(t, cd.AddPropDef(NewPropDef("FirstName", TypeString)))

	age := NewPropDef("Age", TypeInt)
	age.AddRule(RangeRule{Min: float(0), Max: float(150)})
	require.NoError(t, cd.AddPropDef(age))

	require.NoError(t, cd.AddPropDef(NewPropDef("DateOfBirth", TypeDate)))
	require.NoError(t, cd.AddPropDef(NewPropDef("DepartmentID", TypeInt)))
	require.NoError(t, cd.AddPropDef(NewPropDef("ManagerID", TypeUUID)))

	require.NoError(t, cd.SetPrimaryKey("ContactID"))

	surnameDef, _ := cd.PropDefs.Get("Surname")
	firstNameDef, _ := cd.PropDefs.Get("FirstName")
	require.NoError(t, cd.AddKeyDef(NewKeyDef("FullName", surnameDef, firstNameDef)))

	require.NoError(t, cd.AddRelationship(NewRelationshipDef("Department", "MyApp.Models.Department",
		RelationshipSingle, RelPropDef{OwnerPropertyName: "DepartmentID", RelatedPropertyName: "DepartmentID"})))
	require.NoError(t, cd.AddRelationship(NewRelationshipDef("Manager", "MyApp.Models.Contact",
		RelationshipSingle, RelPropDef{OwnerPropertyName: "ManagerID", RelatedPropertyName: "ContactID"})))

	reports := NewRelationshipDef("Reports", "MyApp.Models.Contact",
		RelationshipMultiple, RelPropDef{OwnerPropertyName: "ContactID", RelatedPropertyName: "ManagerID"})
	reports.OrderBy = "Surname"
	require.NoError(t, cd.AddRelationship(reports))

	return cd
}

// newTestClassDefCol registers Contact and Department
func newTestClassDefCol(t *testing.T) *ClassDefCol {
	t.Helper()

	col := NewClassDefCol()
	require.NoError(t, col.Add(newContactClassDef(t)))
	require.NoError(t, col.Add(newDepartmentClassDef(t)))
	return col
}
