package bo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/habanero-go/habanero/internal/orm/schema"
)

const testClassDefs = `
assembly: MyApp
classes:
  - name: MyApp.Models.Department
    table: department
    properties:
      - {name: DepartmentID, type: int, field: department_id, compulsory: true, autoIncrement: true}
      - {name: Name, compulsory: true, length: 30}
    primaryKey: {properties: [DepartmentID]}
  - name: MyApp.Models.Contact
    table: contact
    properties:
      - {name: ContactID, type: uuid, field: contact_id, compulsory: true}
      - {name: Surname, compulsory: true, length: 50}
      - {name: FirstName}
      - {name: Age, type: int, rules: [{type: range, min: 0, max: 150}]}
      - {name: DepartmentID, type: int}
      - {name: ManagerID, type: uuid}
      - {name: Code, readWriteRule: WriteNew}
      - {name: Created, type: datetime, readWriteRule: ReadOnly}
    primaryKey: {properties: [ContactID]}
    keys:
      - {name: FullName, properties: [Surname, FirstName]}
    relationships:
      - name: Department
        relatedClass: MyApp.Models.Department
        relProps: [{owner: DepartmentID, related: DepartmentID}]
      - name: Manager
        relatedClass: MyApp.Models.Contact
        relProps: [{owner: ManagerID, related: ContactID}]
      - name: Reports
        relatedClass: MyApp.Models.Contact
        type: multiple
        orderBy: Age DESC
        relProps: [{owner: ContactID, related: ManagerID}]
`

// loadTestClassDefs returns the Contact and Department class definitions
func loadTestClassDefs(t *testing.T) (contact, department *schema.ClassDef) {
	t.Helper()

	col, err := schema.NewLoader(nil).Parse([]byte(testClassDefs))
	require.NoError(t, err)

	contact, err = col.GetByName("MyApp", "Contact")
	require.NoError(t, err)
	department, err = col.GetByName("MyApp", "Department")
	require.NoError(t, err)
	return contact, department
}

func newContact(t *testing.T, cd *schema.ClassDef, surname string, age int) *BusinessObject {
	t.Helper()

	obj, err := New(cd)
	require.NoError(t, err)
	require.NoError(t, obj.SetPropertyValue("Surname", surname))
	require.NoError(t, obj.SetPropertyValue("Age", age))
	return obj
}

func newTestProp(t *testing.T, name string, propType schema.PropType) *Prop {
	t.Helper()

	prop, err := NewProp(schema.NewPropDef(name, propType))
	require.NoError(t, err)
	return prop
}
