package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/habanero-go/habanero/internal/orm/bo"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

const testClassDefs = `
assembly: MyApp
classes:
  - name: Department
    table: department
    properties:
      - {name: DepartmentID, type: int, field: department_id, autoIncrement: true}
      - {name: Name, field: name, compulsory: true}
    primaryKey: {properties: [DepartmentID]}
  - name: Contact
    table: contact
    properties:
      - {name: ContactID, type: uuid, field: contact_id, compulsory: true}
      - {name: Surname, field: surname, compulsory: true}
      - {name: Age, type: int, field: age}
      - {name: DepartmentID, type: int, field: department_id}
      - {name: ManagerID, type: uuid, field: manager_id}
    primaryKey: {properties: [ContactID]}
    relationships:
      - name: Department
        relatedClass: Department
        relProps: [{owner: DepartmentID, related: DepartmentID}]
      - name: Manager
        relatedClass: Contact
        relProps: [{owner: ManagerID, related: ContactID}]
      - name: Reports
        relatedClass: Contact
        type: multiple
        relProps: [{owner: ContactID, related: ManagerID}]
`

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

func newObject(t *testing.T, cd *schema.ClassDef, values map[string]interface{}) *bo.BusinessObject {
	t.Helper()

	obj, err := bo.New(cd)
	require.NoError(t, err)
	for name, value := range values {
		require.NoError(t, obj.SetPropertyValue(name, value))
	}
	return obj
}

func loadedObject(t *testing.T, cd *schema.ClassDef, values map[string]interface{}) *bo.BusinessObject {
	t.Helper()

	obj, err := bo.New(cd)
	require.NoError(t, err)
	require.NoError(t, obj.InitialiseFromLoad(values))
	return obj
}
