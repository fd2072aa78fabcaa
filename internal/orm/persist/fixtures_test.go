package persist

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/habanero-go/habanero/internal/orm/bo"
	"github.com/habanero-go/habanero/internal/orm/schema"
	"github.com/habanero-go/habanero/internal/orm/sqlgen"
)

const testClassDefs = `
assembly: MyApp
classes:
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
        orderBy: Age DESC
        relProps: [{owner: ContactID, related: ManagerID}]
  - name: Department
    table: department
    properties:
      - {name: DepartmentID, type: int, field: department_id, autoIncrement: true}
      - {name: Name, field: name, compulsory: true}
    primaryKey: {properties: [DepartmentID]}
`

const contactSelect = "SELECT Contact.contact_id, Contact.surname, Contact.age, Contact.department_id, Contact.manager_id FROM contact AS Contact"

var contactColumns = []string{"contact_id", "surname", "age", "department_id", "manager_id"}

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

// newMockStore returns a store backed by sqlmock with exact query matching
func newMockStore(t *testing.T, dialect sqlgen.Dialect, opts ...Option) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	return NewStore(db, dialect, opts...), mock
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

