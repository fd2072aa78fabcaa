package commands

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/habanero-go/habanero/internal/cli/config"
	"github.com/habanero-go/habanero/internal/orm/persist"
	"github.com/habanero-go/habanero/internal/orm/sqlgen"
)

const (
	contactSelect = "SELECT Contact.contact_id, Contact.surname, Contact.age, Contact.department_id, Contact.manager_id FROM contact AS Contact"
	smithID       = "5a6c2a0e-8f59-4a39-bb0e-2b6d0f1e4c11"
	jonesID       = "0b0e4d7c-3c1b-4a51-9d7e-62f1d3a8e0f2"
)

var contactColumns = []string{"contact_id", "surname", "age", "department_id", "manager_id"}

// useMockStore makes the commands open a sqlmock database with SQLite syntax
func useMockStore(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	saved := openStore
	openStore = func(config.DatabaseConfig, *zap.Logger) (*persist.Store, error) {
		return persist.NewStore(db, sqlgen.SQLite), nil
	}
	t.Cleanup(func() { openStore = saved })
	return mock
}

func TestListCommand(t *testing.T) {
	mock := useMockStore(t)
	mock.ExpectQuery(contactSelect + " WHERE Contact.age = ? ORDER BY Contact.surname ASC").
		WithArgs(30).
		WillReturnRows(sqlmock.NewRows(contactColumns).
			AddRow(jonesID, "Jones", int64(30), nil, smithID).
			AddRow(smithID, "Smith", int64(30), int64(7), nil))
	mock.ExpectClose()

	out, _, err := executeCommand(t, "list", "Contact",
		"--config", testConfig, "--no-color",
		"--order", "Surname",
		"--where", "Age=30")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Contains(t, out, "ContactID")
	assert.Contains(t, out, "ManagerID")
	assert.Contains(t, out, jonesID+"  Jones")
	assert.Contains(t, out, smithID+"  Smith")
	assert.Contains(t, out, "\n2 Contact objects\n")
}

func TestListCommand_QueryError(t *testing.T) {
	mock := useMockStore(t)
	mock.ExpectQuery(contactSelect).WillReturnError(assert.AnError)
	mock.ExpectClose()

	_, _, err := executeCommand(t, "list", "Contact", "--config", testConfig)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}
