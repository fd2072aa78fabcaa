package bo

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
	"github.com/habanero-go/habanero/internal/orm/schema"
)

func TestPropCol_Add(t *testing.T) {
	col := NewPropCol()
	require.NoError(t, col.Add(newTestProp(t, "Surname", schema.TypeString)))

	for _, name := range []string{"Surname", "SURNAME", "surname"} {
		err := col.Add(newTestProp(t, name, schema.TypeString))
		require.Error(t, err, name)
		assert.True(t, ormerrors.IsInvalidProperty(err), name)
	}
	assert.True(t, ormerrors.IsArgument(col.Add(nil)))
	assert.Equal(t, 1, col.Count())
}

func TestPropCol_Get(t *testing.T) {
	col := NewPropCol()
	surname := newTestProp(t, "Surname", schema.TypeString)
	require.NoError(t, col.Add(surname))

	got, err := col.Get("sUrNaMe")
	require.NoError(t, err)
	assert.Same(t, surname, got)

	got, err = col.Get("Age")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, ormerrors.IsInvalidPropertyName(err))
	assert.Contains(t, err.Error(), "'Age'")

	assert.True(t, col.Contains("SURNAME"))
	assert.False(t, col.Contains("Age"))
}

func TestPropCol_Remove(t *testing.T) {
	col := NewPropCol()
	require.NoError(t, col.Add(newTestProp(t, "A", schema.TypeString)))
	require.NoError(t, col.Add(newTestProp(t, "B", schema.TypeString)))

	assert.True(t, col.Remove("a"))
	assert.False(t, col.Remove("a"))
	assert.Equal(t, 1, col.Count())
	assert.Equal(t, "B", col.Props()[0].Name())

	require.NoError(t, col.Add(newTestProp(t, "A", schema.TypeString)), "a removed name can be added again")
}

func TestPropCol_SortedValues(t *testing.T) {
	col := NewPropCol()
	for _, name := range []string{"surname", "Age", "firstName", "Code"} {
		require.NoError(t, col.Add(newTestProp(t, name, schema.TypeString)))
	}

	var sorted, inserted []string
	for _, p := range col.SortedValues() {
		sorted = append(sorted, p.Name())
	}
	for _, p := range col.Props() {
		inserted = append(inserted, p.Name())
	}
	assert.Equal(t, []string{"Age", "Code", "firstName", "surname"}, sorted)
	assert.Equal(t, []string{"surname", "Age", "firstName", "Code"}, inserted)
}

func TestPropCol_DirtyXMLEmpty(t *testing.T) {
	assert.Equal(t, "<Properties></Properties>", NewPropCol().DirtyXML())

	col := NewPropCol()
	prop := newTestProp(t, "Surname", schema.TypeString)
	prop.InitialiseProp("Smith")
	require.NoError(t, col.Add(prop))
	assert.Equal(t, "<Properties></Properties>", col.DirtyXML())
}

// dirtyPropCol builds the same dirty collection with props added in order
func dirtyPropCol(t *testing.T, order []string) *PropCol {
	t.Helper()

	values := map[string][2]interface{}{
		"Surname":   {"Smith", "O'Brien & Sons"},
		"age":       {nil, 42},
		"FirstName": {"Ann", "Ann"},
		"Code":      {nil, "<b>"},
	}
	types := map[string]schema.PropType{"age": schema.TypeInt}

	col := NewPropCol()
	for _, name := range order {
		prop := newTestProp(t, name, types[name])
		prop.InitialiseProp(values[name][0])
		require.NoError(t, prop.SetValue(values[name][1]))
		require.NoError(t, col.Add(prop))
	}
	return col
}

func TestPropCol_DirtyXML(t *testing.T) {
	first := dirtyPropCol(t, []string{"Surname", "age", "FirstName", "Code"})
	second := dirtyPropCol(t, []string{"Code", "FirstName", "age", "Surname"})

	assert.Equal(t, first.DirtyXML(), second.DirtyXML(), "output does not depend on insertion order")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "dirty_xml", []byte(first.DirtyXML()))
}

func TestPropCol_IsValid(t *testing.T) {
	col := NewPropCol()
	for _, name := range []string{"Surname", "FirstName", "Code"} {
		def := schema.NewPropDef(name, schema.TypeString)
		def.Compulsory = name != "Code"
		prop, err := NewProp(def)
		require.NoError(t, err)
		require.NoError(t, col.Add(prop))
	}

	ok, reason := col.IsValid()
	assert.False(t, ok)
	assert.Equal(t,
		"'Surname' is a compulsory field and has no value.\n'FirstName' is a compulsory field and has no value.",
		reason)

	surname, err := col.Get("Surname")
	require.NoError(t, err)
	require.NoError(t, surname.SetValue("Smith"))
	firstName, err := col.Get("FirstName")
	require.NoError(t, err)
	require.NoError(t, firstName.SetValue("Ann"))

	ok, reason = col.IsValid()
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestPropCol_BackupRestore(t *testing.T) {
	col := dirtyPropCol(t, []string{"Surname", "age"})
	require.True(t, col.IsDirty())
	require.Len(t, col.DirtyProps(), 2)

	col.RestorePropertyValues()
	assert.False(t, col.IsDirty())
	assert.Equal(t, map[string]interface{}{"Surname": "Smith", "age": nil}, col.PropertyValues())

	col = dirtyPropCol(t, []string{"Surname", "age"})
	col.BackupPropertyValues()
	assert.False(t, col.IsDirty())
	assert.Empty(t, col.Changes())
	assert.Equal(t, map[string]interface{}{"Surname": "O'Brien & Sons", "age": 42}, col.PropertyValues())
}

func TestPropCol_Changes(t *testing.T) {
	col := dirtyPropCol(t, []string{"Surname", "FirstName", "age"})

	assert.Equal(t, []FieldChange{
		{Field: "age", OldValue: nil, NewValue: 42},
		{Field: "Surname", OldValue: "Smith", NewValue: "O'Brien & Sons"},
	}, col.Changes())
}

func TestPropCol_AutoIncrementing(t *testing.T) {
	col := NewPropCol()
	require.NoError(t, col.Add(newTestProp(t, "Name", schema.TypeString)))
	assert.False(t, col.HasAutoIncrementingField())
	assert.Nil(t, col.AutoIncrementingProp())

	def := schema.NewPropDef("ID", schema.TypeInt)
	def.AutoIncrementing = true
	id, err := NewProp(def)
	require.NoError(t, err)
	require.NoError(t, col.Add(id))

	assert.True(t, col.HasAutoIncrementingField())
	assert.Same(t, id, col.AutoIncrementingProp())
}

func TestNewPropColFor(t *testing.T) {
	contact, _ := loadTestClassDefs(t)

	col, err := NewPropColFor(contact.PropDefs)
	require.NoError(t, err)
	assert.Equal(t, contact.PropDefs.Count(), col.Count())
	assert.False(t, col.IsDirty())

	merged := NewPropCol()
	require.NoError(t, merged.AddAll(col))
	assert.True(t, ormerrors.IsInvalidProperty(merged.AddAll(col)))

	for _, p := range col.Props() {
		assert.True(t, p.IsObjectNew())
	}
	col.SetObjectNew(false)
	for _, p := range col.Props() {
		assert.False(t, p.IsObjectNew(), strings.ToLower(p.Name()))
	}
}
