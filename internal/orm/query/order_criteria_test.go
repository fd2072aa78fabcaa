package query

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
)

// fakeObject is a Sortable backed by a map keyed on full property name
type fakeObject struct {
	name     string
	values   map[string]interface{}
	comparer *int
}

func (o *fakeObject) CreatePropertyComparer(fullPropertyName string) (PropertyComparer, error) {
	if o.comparer != nil {
		*o.comparer++
	}
	if strings.HasSuffix(fullPropertyName, "Missing") {
		return nil, ormerrors.NewInvalidPropertyName("property %s does not exist", fullPropertyName)
	}
	return &fakeComparer{}, nil
}

func (o *fakeObject) PropertyValue(source *Source, propertyName string) (interface{}, error) {
	key := propertyName
	if source != nil {
		key = source.String() + "." + propertyName
	}
	return o.values[key], nil
}

type fakeComparer struct {
	propertyName string
	source       *Source
}

func (c *fakeComparer) PropertyName() string       { return c.propertyName }
func (c *fakeComparer) SetPropertyName(name string) { c.propertyName = name }
func (c *fakeComparer) Source() *Source             { return c.source }
func (c *fakeComparer) SetSource(source *Source)    { c.source = source }

func (c *fakeComparer) Compare(x, y Sortable) (int, error) {
	vx, err := x.PropertyValue(c.source, c.propertyName)
	if err != nil {
		return 0, err
	}
	vy, err := y.PropertyValue(c.source, c.propertyName)
	if err != nil {
		return 0, err
	}
	switch a := vx.(type) {
	case int:
		b := vy.(int)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
		return 0, nil
	case string:
		return strings.Compare(a, vy.(string)), nil
	}
	return 0, fmt.Errorf("unsupported value %v", vx)
}

func person(name string, age int, surname string) *fakeObject {
	return &fakeObject{
		name:   name,
		values: map[string]interface{}{"Age": age, "Surname": surname},
	}
}

func TestOrderCriteriaFromString(t *testing.T) {
	t.Run("two fields", func(t *testing.T) {
		oc, err := OrderCriteriaFromString("Age ASC, Surname DESC")
		require.NoError(t, err)
		require.Equal(t, 2, oc.Count())

		fields := oc.Fields()
		assert.Equal(t, "Age", fields[0].PropertyName())
		assert.Equal(t, Ascending, fields[0].SortDirection())
		assert.Nil(t, fields[0].Source())
		assert.Equal(t, "Surname", fields[1].PropertyName())
		assert.Equal(t, Descending, fields[1].SortDirection())
	})

	t.Run("source path", func(t *testing.T) {
		oc, err := OrderCriteriaFromString("Manager.Department.Name desc")
		require.NoError(t, err)
		f := oc.Fields()[0]
		assert.Equal(t, "Name", f.PropertyName())
		require.NotNil(t, f.Source())
		assert.Equal(t, "Manager.Department", f.Source().String())
		assert.Equal(t, Descending, f.SortDirection())
		assert.Equal(t, "Manager.Department.Name", f.FullName())
	})

	t.Run("default direction", func(t *testing.T) {
		oc, err := OrderCriteriaFromString("Surname")
		require.NoError(t, err)
		assert.Equal(t, Ascending, oc.Fields()[0].SortDirection())
	})

	t.Run("empty input", func(t *testing.T) {
		for _, s := range []string{"", "   ", "\t"} {
			oc, err := OrderCriteriaFromString(s)
			require.NoError(t, err)
			assert.True(t, oc.IsEmpty())
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		_, err := OrderCriteriaFromString("Surname UP")
		require.Error(t, err)
		assert.True(t, ormerrors.IsInvalidArgument(err))
	})

	t.Run("too many tokens", func(t *testing.T) {
		_, err := OrderCriteriaFromString("Surname ASC extra")
		assert.True(t, ormerrors.IsInvalidArgument(err))
	})

	t.Run("empty segment", func(t *testing.T) {
		_, err := OrderCriteriaFromString("Surname,,Age")
		assert.True(t, ormerrors.IsInvalidArgument(err))
	})
}

func TestOrderCriteria_RoundTrip(t *testing.T) {
	tests := []*OrderCriteria{
		NewOrderCriteria(),
		NewOrderCriteria().Add("Surname"),
		NewOrderCriteria().Add("Surname").AddWithDirection("Age", Descending),
		NewOrderCriteria().AddWithDirection("Manager.Surname", Descending).Add("Manager.Department.Code"),
		NewOrderCriteria().AddField(NewOrderCriteriaField("Name", SourceFromString("A.B"), Ascending)),
	}

	for _, oc := range tests {
		t.Run(oc.String(), func(t *testing.T) {
			parsed, err := OrderCriteriaFromString(oc.String())
			require.NoError(t, err)
			assert.True(t, oc.Equals(parsed), "expected %q, got %q", oc.String(), parsed.String())
		})
	}
}

func TestOrderCriteria_String(t *testing.T) {
	oc := NewOrderCriteria().Add("Surname").AddWithDirection("Manager.Age", Descending)
	assert.Equal(t, "Surname ASC, Manager.Age DESC", oc.String())
}

func TestOrderCriteria_Equals(t *testing.T) {
	a := NewOrderCriteria().Add("Surname")
	assert.False(t, a.Equals(nil))
	assert.False(t, a.Equals(NewOrderCriteria().AddWithDirection("Surname", Descending)))
	assert.False(t, a.Equals(NewOrderCriteria().Add("Surname").Add("Age")))
	assert.True(t, a.Equals(NewOrderCriteria().Add("Surname")))
}

func TestOrderCriteria_Compare(t *testing.T) {
	t.Run("no fields", func(t *testing.T) {
		result, err := NewOrderCriteria().Compare(person("a", 1, "x"), person("b", 2, "y"))
		require.NoError(t, err)
		assert.Equal(t, 0, result)
	})

	t.Run("single field", func(t *testing.T) {
		oc := NewOrderCriteria().Add("Age")
		result, err := oc.Compare(person("a", 1, "x"), person("b", 2, "x"))
		require.NoError(t, err)
		assert.Equal(t, -1, result)
	})

	t.Run("descending negates", func(t *testing.T) {
		oc := NewOrderCriteria().AddWithDirection("Age", Descending)
		result, err := oc.Compare(person("a", 1, "x"), person("b", 2, "x"))
		require.NoError(t, err)
		assert.Equal(t, 1, result)
	})

	t.Run("last field decides when earlier fields tie", func(t *testing.T) {
		oc := NewOrderCriteria().Add("Age").Add("Surname")
		result, err := oc.Compare(person("a", 30, "Smith"), person("b", 30, "Jones"))
		require.NoError(t, err)
		assert.Equal(t, 1, result)

		oc = NewOrderCriteria().Add("Age").AddWithDirection("Surname", Descending)
		result, err = oc.Compare(person("a", 30, "Smith"), person("b", 30, "Jones"))
		require.NoError(t, err)
		assert.Equal(t, -1, result)
	})

	t.Run("first non-zero field wins", func(t *testing.T) {
		oc := NewOrderCriteria().Add("Age").Add("Surname")
		result, err := oc.Compare(person("a", 20, "Smith"), person("b", 30, "Jones"))
		require.NoError(t, err)
		assert.Equal(t, -1, result)
	})

	t.Run("related property", func(t *testing.T) {
		x := &fakeObject{values: map[string]interface{}{"Manager.Surname": "Adams"}}
		y := &fakeObject{values: map[string]interface{}{"Manager.Surname": "Brown"}}
		oc, err := OrderCriteriaFromString("Manager.Surname DESC")
		require.NoError(t, err)

		result, err := oc.Compare(x, y)
		require.NoError(t, err)
		assert.Equal(t, 1, result)
	})

	t.Run("comparer is bound once per field", func(t *testing.T) {
		created := 0
		x := person("a", 1, "x")
		y := person("b", 2, "y")
		x.comparer = &created

		oc := NewOrderCriteria().Add("Age")
		for i := 0; i < 5; i++ {
			_, err := oc.Compare(x, y)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, created)

		other := NewOrderCriteria().Add("Age")
		_, err := other.Compare(x, y)
		require.NoError(t, err)
		assert.Equal(t, 2, created, "comparers are not shared between fields")
	})

	t.Run("comparer creation error", func(t *testing.T) {
		oc := NewOrderCriteria().Add("Missing")
		_, err := oc.Compare(person("a", 1, "x"), person("b", 2, "y"))
		assert.True(t, ormerrors.IsInvalidPropertyName(err))
	})
}

func TestSort(t *testing.T) {
	items := []*fakeObject{
		person("c", 30, "Smith"),
		person("a", 25, "Jones"),
		person("d", 30, "Adams"),
		person("b", 25, "Jones"),
	}

	oc, err := OrderCriteriaFromString("Age DESC, Surname")
	require.NoError(t, err)
	require.NoError(t, Sort(oc, items))

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.name)
	}
	assert.Equal(t, []string{"d", "c", "a", "b"}, names)

	err = Sort(NewOrderCriteria().Add("Missing"), items)
	assert.True(t, ormerrors.IsInvalidPropertyName(err))
}

func TestFieldFromString(t *testing.T) {
	f, err := FieldFromString("Manager.Surname DESC")
	require.NoError(t, err)
	assert.Equal(t, Field{Name: "Surname", Source: "Manager", Direction: Descending}, f)
	assert.Equal(t, "Manager.Surname DESC", f.String())

	f, err = FieldFromString("Surname")
	require.NoError(t, err)
	assert.Equal(t, "", f.Source)
	assert.Equal(t, "Surname", f.FullName())

	_, err = FieldFromString("Surname sideways")
	assert.True(t, ormerrors.IsInvalidArgument(err))

	oc := NewOrderCriteria().Add("Surname").AddWithDirection("Manager.Age", Descending)
	assert.Equal(t, []Field{
		{Name: "Surname", Direction: Ascending},
		{Name: "Age", Source: "Manager", Direction: Descending},
	}, oc.LegacyFields())
}

func TestParseSortDirection(t *testing.T) {
	d, err := ParseSortDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, Descending, d)

	d, err = ParseSortDirection("Asc")
	require.NoError(t, err)
	assert.Equal(t, Ascending, d)

	_, err = ParseSortDirection("up")
	assert.Error(t, err)
}
