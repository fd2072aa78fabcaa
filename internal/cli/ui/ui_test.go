package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "TypeId", "Table", "Props")
	table.AddRow("MyApp_Contact", "contact", "9")
	table.AddRow("MyApp_Department", "department")
	table.Render()

	assert.Equal(t, 2, table.Len())
	assert.Equal(t,
		"TypeId            Table       Props\n"+
			"────────────────  ──────────  ─────\n"+
			"MyApp_Contact     contact     9\n"+
			"MyApp_Department  department  \n",
		buf.String())
}

func TestTable_RenderCountsRunes(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "Name", "City")
	table.AddRow("Zoë", "Zürich")
	table.Render()

	assert.Equal(t, "Name  City\n────  ──────\nZoë   Zürich\n", buf.String())
}

func TestTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("ignored")
	table.Render()
	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Version", "1.0.0")
	kv.AddRow("Go version", "go1.24.4")
	kv.Render()

	assert.Equal(t, "Version:    1.0.0\nGo version: go1.24.4\n", buf.String())
}

func TestMessage_Format(t *testing.T) {
	msg := ClassNotFound("Cantact", []string{"Department", "Contact", "Contract"}, true)
	assert.Equal(t,
		"❌ CLASS NOT FOUND: Cantact\n"+
			"\n"+
			"   Did you mean: Contact, Contract?\n"+
			"\n"+
			"   → List classes: habanero classdefs\n",
		msg.Format())

	var buf bytes.Buffer
	Warning("order by is ignored", true).Write(&buf)
	assert.Equal(t, "⚠️ order by is ignored\n", buf.String())

	assert.Equal(t, "✓ saved", FormatSuccess("saved", true))
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"Contact", "Department", "Contract", "Company"}

	assert.Equal(t, []string{"Contact", "Contract"}, FindSimilar("contact", candidates, nil))
	assert.Equal(t, []string{"Department"}, FindSimilar("Departmnt", candidates, nil))
	assert.Empty(t, FindSimilar("Invoice", candidates, nil))
	assert.Empty(t, FindSimilar("CONTACT", candidates, &FuzzyMatchOptions{CaseSensitive: true}))
	assert.Equal(t, []string{"Contact"}, FindSimilar("Contact", candidates, &FuzzyMatchOptions{MaxSuggestions: 1}))
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Zoë", "Zoe", 1},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevenshteinDistance(tt.a, tt.b), "%s/%s", tt.a, tt.b)
	}
}
