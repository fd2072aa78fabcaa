package schema

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePropType(t *testing.T) {
	tests := []struct {
		input string
		want  PropType
	}{
		{"string", TypeString},
		{"Text", TypeText},
		{"integer", TypeInt},
		{"long", TypeBigInt},
		{"double", TypeFloat},
		{"decimal", TypeDecimal},
		{"Boolean", TypeBool},
		{"DateTime", TypeTimestamp},
		{"date", TypeDate},
		{"Guid", TypeUUID},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePropType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePropType("money")
	assert.Error(t, err)
}

func TestPropType_Predicates(t *testing.T) {
	assert.True(t, TypeDecimal.IsNumeric())
	assert.False(t, TypeString.IsNumeric())
	assert.True(t, TypeText.IsText())
	assert.False(t, TypeUUID.IsText())
	assert.Equal(t, "timestamp", TypeTimestamp.String())
}

func TestPropType_Convert(t *testing.T) {
	id := uuid.MustParse("6f1c2a34-6d3e-4a4e-9a63-2d1a3d7f0b11")

	tests := []struct {
		name     string
		propType PropType
		input    interface{}
		want     interface{}
	}{
		{"nil", TypeInt, nil, nil},
		{"int from string", TypeInt, "42", 42},
		{"int from int64", TypeInt, int64(5), 5},
		{"int from whole float", TypeInt, float64(7), 7},
		{"int from bytes", TypeInt, []byte("7"), 7},
		{"empty string is nil", TypeInt, "  ", nil},
		{"bigint", TypeBigInt, "9000000000", int64(9000000000)},
		{"float", TypeFloat, "1.5", 1.5},
		{"decimal from int", TypeDecimal, 3, float64(3)},
		{"string from int", TypeString, 5, "5"},
		{"empty string stays text", TypeString, "", ""},
		{"bool from string", TypeBool, "true", true},
		{"bool from zero", TypeBool, 0, false},
		{"uuid from string", TypeUUID, id.String(), id},
		{"uuid", TypeUUID, id, id},
		{"timestamp", TypeTimestamp, "2024-03-05 10:11:12",
			time.Date(2024, 3, 5, 10, 11, 12, 0, time.UTC)},
		{"date truncates time", TypeDate, "2024-03-05 10:11:12",
			time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.propType.Convert(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPropType_ConvertErrors(t *testing.T) {
	tests := []struct {
		name     string
		propType PropType
		input    interface{}
	}{
		{"int out of range", TypeInt, int64(3000000000)},
		{"int from fraction", TypeInt, 1.5},
		{"int from text", TypeInt, "abc"},
		{"bool from text", TypeBool, "maybe"},
		{"bad uuid", TypeUUID, "not-a-uuid"},
		{"bad time", TypeTimestamp, "yesterday"},
		{"uuid from int", TypeUUID, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.propType.Convert(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestPropType_ConvertNow(t *testing.T) {
	before := time.Now()
	got, err := TypeTimestamp.Convert("NOW")
	require.NoError(t, err)
	assert.False(t, got.(time.Time).Before(before))
}
