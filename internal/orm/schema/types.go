// Package schema provides the class definitions of the Habanero ORM: property,
// key and relationship definitions, the class definition that owns them and
// the ClassDefCol registry that resolves class definitions by type.
//
// Schema objects are loaded once at start-up and shared by every business
// object of a class.
package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropType represents the value type of a property
type PropType int

const (
	// Text types
	TypeString PropType = iota
	TypeText

	// Numeric types
	TypeInt
	TypeBigInt
	TypeFloat
	TypeDecimal

	// Boolean
	TypeBool

	// Time types
	TypeTimestamp
	TypeDate

	// Unique identifiers
	TypeUUID
)

// String returns the string representation of the property type
func (p PropType) String() string {
	switch p {
	case TypeString:
		return "string"
	case TypeText:
		return "text"
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeFloat:
		return "float"
	case TypeDecimal:
		return "decimal"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	case TypeDate:
		return "date"
	case TypeUUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// ParsePropType converts a type name to a PropType. Common .NET style aliases
// such as "guid" and "datetime" are accepted.
func ParsePropType(s string) (PropType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string":
		return TypeString, nil
	case "text":
		return TypeText, nil
	case "int", "integer", "int32":
		return TypeInt, nil
	case "bigint", "int64", "long":
		return TypeBigInt, nil
	case "float", "double":
		return TypeFloat, nil
	case "decimal":
		return TypeDecimal, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "timestamp", "datetime":
		return TypeTimestamp, nil
	case "date":
		return TypeDate, nil
	case "uuid", "guid":
		return TypeUUID, nil
	default:
		return 0, fmt.Errorf("unknown property type: %s", s)
	}
}

// IsNumeric returns true if the type is a numeric type
func (p PropType) IsNumeric() bool {
	return p == TypeInt || p == TypeBigInt || p == TypeFloat || p == TypeDecimal
}

// IsText returns true if the type is a text type
func (p PropType) IsText() bool {
	return p == TypeString || p == TypeText
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Convert converts a raw value, as typed by a user or returned by a database
// driver, to the Go type of the property type. Empty strings convert to nil
// for every non-text type.
func (p PropType) Convert(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	if s, ok := value.(string); ok && !p.IsText() {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		value = s
	}

	switch p {
	case TypeString, TypeText:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return fmt.Sprint(value), nil

	case TypeInt:
		n, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d is out of range for int", n)
		}
		return int(n), nil

	case TypeBigInt:
		return toInt64(value)

	case TypeFloat, TypeDecimal:
		return toFloat64(value)

	case TypeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		}
		n, err := toInt64(value)
		if err != nil {
			return nil, err
		}
		return n != 0, nil

	case TypeTimestamp, TypeDate:
		t, err := toTime(value)
		if err != nil {
			return nil, err
		}
		if p == TypeDate {
			y, m, d := t.Date()
			t = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
		}
		return t, nil

	case TypeUUID:
		switch v := value.(type) {
		case uuid.UUID:
			return v, nil
		case string:
			return uuid.Parse(v)
		}
		return nil, fmt.Errorf("cannot convert %T to uuid", value)
	}

	return nil, fmt.Errorf("unsupported property type %s", p)
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float32:
		if float32(int64(v)) != v {
			return 0, fmt.Errorf("value %v is not a whole number", v)
		}
		return int64(v), nil
	case float64:
		if float64(int64(v)) != v {
			return 0, fmt.Errorf("value %v is not a whole number", v)
		}
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to an integer", value)
}

func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	}
	n, err := toInt64(value)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to a number", value)
	}
	return float64(n), nil
}

func toTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		if strings.EqualFold(v, "now") {
			return time.Now(), nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as a time", v)
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to a time", value)
}
