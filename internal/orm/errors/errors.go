// Package errors defines the error taxonomy shared by the Habanero ORM packages.
//
// Errors fall into three groups: developer/configuration errors (a missing or
// duplicate class definition, a nil required argument, merging unrelated
// source trees), data-state errors raised by property collections, and parse
// errors raised by criteria parsers. None of them are transient.
package errors

import "fmt"

// Kind classifies an Error.
type Kind string

const (
	// KindDeveloper marks a misconfiguration that a developer must fix
	KindDeveloper Kind = "developer"
	// KindArgument marks a missing or nil required argument
	KindArgument Kind = "argument"
	// KindInvalidXMLDefinition marks an invalid or duplicate class definition
	KindInvalidXMLDefinition Kind = "invalid_xml_definition"
	// KindInvalidProperty marks an invalid operation on a property collection
	KindInvalidProperty Kind = "invalid_property"
	// KindInvalidPropertyName marks a lookup of a property that does not exist
	KindInvalidPropertyName Kind = "invalid_property_name"
	// KindInvalidArgument marks a malformed argument such as an unparsable sort direction
	KindInvalidArgument Kind = "invalid_argument"
)

// Error is the error type returned by the ORM packages.
type Error struct {
	Kind Kind
	// Message is safe to show to a user
	Message string
	// DeveloperMessage explains the likely cause to the developer
	DeveloperMessage string
	// Param names the offending argument for KindArgument errors
	Param string
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.DeveloperMessage != "" && e.DeveloperMessage != e.Message {
		return fmt.Sprintf("%s: %s", msg, e.DeveloperMessage)
	}
	return msg
}

// Is reports whether target is an *Error of the same kind. This lets the
// package sentinels be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrDeveloper            = &Error{Kind: KindDeveloper}
	ErrArgument             = &Error{Kind: KindArgument}
	ErrInvalidXMLDefinition = &Error{Kind: KindInvalidXMLDefinition}
	ErrInvalidProperty      = &Error{Kind: KindInvalidProperty}
	ErrInvalidPropertyName  = &Error{Kind: KindInvalidPropertyName}
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
)

// NewDeveloper creates a developer error with separate user and developer messages
func NewDeveloper(message, developerMessage string) *Error {
	return &Error{Kind: KindDeveloper, Message: message, DeveloperMessage: developerMessage}
}

// NewArgument creates an error for a nil or missing required argument
func NewArgument(param, message string) *Error {
	return &Error{
		Kind:    KindArgument,
		Param:   param,
		Message: fmt.Sprintf("argument %s: %s", param, message),
	}
}

// NewInvalidXMLDefinition creates an error for an invalid class definition
func NewInvalidXMLDefinition(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidXMLDefinition, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidProperty creates an error for an invalid property collection operation
func NewInvalidProperty(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidProperty, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidPropertyName creates an error for a missing property
func NewInvalidPropertyName(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidPropertyName, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidArgument creates a parse error
func NewInvalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" when err is not an *Error
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// IsDeveloper returns true if err is a developer error
func IsDeveloper(err error) bool {
	return KindOf(err) == KindDeveloper
}

// IsArgument returns true if err is an argument error
func IsArgument(err error) bool {
	return KindOf(err) == KindArgument
}

// IsInvalidXMLDefinition returns true if err is an invalid definition error
func IsInvalidXMLDefinition(err error) bool {
	return KindOf(err) == KindInvalidXMLDefinition
}

// IsInvalidProperty returns true if err is an invalid property error
func IsInvalidProperty(err error) bool {
	return KindOf(err) == KindInvalidProperty
}

// IsInvalidPropertyName returns true if err is an invalid property name error
func IsInvalidPropertyName(err error) bool {
	return KindOf(err) == KindInvalidPropertyName
}

// IsInvalidArgument returns true if err is a parse error
func IsInvalidArgument(err error) bool {
	return KindOf(err) == KindInvalidArgument
}
