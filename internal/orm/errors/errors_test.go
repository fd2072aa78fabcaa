package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := NewDeveloper("class def not found", "check the assembly name")

	assert.True(t, stderrors.Is(err, ErrDeveloper))
	assert.False(t, stderrors.Is(err, ErrArgument))

	wrapped := fmt.Errorf("loading: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrDeveloper))
	assert.True(t, IsDeveloper(wrapped))
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "user and developer message",
			err:  NewDeveloper("not found", "assembly mismatch"),
			want: "not found: assembly mismatch",
		},
		{
			name: "argument",
			err:  NewArgument("col", "cannot be nil"),
			want: "argument col: cannot be nil",
		},
		{
			name: "formatted",
			err:  NewInvalidProperty("property %s already exists", "Name"),
			want: "property Name already exists",
		},
		{
			name: "kind only",
			err:  &Error{Kind: KindInvalidArgument},
			want: "invalid_argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidPropertyName, KindOf(NewInvalidPropertyName("x")))
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.True(t, IsInvalidXMLDefinition(fmt.Errorf("wrap: %w", NewInvalidXMLDefinition("dup"))))
	assert.True(t, IsInvalidArgument(NewInvalidArgument("bad")))
	assert.True(t, IsArgument(NewArgument("p", "nil")))
	assert.True(t, IsInvalidProperty(NewInvalidProperty("dup")))
}
