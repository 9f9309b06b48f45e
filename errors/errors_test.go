package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "api error carries status and body",
			err:  NewAPI("getObject", 403, "<Error>denied</Error>").WithBucket("b").WithKey("k"),
			want: `cos.getObject b/k: status=403 body="<Error>denied</Error>"`,
		},
		{
			name: "wrapped cause",
			err:  New("putObject", KindTransport, errors.New("connection reset")).WithBucket("b"),
			want: "cos.putObject bucket b: transport: connection reset",
		},
		{
			name: "kind only",
			err:  &Error{Op: "listObjects", Kind: KindDecode},
			want: "cos.listObjects: decode error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New("getObject", KindTransport, cause)

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("outer: %w", err)
	var e *Error
	require.ErrorAs(t, wrapped, &e)
	assert.Equal(t, KindTransport, e.Kind)
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(New("op", KindProtocol, ErrUploadFinalized))
	require.True(t, ok)
	assert.Equal(t, KindProtocol, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsAPIStatus(t *testing.T) {
	err := NewAPI("getObject", 404, "not found")
	assert.True(t, IsAPIStatus(err, 404))
	assert.False(t, IsAPIStatus(err, 500))
	assert.False(t, IsAPIStatus(errors.New("plain"), 404))
}

func TestWithMessage(t *testing.T) {
	err := New("op", KindInput, ErrInvalidInput).WithMessage("bad part size")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "bad part size")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "api", KindAPI.String())
	assert.Equal(t, "decode", KindDecode.String())
	assert.Equal(t, "protocol", KindProtocol.String())
	assert.Equal(t, "input", KindInput.String())
}
