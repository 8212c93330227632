package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "SignatureError", SignatureErrorCode.String())
	assert.Equal(t, "ResolutionError", ResolutionErrorCode.String())
	assert.Equal(t, "ClassfileError", ClassfileErrorCode.String())
	assert.Equal(t, "UnknownError", ErrorCode(999).String())
}

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  SourceLocation
		want string
	}{
		{"empty", SourceLocation{}, "unknown location"},
		{"file only", SourceLocation{File: "Foo.class"}, "Foo.class"},
		{"jar entry", SourceLocation{File: "lib.jar", Entry: "com/x/Foo.class"}, "lib.jar!com/x/Foo.class"},
		{"offset", SourceLocation{File: "Foo.class", Offset: 42}, "Foo.class@42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.String())
		})
	}
}

func TestResolutionError_IsTypeNotFound(t *testing.T) {
	err := NewTypeNotFoundError("com.example.Missing")

	assert.True(t, stderrors.Is(err, ErrTypeNotFound))
	assert.True(t, IsTypeNotFound(fmt.Errorf("outer: %w", err)))
	assert.Equal(t, ResolutionErrorCode, err.ErrorCode())
	assert.Contains(t, err.Error(), "com.example.Missing")
	assert.NotEmpty(t, err.Suggestions())

	var resErr *ResolutionError
	require.True(t, stderrors.As(fmt.Errorf("wrapped: %w", err), &resErr))
	assert.Equal(t, "com.example.Missing", resErr.TypeName)
}

func TestWrapResolutionError_KeepsCause(t *testing.T) {
	cause := stderrors.New("static initializer failed")
	err := WrapResolutionError("com.example.Boom", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.False(t, IsTypeNotFound(err))
}

func TestSignatureError(t *testing.T) {
	err := NewSignatureError("(I", 2, "unexpected end of input")

	assert.Equal(t, SignatureErrorCode, err.ErrorCode())
	assert.Equal(t, 2, err.Position)
	assert.Contains(t, err.Error(), "offset 2")
}

func TestMultipleErrors(t *testing.T) {
	var multiple *MultipleErrors
	assert.NoError(t, multiple.ErrorOrNil())

	AddToMultiple(&multiple, NewClassfileError("magic", "bad magic 0xdeadbeef"))
	AddToMultiple(&multiple, NewTypeNotFoundError("a.B"))

	require.Equal(t, 2, multiple.Count())
	assert.True(t, multiple.HasCode(ClassfileErrorCode))
	assert.Len(t, multiple.GetByCode(ResolutionErrorCode), 1)
	assert.Contains(t, multiple.Error(), "multiple errors (2 total)")
	assert.True(t, stderrors.Is(multiple.ErrorOrNil(), ErrTypeNotFound))
}

func TestWrapFileSystemError(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapFileSystemError("read", "/tmp/Foo.class", cause)

	assert.Equal(t, FileSystemErrorCode, err.ErrorCode())
	assert.Equal(t, "/tmp/Foo.class", err.Location().File)
	assert.Equal(t, "read", err.Context()["operation"])
	assert.ErrorIs(t, err, cause)
}
