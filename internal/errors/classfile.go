package errors

import "fmt"

// ClassfileError reports malformed class file bytes
type ClassfileError struct {
	*BaseError
	Structure string // the class file structure being read, e.g. "constant pool"
}

// NewClassfileError creates a class file error while reading structure
func NewClassfileError(structure, message string) *ClassfileError {
	return &ClassfileError{
		BaseError: New(ClassfileErrorCode, fmt.Sprintf("malformed class file (%s): %s", structure, message)),
		Structure: structure,
	}
}

// WrapClassfileError wraps an I/O failure while reading structure
func WrapClassfileError(structure string, cause error) *ClassfileError {
	return &ClassfileError{
		BaseError: Wrap(ClassfileErrorCode, fmt.Sprintf("malformed class file (%s)", structure), cause),
		Structure: structure,
	}
}

// WithLocation adds location information to the error
func (e *ClassfileError) WithLocation(loc SourceLocation) *ClassfileError {
	e.BaseError.WithLocation(loc)
	return e
}
