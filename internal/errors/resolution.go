package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrTypeNotFound is wrapped by every ResolutionError caused by a type name
// that is not present in the resolution context
var ErrTypeNotFound = stderrors.New("type not found")

// ResolutionError reports a named type that could not be turned into a type handle
type ResolutionError struct {
	*BaseError
	TypeName string // the type that failed to resolve
}

// NewTypeNotFoundError creates a resolution error for a missing type
func NewTypeNotFoundError(typeName string) *ResolutionError {
	err := &ResolutionError{
		BaseError: Wrap(ResolutionErrorCode, fmt.Sprintf("cannot resolve type '%s'", typeName), ErrTypeNotFound),
		TypeName:  typeName,
	}
	err.WithSuggestion("Check that the class is on the classpath used for the scan")
	return err
}

// WrapResolutionError wraps a failure raised while loading or initializing typeName
func WrapResolutionError(typeName string, cause error) *ResolutionError {
	return &ResolutionError{
		BaseError: Wrap(ResolutionErrorCode, fmt.Sprintf("cannot resolve type '%s'", typeName), cause),
		TypeName:  typeName,
	}
}

// IsTypeNotFound reports whether err was caused by a missing type
func IsTypeNotFound(err error) bool {
	return stderrors.Is(err, ErrTypeNotFound)
}
