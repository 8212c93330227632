package errors

import "fmt"

// SignatureError reports a descriptor or generic signature that could not be parsed
type SignatureError struct {
	*BaseError
	Input    string // the text being parsed
	Position int    // offset into Input where parsing stopped
}

// NewSignatureError creates a signature error at the given offset of input
func NewSignatureError(input string, position int, message string) *SignatureError {
	return &SignatureError{
		BaseError: New(SignatureErrorCode, fmt.Sprintf("invalid type signature %q at offset %d: %s", input, position, message)),
		Input:     input,
		Position:  position,
	}
}

// WithContext adds context data to the error
func (e *SignatureError) WithContext(key string, value interface{}) *SignatureError {
	e.BaseError.WithContext(key, value)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *SignatureError) WithSuggestion(suggestion string) *SignatureError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// QueryError reports a method query that does not match the query grammar
type QueryError struct {
	*BaseError
	Query string // the query text
}

// NewQueryError wraps a grammar failure for query
func NewQueryError(query string, cause error) *QueryError {
	err := &QueryError{
		BaseError: Wrap(QuerySyntaxErrorCode, fmt.Sprintf("invalid method query %q", query), cause),
		Query:     query,
	}
	err.WithSuggestion("Use the form pkg.Class.method(type, type[]) or pkg.Class.<init>(...)")
	return err
}
