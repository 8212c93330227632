// Package report serves scan results as JSON over one of several HTTP
// frameworks.
package report

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/classinfo/internal/errors"
)

// RequestContext is the framework-agnostic view of a request handlers need
type RequestContext interface {
	Method() string
	Path() string
	Param(key string) string
	QueryParam(key string) string
	JSON(code int, body interface{}) error
}

// HandlerFunc handles one request
type HandlerFunc func(RequestContext) error

// Server is implemented by each framework adapter
type Server interface {
	// RegisterRoute adds a route. Path parameters use the ":name" form.
	RegisterRoute(method, path string, handler HandlerFunc)
	Start(addr string) error
	Stop(ctx context.Context) error
	Name() string
	http.Handler
}

// Frameworks lists the names NewServer accepts
var Frameworks = []string{"gin", "echo", "fiber"}

// NewServer creates the adapter for a framework name
func NewServer(framework string, logger *zap.Logger) (Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(framework) {
	case "gin":
		return NewGinServer(logger), nil
	case "echo":
		return NewEchoServer(logger), nil
	case "fiber":
		return NewFiberServer(logger), nil
	default:
		return nil, errors.ConfigurationError("server.framework",
			fmt.Sprintf("unknown framework %q", framework)).
			WithSuggestion("Use one of: " + strings.Join(Frameworks, ", "))
	}
}

// HTTPError is an error with the status code it should be answered with
type HTTPError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates an HTTPError
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// errorResponse maps a handler error to a status and JSON body
func errorResponse(err error) (int, map[string]string) {
	if httpErr, ok := err.(*HTTPError); ok {
		return httpErr.StatusCode, map[string]string{"error": httpErr.Message}
	}
	return http.StatusInternalServerError, map[string]string{"error": err.Error()}
}

func logRequest(logger *zap.Logger, framework string, rc RequestContext, status int) {
	logger.Debug("served request",
		zap.String("framework", framework),
		zap.String("method", rc.Method()),
		zap.String("path", rc.Path()),
		zap.Int("status", status))
}
