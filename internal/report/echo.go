package report

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/toyz/classinfo/internal/errors"
)

// EchoServer serves routes with echo
type EchoServer struct {
	echo   *echo.Echo
	logger *zap.Logger
}

// NewEchoServer creates an echo server with the banner and port line hidden
func NewEchoServer(logger *zap.Logger) *EchoServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &EchoServer{echo: e, logger: logger}
}

// RegisterRoute registers a route with echo
func (es *EchoServer) RegisterRoute(method, path string, handler HandlerFunc) {
	es.echo.Add(method, path, func(c echo.Context) error {
		rc := &echoContext{ctx: c}
		if err := handler(rc); err != nil {
			status, body := errorResponse(err)
			if jsonErr := c.JSON(status, body); jsonErr != nil {
				return jsonErr
			}
		}
		logRequest(es.logger, es.Name(), rc, c.Response().Status)
		return nil
	})
}

// Start serves on addr until Stop is called
func (es *EchoServer) Start(addr string) error {
	if err := es.echo.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.WrapServerError(es.Name(), "listen on "+addr, err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (es *EchoServer) Stop(ctx context.Context) error {
	return es.echo.Shutdown(ctx)
}

// Name returns the adapter name
func (es *EchoServer) Name() string {
	return "echo"
}

func (es *EchoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	es.echo.ServeHTTP(w, r)
}

type echoContext struct {
	ctx echo.Context
}

func (c *echoContext) Method() string               { return c.ctx.Request().Method }
func (c *echoContext) Path() string                 { return c.ctx.Request().URL.Path }
func (c *echoContext) Param(key string) string      { return c.ctx.Param(key) }
func (c *echoContext) QueryParam(key string) string { return c.ctx.QueryParam(key) }

func (c *echoContext) JSON(code int, body interface{}) error {
	return c.ctx.JSON(code, body)
}
