package report

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/toyz/classinfo/internal/errors"
)

// FiberServer serves routes with fiber
type FiberServer struct {
	app     *fiber.App
	handler http.HandlerFunc
	logger  *zap.Logger
}

// NewFiberServer creates a fiber app with the startup message disabled
func NewFiberServer(logger *zap.Logger) *FiberServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status, body := errorResponse(err)
			if fiberErr, ok := err.(*fiber.Error); ok {
				status, body = fiberErr.Code, map[string]string{"error": fiberErr.Message}
			}
			return c.Status(status).JSON(body)
		},
	})
	return &FiberServer{app: app, handler: adaptor.FiberApp(app), logger: logger}
}

// RegisterRoute registers a route with fiber
func (fs *FiberServer) RegisterRoute(method, path string, handler HandlerFunc) {
	fs.app.Add(method, path, func(c *fiber.Ctx) error {
		rc := &fiberContext{ctx: c}
		if err := handler(rc); err != nil {
			status, body := errorResponse(err)
			if jsonErr := c.Status(status).JSON(body); jsonErr != nil {
				return jsonErr
			}
		}
		logRequest(fs.logger, fs.Name(), rc, c.Response().StatusCode())
		return nil
	})
}

// Start serves on addr until Stop is called
func (fs *FiberServer) Start(addr string) error {
	if err := fs.app.Listen(addr); err != nil {
		return errors.WrapServerError(fs.Name(), "listen on "+addr, err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (fs *FiberServer) Stop(ctx context.Context) error {
	return fs.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fs *FiberServer) Name() string {
	return "fiber"
}

// ServeHTTP bridges net/http requests into the fiber app
func (fs *FiberServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fs.handler(w, r)
}

type fiberContext struct {
	ctx *fiber.Ctx
}

func (c *fiberContext) Method() string { return c.ctx.Method() }
func (c *fiberContext) Path() string   { return c.ctx.Path() }

// Param unescapes the value; fiber leaves path parameters encoded
func (c *fiberContext) Param(key string) string {
	v := c.ctx.Params(key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func (c *fiberContext) QueryParam(key string) string { return c.ctx.Query(key) }

func (c *fiberContext) JSON(code int, body interface{}) error {
	return c.ctx.Status(code).JSON(body)
}
