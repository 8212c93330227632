package report

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/toyz/classinfo/internal/errors"
)

// GinServer serves routes with gin
type GinServer struct {
	engine *gin.Engine
	server *http.Server
	logger *zap.Logger
}

// NewGinServer creates a gin server without gin's default logger middleware
func NewGinServer(logger *zap.Logger) *GinServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	return &GinServer{engine: engine, logger: logger}
}

// RegisterRoute registers a route with the gin engine
func (gs *GinServer) RegisterRoute(method, path string, handler HandlerFunc) {
	gs.engine.Handle(method, path, func(c *gin.Context) {
		rc := &ginContext{ctx: c}
		if err := handler(rc); err != nil {
			status, body := errorResponse(err)
			c.JSON(status, body)
		}
		logRequest(gs.logger, gs.Name(), rc, c.Writer.Status())
	})
}

// Start serves on addr until Stop is called
func (gs *GinServer) Start(addr string) error {
	gs.server = &http.Server{Addr: addr, Handler: gs.engine}
	if err := gs.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.WrapServerError(gs.Name(), "listen on "+addr, err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (gs *GinServer) Stop(ctx context.Context) error {
	if gs.server == nil {
		return nil
	}
	return gs.server.Shutdown(ctx)
}

// Name returns the adapter name
func (gs *GinServer) Name() string {
	return "gin"
}

func (gs *GinServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gs.engine.ServeHTTP(w, r)
}

type ginContext struct {
	ctx *gin.Context
}

func (c *ginContext) Method() string               { return c.ctx.Request.Method }
func (c *ginContext) Path() string                 { return c.ctx.Request.URL.Path }
func (c *ginContext) Param(key string) string      { return c.ctx.Param(key) }
func (c *ginContext) QueryParam(key string) string { return c.ctx.Query(key) }

func (c *ginContext) JSON(code int, body interface{}) error {
	c.ctx.JSON(code, body)
	return nil
}
