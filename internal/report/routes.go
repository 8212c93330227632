package report

import (
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/query"
	"github.com/toyz/classinfo/internal/scan"
)

// ScanSummary is the body of GET /scan
type ScanSummary struct {
	ID      string   `json:"id"`
	Files   int      `json:"files"`
	Classes int      `json:"classes"`
	Methods int      `json:"methods"`
	Errors  []string `json:"errors"`
}

// Register adds the report routes for res to server:
//
//	GET /scan                     scan summary
//	GET /methods?q=<query>        every method, or those matching the query
//	GET /classes                  every class
//	GET /classes/:class/methods   methods of one class
func Register(server Server, res *scan.Result, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{res: res, logger: logger}
	server.RegisterRoute(http.MethodGet, "/scan", h.summary)
	server.RegisterRoute(http.MethodGet, "/methods", h.methods)
	server.RegisterRoute(http.MethodGet, "/classes", h.classes)
	server.RegisterRoute(http.MethodGet, "/classes/:class/methods", h.classMethods)
}

type handlers struct {
	res    *scan.Result
	logger *zap.Logger
}

func (h *handlers) summary(rc RequestContext) error {
	s := ScanSummary{
		ID:      h.res.ID.String(),
		Files:   h.res.Files(),
		Classes: len(h.res.Classes()),
		Methods: len(h.res.Methods()),
		Errors:  []string{},
	}
	var multi *errors.MultipleErrors
	if stderrors.As(h.res.Errors(), &multi) {
		for _, e := range multi.Errors {
			s.Errors = append(s.Errors, e.Error())
		}
	}
	return rc.JSON(http.StatusOK, s)
}

func (h *handlers) methods(rc RequestContext) error {
	methods := h.res.Methods()
	if text := rc.QueryParam("q"); text != "" {
		q, err := query.Parse(text)
		if err != nil {
			return ErrBadRequest(err.Error())
		}
		methods = h.res.Find(q)
	}
	return rc.JSON(http.StatusOK, NewMethodReports(methods, h.logger))
}

func (h *handlers) classes(rc RequestContext) error {
	names := h.res.Classes()
	reports := make([]ClassReport, 0, len(names))
	for _, name := range names {
		cf, _ := h.res.Class(name)
		reports = append(reports, NewClassReport(cf, len(h.res.MethodsOf(name))))
	}
	return rc.JSON(http.StatusOK, reports)
}

func (h *handlers) classMethods(rc RequestContext) error {
	name := rc.Param("class")
	if _, ok := h.res.Class(name); !ok {
		return ErrNotFound("class " + name + " not found")
	}
	return rc.JSON(http.StatusOK, NewMethodReports(h.res.MethodsOf(name), h.logger))
}
