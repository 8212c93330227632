package report

import (
	"go.uber.org/zap"

	"github.com/toyz/classinfo/internal/classfile"
	"github.com/toyz/classinfo/internal/models"
)

// ParameterReport describes one parameter. Absent tables leave the
// corresponding Has flag false.
type ParameterReport struct {
	Index          int      `json:"index"`
	Type           string   `json:"type"`
	Name           string   `json:"name,omitempty"`
	HasName        bool     `json:"has_name"`
	Modifiers      string   `json:"modifiers,omitempty"`
	HasModifiers   bool     `json:"has_modifiers"`
	Annotations    []string `json:"annotations,omitempty"`
	HasAnnotations bool     `json:"has_annotations"`
}

// MethodReport is the JSON form of a method
type MethodReport struct {
	Class          string            `json:"class"`
	Method         string            `json:"method"`
	Descriptor     string            `json:"descriptor"`
	Signature      string            `json:"signature,omitempty"`
	Modifiers      string            `json:"modifiers"`
	Annotations    []string          `json:"annotations"`
	TypeParameters []string          `json:"type_parameters,omitempty"`
	Result         string            `json:"result,omitempty"`
	Parameters     []ParameterReport `json:"parameters"`
	Throws         []string          `json:"throws,omitempty"`
	Declaration    string            `json:"declaration"`
	Hash           uint64            `json:"hash"`
	Error          string            `json:"error,omitempty"`
}

// NewMethodReport builds the report for m. A signature that cannot be parsed
// is reported in Error and leaves the type fields empty.
func NewMethodReport(m *models.MethodInfo, logger *zap.Logger) MethodReport {
	r := MethodReport{
		Class:       m.ClassName(),
		Method:      m.MethodName(),
		Descriptor:  m.TypeDescriptorStr(),
		Modifiers:   m.ModifiersStr(),
		Annotations: m.AnnotationNames(),
		Parameters:  []ParameterReport{},
		Declaration: m.String(),
		Hash:        m.Hash(),
	}
	if sig, ok := m.TypeSignatureStr(); ok {
		r.Signature = sig
	}

	params, err := m.Parameters()
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.TypeParameters, _ = m.TypeParameterStrs()
	r.Result, _ = m.ResultTypeStr()
	r.Throws, _ = m.ThrowsTypeStrs()

	for _, p := range params {
		pr := ParameterReport{
			Index:          p.Index,
			Type:           p.Type.String(),
			Name:           p.Name,
			HasName:        p.HasName,
			HasModifiers:   p.HasModifiers,
			HasAnnotations: p.HasAnnotations,
		}
		if p.HasModifiers {
			pr.Modifiers = p.Modifiers.ParameterString()
		}
		if p.HasAnnotations {
			pr.Annotations = models.UniqueAnnotationNamesSorted(p.Annotations)
		}
		r.Parameters = append(r.Parameters, pr)
	}
	logMisaligned(logger, m, len(params))
	return r
}

// logMisaligned notes parameter tables that are absent or were ignored
// because their length did not match the parameter count
func logMisaligned(logger *zap.Logger, m *models.MethodInfo, n int) {
	_, namesOK := m.ParameterNames()
	_, modsOK := m.ParameterModifiers()
	_, annosOK := m.ParameterAnnotationInfo()
	if namesOK && modsOK && annosOK {
		return
	}
	logger.Debug("parameter tables unavailable",
		zap.String("class", m.ClassName()),
		zap.String("method", m.MethodName()),
		zap.Int("parameters", n),
		zap.Bool("names", namesOK),
		zap.Bool("modifiers", modsOK),
		zap.Bool("annotations", annosOK))
}

// NewMethodReports reports every method in order
func NewMethodReports(methods []*models.MethodInfo, logger *zap.Logger) []MethodReport {
	reports := make([]MethodReport, len(methods))
	for i, m := range methods {
		reports[i] = NewMethodReport(m, logger)
	}
	return reports
}

// ClassReport summarizes one scanned class
type ClassReport struct {
	Name           string   `json:"name"`
	Kind           string   `json:"kind"`
	Super          string   `json:"super,omitempty"`
	Interfaces     []string `json:"interfaces"`
	TypeParameters []string `json:"type_parameters,omitempty"`
	Methods        int      `json:"methods"`
}

// NewClassReport builds the report for a parsed class with methods methods
func NewClassReport(cf *classfile.ClassFile, methods int) ClassReport {
	r := ClassReport{
		Name:       cf.ClassName,
		Kind:       cf.ClassKind().String(),
		Super:      cf.SuperClass,
		Interfaces: append([]string{}, cf.Interfaces...),
		Methods:    methods,
	}
	for _, p := range cf.Definition().TypeParameters {
		r.TypeParameters = append(r.TypeParameters, p.String())
	}
	return r
}
