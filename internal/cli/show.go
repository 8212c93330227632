package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toyz/classinfo/internal/models"
	"github.com/toyz/classinfo/internal/query"
	"github.com/toyz/classinfo/internal/scan"
)

// NewShowCommand creates the show command
func NewShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <query> [paths...]",
		Short: "Show the details of matching methods",
		Long: `Show the declaration, descriptor, generic signature and per-parameter
information of every method matching the query.

Queries name a class and a method, optionally with parameter types:
  com.example.Repository.find
  Repository.find(java.lang.Object, int[])
  com.example.Outer$Inner.<init>(String...)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, methods, err := app.find(cmd, args)
			if err != nil {
				return err
			}
			for i, m := range methods {
				if i > 0 {
					fmt.Fprintln(app.out)
				}
				showMethod(app.out, m)
			}
			return nil
		},
	}
}

// find scans and returns the methods matching the query in args[0]
func (a *App) find(cmd *cobra.Command, args []string) (*scan.Result, []*models.MethodInfo, error) {
	q, err := query.Parse(args[0])
	if err != nil {
		return nil, nil, err
	}
	res, err := a.scan(cmd.Context(), args[1:])
	if err != nil {
		return nil, nil, err
	}
	methods := res.Find(q)
	if len(methods) == 0 {
		return nil, nil, fmt.Errorf("no method matches %s", q)
	}
	a.diag.Verbose("%d method(s) match %s", len(methods), q)
	return res, methods, nil
}

func showMethod(w io.Writer, m *models.MethodInfo) {
	fmt.Fprintln(w, m.String())
	fmt.Fprintf(w, "  class:      %s\n", m.ClassName())
	fmt.Fprintf(w, "  descriptor: %s\n", m.TypeDescriptorStr())
	if sig, ok := m.TypeSignatureStr(); ok {
		fmt.Fprintf(w, "  signature:  %s\n", sig)
	}
	if mods := m.ModifiersStr(); mods != "" {
		fmt.Fprintf(w, "  modifiers:  %s\n", mods)
	}
	if names := m.AnnotationNames(); len(names) > 0 {
		fmt.Fprintf(w, "  annotations: %s\n", strings.Join(names, ", "))
	}

	params, err := m.Parameters()
	if err != nil {
		fmt.Fprintf(w, "  error:      %v\n", err)
		return
	}
	if tps, _ := m.TypeParameterStrs(); len(tps) > 0 {
		fmt.Fprintf(w, "  type parameters: %s\n", strings.Join(tps, ", "))
	}
	result, _ := m.ResultTypeStr()
	fmt.Fprintf(w, "  result:     %s\n", result)
	for _, p := range params {
		fmt.Fprintf(w, "  param %d:    %s\n", p.Index, describeParameter(p))
	}
	if throws, _ := m.ThrowsTypeStrs(); len(throws) > 0 {
		fmt.Fprintf(w, "  throws:     %s\n", strings.Join(throws, ", "))
	}
}

func describeParameter(p models.ParameterInfo) string {
	parts := []string{p.Type.String()}
	switch {
	case !p.HasName:
		parts = append(parts, "(names unavailable)")
	case p.Name == "":
		parts = append(parts, "(unnamed)")
	default:
		parts = append(parts, p.Name)
	}
	if p.HasModifiers && p.Modifiers != 0 {
		parts = append(parts, "["+p.Modifiers.ParameterString()+"]")
	}
	if p.HasAnnotations && len(p.Annotations) > 0 {
		parts = append(parts, "@"+strings.Join(models.UniqueAnnotationNamesSorted(p.Annotations), " @"))
	}
	return strings.Join(parts, " ")
}
