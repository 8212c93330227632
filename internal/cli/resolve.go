package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toyz/classinfo/internal/classloader"
	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/models"
)

// NewResolveCommand creates the resolve command
func NewResolveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <query> [paths...]",
		Short: "Resolve the result, parameter and exception types of matching methods",
		Long: `Instantiate the result, parameter and throws types of every method matching
the query through a classloader holding the scanned classes and the JDK
bootstrap classes. Type variables resolve to their erasure.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, methods, err := app.find(cmd, args)
			if err != nil {
				return err
			}

			var failures *errors.MultipleErrors
			for i, m := range methods {
				if i > 0 {
					fmt.Fprintln(app.out)
				}
				fmt.Fprintln(app.out, m.String())
				if err := resolveMethod(app.out, m, res.Loader()); err != nil {
					var ce errors.ClassinfoError
					if !stderrors.As(err, &ce) {
						return err
					}
					errors.AddToMultiple(&failures, ce)
					fmt.Fprintf(app.out, "  unresolved: %v\n", err)
				}
			}
			return failures.ErrorOrNil()
		},
	}
}

func resolveMethod(w io.Writer, m *models.MethodInfo, ctx classloader.Context) error {
	result, err := m.ResultType(ctx)
	if err != nil {
		return err
	}
	params, err := m.ParameterTypes(ctx)
	if err != nil {
		return err
	}
	throws, err := m.ThrowsTypes(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "  result: %s\n", describeHandle(result))
	for i, p := range params {
		fmt.Fprintf(w, "  param %d: %s\n", i, describeHandle(p))
	}
	if len(throws) > 0 {
		names := make([]string, len(throws))
		for i, t := range throws {
			names[i] = describeHandle(t)
		}
		fmt.Fprintf(w, "  throws: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func describeHandle(h *classloader.TypeHandle) string {
	return h.String() + " (" + h.Kind.String() + ")"
}
