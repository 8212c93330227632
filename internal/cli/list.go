package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyz/classinfo/internal/errors"
	"github.com/toyz/classinfo/internal/models"
)

// NewListCommand creates the list command
func NewListCommand(app *App) *cobra.Command {
	var (
		className   string
		publicOnly  bool
		descriptors bool
	)

	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List every method on the classpath",
		Long: `List the methods declared by the classes found under the given paths,
or under the configured classpath when no path is given. Methods are printed
in class, name, descriptor order, one declaration per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.scan(cmd.Context(), args)
			if err != nil {
				return err
			}

			methods := res.Methods()
			if className != "" {
				if _, ok := res.Class(className); !ok {
					return errors.NewTypeNotFoundError(className)
				}
				methods = res.MethodsOf(className)
			}

			shown := 0
			for _, m := range methods {
				if publicOnly && !m.IsPublic() {
					continue
				}
				fmt.Fprintln(app.out, listLine(m, descriptors))
				shown++
			}

			app.diag.Summary("Listing complete", map[string]interface{}{
				"Classes": len(res.Classes()),
				"Methods": shown,
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&className, "class", "", "Only list methods of this class (binary name)")
	cmd.Flags().BoolVar(&publicOnly, "public", false, "Only list public methods")
	cmd.Flags().BoolVar(&descriptors, "descriptors", false, "Print Class.method descriptor instead of declarations")
	return cmd
}

func listLine(m *models.MethodInfo, descriptors bool) string {
	if descriptors {
		return m.ClassName() + "." + m.MethodName() + " " + m.TypeDescriptorStr()
	}
	return m.ClassName() + ": " + m.String()
}
