package cli

import (
	"github.com/spf13/cobra"

	"mbkm-console/internal/format"
)

func newPeriodCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "period",
		Short: "Show the academic period the console filters by default",
		Long:  "Resolves the active period from the current setting, then the registrant filter options, then a built-in fallback.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			res := app.resolver(c).Resolve(cmd.Context())
			return writeOut(cmd, app, envelope{
				Data: res.Period,
				Meta: map[string]any{"source": res.Source},
				table: &format.Table{
					Headers: []string{"Academic Year", "Semester", "Source"},
					Rows:    [][]string{{res.Period.AcademicYear, string(res.Period.Semester), string(res.Source)}},
				},
			})
		},
	}
}
