package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mbkm-console/internal/format"
	"mbkm-console/internal/listing"
	"mbkm-console/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	var f listFlags
	var dir string
	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Write every record matching the filters to a CSV file",
		Example: strings.TrimSpace(`
mbkm export registrants --status approved
mbkm export places --dir ./exports
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			r, err := lookupResource(c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := app.params(ctx, c, r, f)
			if err != nil {
				return writeErr(cmd, err)
			}

			opts := listing.ExportOptions{Resource: r.name(), Source: r.exportSource(), Logger: app.log}
			if db, err := app.openStore(ctx); err == nil {
				defer db.Close()
				opts.Recorder = db
			} else {
				app.log.Warn("export history unavailable", "error", err)
			}
			if dir == "" {
				dir = app.cfg.ExportPath()
			}
			path, rows, err := listing.NewExporter(opts).ExportToFile(ctx, p.Snapshot(), dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{
				Data: map[string]any{"path": path, "rows": rows, "resource": r.name()},
			})
		},
	}
	f.register(cmd, false)
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default MBKM_EXPORT_DIR or .)")
	return cmd
}

type exportHistory []store.ExportEntry

func newExportsCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List previously written export files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			entries, err := db.Exports(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			if entries == nil {
				entries = []store.ExportEntry{}
			}
			return writeOut(cmd, app, envelope{Data: entries, table: exportHistory(entries).table()})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries (0 = all)")
	return cmd
}

func (h exportHistory) table() *format.Table {
	t := &format.Table{Headers: []string{"When", "Resource", "Rows", "Path"}}
	for _, e := range h {
		t.Rows = append(t.Rows, []string{
			e.CreatedAt.Local().Format(time.DateTime), e.Resource, strconv.Itoa(e.Rows), e.Path,
		})
	}
	return t
}
