package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mbkm-console/internal/api"
	"mbkm-console/internal/listing"
	"mbkm-console/internal/model"
	"mbkm-console/internal/statusutil"
)

type listFlags struct {
	page     int
	perPage  int
	search   string
	status   string
	year     string
	semester string
	filters  []string
}

func (f *listFlags) register(cmd *cobra.Command, withPage bool) {
	if withPage {
		cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
		cmd.Flags().IntVar(&f.perPage, "per-page", 0, "Rows per page (default MBKM_PER_PAGE)")
	}
	cmd.Flags().StringVar(&f.search, "search", "", "Free-text search")
	cmd.Flags().StringVar(&f.status, "status", listing.StatusAll, "Status filter (all|pending|approved|rejected|active|inactive)")
	cmd.Flags().StringVar(&f.year, "year", "", "Academic year, e.g. 2025/2026 (default: active period)")
	cmd.Flags().StringVar(&f.semester, "semester", "", "Semester: Ganjil|Genap (default: active period)")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "Extra filter key=value (repeatable)")
}

// params builds the query the way the console views do: the resolved period
// is seeded first for period-dependent resources, then flags are applied.
func (app *App) params(ctx context.Context, c *api.Client, r resource, f listFlags) (*listing.Params, error) {
	perPage := f.perPage
	if perPage <= 0 {
		perPage = app.cfg.PerPage
	}
	p := listing.NewParams(listing.DefaultQueryParams(perPage))
	if r.periodic() {
		p.Seed(app.resolver(c).Resolve(ctx).Period)
	}
	if f.year != "" || f.semester != "" {
		cur := p.Snapshot()
		year, sem := cur.AcademicYear, cur.Semester
		if f.year != "" {
			year = f.year
		}
		if f.semester != "" {
			sem = model.Semester(f.semester)
		}
		p.SetPeriod(year, sem)
	}
	if f.search != "" {
		p.SetSearch(f.search)
	}
	if f.status != "" {
		st, err := statusutil.NormalizeFilter(r.name(), f.status)
		if err != nil {
			return nil, err
		}
		p.SetStatus(st)
	}
	for _, kv := range f.filters {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --filter %q (want key=value)", kv)
		}
		p.SetFilter(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	// Every other setter resets the page, so it goes last.
	if f.page > 1 {
		p.SetPage(f.page)
	}
	return p, nil
}

func newListCmd(app *App) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List registrants, programs, places or settings",
		Example: strings.TrimSpace(`
mbkm list registrants --status pending --search budi
mbkm list programs --year 2024/2025 --semester Genap
mbkm list places --filter city=Jakarta --format table
`),
		Args:      cobra.ExactArgs(1),
		ValidArgs: resourceNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			r, err := lookupResource(c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := app.params(cmd.Context(), c, r, f)
			if err != nil {
				return writeErr(cmd, err)
			}
			env, err := r.list(cmd.Context(), p, app.log)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, env)
		},
	}
	f.register(cmd, true)
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <resource> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, id, err := app.target(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			env, err := r.show(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, env)
		},
	}
}

// target resolves the <resource> <id> pair shared by single-record commands.
func (app *App) target(args []string) (*api.Client, resource, int, error) {
	c, err := app.client()
	if err != nil {
		return nil, nil, 0, err
	}
	r, err := lookupResource(c, args[0])
	if err != nil {
		return nil, nil, 0, err
	}
	id, err := parseID(args[1])
	if err != nil {
		return nil, nil, 0, err
	}
	return c, r, id, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
