package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mbkm-console/internal/console"
	"mbkm-console/internal/listing"
	"mbkm-console/internal/model"
	"mbkm-console/internal/statusutil"
)

var errUnsupported = errors.New("not available in this view")

type column[T any] struct {
	title string
	width int
	cell  func(T) string
}

type statKey struct {
	label string
	key   string
}

// snapshot is what one render needs from a view, with rows already flattened to cells.
type snapshot struct {
	ids      []int
	names    []string
	cells    [][]string
	headers  []string
	widths   []int
	page     model.Pagination
	stats    model.Statistics
	has      bool
	loading  bool
	refresh  bool
	errText  string
	params   listing.QueryParams
	busy     map[int]bool
	statKeys []statKey
}

// tab is the type-erased face of one console.View.
type tab interface {
	name() string
	title() string
	params() *listing.Params
	periodic() bool
	statuses() []string
	snapshot() snapshot
	subscribe(fn func()) func()
	refresh(ctx context.Context) error
	export(ctx context.Context, dir string) (string, int, error)
	toggle(ctx context.Context, id int) error
	review(ctx context.Context, id int, status model.RegistrantStatus) error
	remove(ctx context.Context, id int, confirmation string, force bool) error
	canDelete() bool
	canForce() bool
	detail(id int) (string, bool)
	copyText(id int) (string, bool)
}

type viewTab[T listing.Entity] struct {
	label    string
	view     *console.View[T]
	cols     []column[T]
	stats    []statKey
	states   []string
	period   bool
	deletes  bool
	force    bool
	toggleFn func(ctx context.Context, id int) error
	reviewFn func(ctx context.Context, id int, status model.RegistrantStatus) error
	detailFn func(T) string
}

func (t *viewTab[T]) name() string            { return t.view.Name }
func (t *viewTab[T]) title() string           { return t.label }
func (t *viewTab[T]) params() *listing.Params { return t.view.Params }
func (t *viewTab[T]) periodic() bool          { return t.period }
func (t *viewTab[T]) statuses() []string      { return t.states }
func (t *viewTab[T]) canDelete() bool         { return t.deletes }
func (t *viewTab[T]) canForce() bool          { return t.force }

func (t *viewTab[T]) snapshot() snapshot {
	st := t.view.Controller.State()
	s := snapshot{
		page:     st.Result.Pagination,
		stats:    st.Result.Statistics,
		has:      st.HasResult,
		loading:  st.Loading,
		refresh:  st.Refreshing,
		params:   st.Params,
		busy:     t.view.Actions.Busy(),
		statKeys: t.stats,
	}
	if st.Err != nil {
		s.errText = st.Message
	}
	for _, c := range t.cols {
		s.headers = append(s.headers, c.title)
		s.widths = append(s.widths, c.width)
	}
	for _, row := range st.Result.Items {
		s.ids = append(s.ids, row.EntityID())
		s.names = append(s.names, row.DisplayName())
		cells := make([]string, len(t.cols))
		for i, c := range t.cols {
			cells[i] = c.cell(row)
		}
		s.cells = append(s.cells, cells)
	}
	return s
}

func (t *viewTab[T]) subscribe(fn func()) func() {
	unsubState := t.view.Controller.Subscribe(func(listing.State[T]) { fn() })
	unsubBusy := t.view.Actions.Subscribe(func(map[int]bool) { fn() })
	return func() {
		unsubState()
		unsubBusy()
	}
}

func (t *viewTab[T]) refresh(ctx context.Context) error {
	return t.view.Controller.Refresh(ctx)
}

func (t *viewTab[T]) export(ctx context.Context, dir string) (string, int, error) {
	return t.view.Export(ctx, dir)
}

func (t *viewTab[T]) toggle(ctx context.Context, id int) error {
	if t.toggleFn == nil {
		return errUnsupported
	}
	return t.toggleFn(ctx, id)
}

func (t *viewTab[T]) review(ctx context.Context, id int, status model.RegistrantStatus) error {
	if t.reviewFn == nil {
		return errUnsupported
	}
	return t.reviewFn(ctx, id, status)
}

func (t *viewTab[T]) remove(ctx context.Context, id int, confirmation string, force bool) error {
	if !t.deletes {
		return errUnsupported
	}
	row, ok := t.view.Controller.Row(id)
	if !ok {
		return fmt.Errorf("%s %d is no longer listed", t.view.Name, id)
	}
	return console.Delete(ctx, t.view, row, confirmation, force && t.force)
}

func (t *viewTab[T]) detail(id int) (string, bool) {
	row, ok := t.view.Controller.Row(id)
	if !ok || t.detailFn == nil {
		return "", ok
	}
	return t.detailFn(row), true
}

func (t *viewTab[T]) copyText(id int) (string, bool) {
	row, ok := t.view.Controller.Row(id)
	if !ok {
		return "", false
	}
	cells := make([]string, len(t.cols))
	for i, c := range t.cols {
		cells[i] = c.cell(row)
	}
	return strings.Join(cells, "\t"), true
}

func activeLabel(b bool) string { return yesNo(b, "active", "inactive") }

func newTabs(s *console.Session) []tab {
	return []tab{
		&viewTab[model.Registrant]{
			label: "Registrants",
			view:  s.Registrants,
			cols: []column[model.Registrant]{
				{title: "NIM", width: 12, cell: func(r model.Registrant) string { return r.NIM }},
				{title: "Name", width: 22, cell: func(r model.Registrant) string { return r.Name }},
				{title: "Program", width: 20, cell: func(r model.Registrant) string { return r.ProgramName }},
				{title: "Place", width: 20, cell: func(r model.Registrant) string { return r.PlaceName }},
				{title: "Status", width: 9, cell: func(r model.Registrant) string { return string(r.Status) }},
			},
			stats: []statKey{
				{label: "Total", key: "total"},
				{label: "Pending", key: "pending"},
				{label: "Approved", key: "approved"},
				{label: "Rejected", key: "rejected"},
			},
			states:   statusutil.Filters("registrants"),
			period:   true,
			reviewFn: func(ctx context.Context, id int, status model.RegistrantStatus) error {
				return s.Review(ctx, id, status, "")
			},
			detailFn: registrantDetail,
		},
		&viewTab[model.Program]{
			label: "Programs",
			view:  s.Programs,
			cols: []column[model.Program]{
				{title: "Code", width: 8, cell: func(p model.Program) string { return p.Code }},
				{title: "Name", width: 28, cell: func(p model.Program) string { return p.Name }},
				{title: "Category", width: 14, cell: func(p model.Program) string { return p.Category }},
				{title: "Quota", width: 11, cell: func(p model.Program) string {
					return fmtCount(p.Registered) + "/" + fmtCount(p.Quota)
				}},
				{title: "Status", width: 8, cell: func(p model.Program) string { return activeLabel(p.IsActive) }},
			},
			stats: []statKey{
				{label: "Total", key: "total"},
				{label: "Active", key: "active"},
				{label: "Inactive", key: "inactive"},
				{label: "Quota", key: "quota"},
			},
			states:   statusutil.Filters("programs"),
			period:   true,
			deletes:  true,
			toggleFn: s.ToggleProgram,
			detailFn: programDetail,
		},
		&viewTab[model.Place]{
			label: "Places",
			view:  s.Places,
			cols: []column[model.Place]{
				{title: "Name", width: 26, cell: func(p model.Place) string { return p.Name }},
				{title: "Category", width: 12, cell: func(p model.Place) string { return p.Category }},
				{title: "City", width: 12, cell: func(p model.Place) string { return p.City }},
				{title: "Contact", width: 18, cell: func(p model.Place) string { return p.ContactPerson }},
				{title: "Quota", width: 6, cell: func(p model.Place) string { return fmtCount(p.Quota) }},
				{title: "Status", width: 8, cell: func(p model.Place) string { return activeLabel(p.IsActive) }},
			},
			stats: []statKey{
				{label: "Total", key: "total"},
				{label: "Active", key: "active"},
				{label: "Inactive", key: "inactive"},
			},
			states:   statusutil.Filters("places"),
			deletes:  true,
			force:    true,
			toggleFn: s.TogglePlace,
			detailFn: placeDetail,
		},
		&viewTab[model.Setting]{
			label: "Settings",
			view:  s.Settings,
			cols: []column[model.Setting]{
				{title: "Academic Year", width: 13, cell: func(st model.Setting) string { return st.AcademicYear }},
				{title: "Semester", width: 8, cell: func(st model.Setting) string { return string(st.Semester) }},
				{title: "Period", width: 23, cell: func(st model.Setting) string { return dateRange(st.StartDate, st.EndDate) }},
				{title: "Registration", width: 23, cell: func(st model.Setting) string {
					return dateRange(st.RegistrationStart, st.RegistrationEnd)
				}},
				{title: "Status", width: 8, cell: func(st model.Setting) string { return activeLabel(st.IsActive) }},
			},
			stats: []statKey{
				{label: "Total", key: "total"},
				{label: "Active", key: "active"},
			},
			states:   statusutil.Filters("settings"),
			deletes:  true,
			toggleFn: s.ToggleSetting,
			detailFn: settingDetail,
		},
	}
}

func dateRange(from, to string) string {
	if from == "" && to == "" {
		return ""
	}
	return from + " .. " + to
}
