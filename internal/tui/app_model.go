package tui

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mbkm-console/internal/console"
	"mbkm-console/internal/listing"
	"mbkm-console/internal/model"
	"mbkm-console/internal/period"
	"mbkm-console/internal/store"
)

const minibufferAutoClearAfter = 5 * time.Second

var perPageChoices = []int{10, 15, 25, 50}

type viewMode int

const (
	modeList viewMode = iota
	modeDetail
	modeDelete
)

type Options struct {
	ExportDir string
	// Store remembers the last open view; optional.
	Store *store.DB
	// Copy replaces the system clipboard (tests).
	Copy func(string) error
}

type initDoneMsg struct {
	res     period.Resolution
	periods []model.ActivePeriod
}

type actionDoneMsg struct {
	action string
	err    error
}

type deleteDoneMsg struct{ err error }

type exportDoneMsg struct {
	path string
	rows int
	err  error
}

type clearTickMsg struct{}

type appModel struct {
	ctx    context.Context
	sess   *console.Session
	bridge *Bridge
	store  *store.DB

	tabs   []tab
	active int
	cursor int

	width  int
	height int

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	search    textinput.Model
	searching bool

	mode viewMode
	del  deleteModal

	initialized bool
	resolution  period.Resolution
	periods     []model.ActivePeriod

	exportDir string
	copy      func(string) error
	now       func() time.Time

	minibufferText  string
	minibufferLevel listing.Level
	minibufferSetAt time.Time
}

func newAppModel(ctx context.Context, sess *console.Session, bridge *Bridge, opts Options) appModel {
	if bridge == nil {
		bridge = NewBridge()
	}
	m := appModel{
		ctx:       ctx,
		sess:      sess,
		bridge:    bridge,
		store:     opts.Store,
		tabs:      newTabs(sess),
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		exportDir: opts.ExportDir,
		copy:      opts.Copy,
		now:       time.Now,
	}
	if m.exportDir == "" {
		m.exportDir = sess.ExportDir()
	}
	if m.copy == nil {
		m.copy = copyToClipboard
	}

	m.search = textinput.New()
	m.search.Placeholder = "Search"
	m.search.Prompt = "/ "
	m.search.CharLimit = 100
	m.search.Width = 40

	for _, t := range m.tabs {
		t.subscribe(bridge.changed)
	}
	if m.store != nil {
		last := m.store.LastView(ctx)
		for i, t := range m.tabs {
			if t.name() == last {
				m.active = i
			}
		}
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initCmd(), clearTick())
}

func (m appModel) initCmd() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		res := sess.Init(ctx)
		var years []string
		if opts, err := sess.Client().Registrants().FilterOptions(ctx); err == nil {
			years = opts.Values("academic_years")
		}
		return initDoneMsg{res: res, periods: buildPeriods(years, res.Period)}
	}
}

func clearTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return clearTickMsg{} })
}

// buildPeriods lists every year in both semesters, in server order, with the
// resolved period always present.
func buildPeriods(years []string, current model.ActivePeriod) []model.ActivePeriod {
	var out []model.ActivePeriod
	seen := map[string]bool{}
	add := func(p model.ActivePeriod) {
		if seen[p.String()] {
			return
		}
		seen[p.String()] = true
		out = append(out, model.ActivePeriod{AcademicYear: p.AcademicYear, Semester: p.Semester})
	}
	for _, y := range years {
		add(model.ActivePeriod{AcademicYear: y, Semester: model.SemesterGanjil})
		add(model.ActivePeriod{AcademicYear: y, Semester: model.SemesterGenap})
	}
	if !current.IsZero() && !seen[current.String()] {
		add(current)
		slices.SortStableFunc(out, func(a, b model.ActivePeriod) int {
			if a.AcademicYear != b.AcademicYear {
				if a.AcademicYear > b.AcademicYear {
					return -1
				}
				return 1
			}
			return 0
		})
	}
	return out
}

func nextPeriod(periods []model.ActivePeriod, cur model.ActivePeriod) (model.ActivePeriod, bool) {
	if len(periods) == 0 {
		return model.ActivePeriod{}, false
	}
	for i, p := range periods {
		if p.AcademicYear == cur.AcademicYear && p.Semester == cur.Semester {
			return periods[(i+1)%len(periods)], true
		}
	}
	return periods[0], true
}

func nextString(choices []string, cur string) string {
	if cur == "" {
		cur = listing.StatusAll
	}
	i := slices.Index(choices, cur)
	return choices[(i+1)%len(choices)]
}

func nextPerPage(cur int) int {
	for _, n := range perPageChoices {
		if n > cur {
			return n
		}
	}
	return perPageChoices[0]
}

func (m *appModel) current() tab { return m.tabs[m.active] }

func (m *appModel) showMinibuffer(text string) {
	m.showNotice(listing.Notice{Level: listing.LevelInfo, Text: text})
}

func (m *appModel) showNotice(n listing.Notice) {
	m.minibufferText = n.Text
	m.minibufferLevel = n.Level
	m.minibufferSetAt = m.now()
}

// selected returns the id and name of the row under the cursor.
func (m *appModel) selected(s snapshot) (int, string, bool) {
	if m.cursor < 0 || m.cursor >= len(s.ids) {
		return 0, "", false
	}
	return s.ids[m.cursor], s.names[m.cursor], true
}

func (m *appModel) clampCursor(rows int) {
	if m.cursor >= rows {
		m.cursor = rows - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
