package listing

import (
	"maps"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"mbkm-console/internal/model"
)

const (
	DefaultPerPage = 15
	StatusAll      = "all"
)

// QueryParams is the full query state of one list view.
type QueryParams struct {
	Page         int               `json:"page" validate:"gte=1"`
	PerPage      int               `json:"per_page" validate:"gt=0,lte=100"`
	Search       string            `json:"search" validate:"max=100"`
	Status       string            `json:"status"`
	Filters      map[string]string `json:"filters"`
	AcademicYear string            `json:"academic_year" validate:"omitempty,academic_year"`
	Semester     model.Semester    `json:"semester" validate:"omitempty,semester"`
}

func DefaultQueryParams(perPage int) QueryParams {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return QueryParams{Page: 1, PerPage: perPage, Status: StatusAll}
}

func (p QueryParams) clone() QueryParams {
	p.Filters = maps.Clone(p.Filters)
	return p
}

func (p QueryParams) equal(o QueryParams) bool {
	return p.Page == o.Page &&
		p.PerPage == o.PerPage &&
		p.Search == o.Search &&
		p.Status == o.Status &&
		p.AcademicYear == o.AcademicYear &&
		p.Semester == o.Semester &&
		maps.Equal(p.Filters, o.Filters)
}

func (p QueryParams) Period() model.ActivePeriod {
	return model.ActivePeriod{AcademicYear: p.AcademicYear, Semester: p.Semester}
}

// filters returns every non-pagination filter with "all" and empty values dropped.
func (p QueryParams) filters() map[string]string {
	out := map[string]string{}
	set := func(k, v string) {
		v = strings.TrimSpace(v)
		if v != "" && !strings.EqualFold(v, StatusAll) {
			out[k] = v
		}
	}
	for k, v := range p.Filters {
		set(k, v)
	}
	set("search", p.Search)
	set("status", p.Status)
	set("academic_year", p.AcademicYear)
	set("semester", string(p.Semester))
	return out
}

// Values encodes the params as a list query.
func (p QueryParams) Values() url.Values {
	q := url.Values{}
	for k, v := range p.filters() {
		q.Set(k, v)
	}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	return q
}

// ExportFilters is the filter snapshot without pagination.
func (p QueryParams) ExportFilters() map[string]string {
	return p.filters()
}

// FilterKeys lists entity-specific filter keys in sorted order.
func (p QueryParams) FilterKeys() []string {
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type ChangeKind int

const (
	ChangeSeed ChangeKind = iota
	ChangeSearch
	ChangeFilter
	ChangePage
	ChangeClear
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSeed:
		return "seed"
	case ChangeSearch:
		return "search"
	case ChangePage:
		return "page"
	case ChangeClear:
		return "clear"
	default:
		return "filter"
	}
}

// Change is published after every setter that altered the params.
type Change struct {
	Kind   ChangeKind
	Params QueryParams
}

type subscription struct {
	id int
	fn func(Change)
}

// Params holds the query state of one view and publishes its changes.
// Setters never perform I/O.
type Params struct {
	mu       sync.Mutex
	cur      QueryParams
	defaults QueryParams
	period   model.ActivePeriod
	seeded   bool
	subs     []subscription
	nextSub  int
}

func NewParams(defaults QueryParams) *Params {
	if defaults.Page < 1 {
		defaults.Page = 1
	}
	if defaults.PerPage <= 0 {
		defaults.PerPage = DefaultPerPage
	}
	if defaults.Status == "" {
		defaults.Status = StatusAll
	}
	return &Params{cur: defaults.clone(), defaults: defaults.clone()}
}

func (s *Params) Snapshot() QueryParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.clone()
}

// Initialized reports whether the period seed has been applied.
func (s *Params) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seeded
}

// Subscribe registers fn for every published change and returns its unsubscribe func.
func (s *Params) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// update applies fn under the lock and publishes when the params changed.
func (s *Params) update(kind ChangeKind, fn func(p *QueryParams)) bool {
	s.mu.Lock()
	before := s.cur.clone()
	fn(&s.cur)
	if before.equal(s.cur) {
		s.mu.Unlock()
		return false
	}
	ch, subs := s.changeLocked(kind)
	s.mu.Unlock()

	publish(ch, subs)
	return true
}

func (s *Params) changeLocked(kind ChangeKind) (Change, []subscription) {
	return Change{Kind: kind, Params: s.cur.clone()}, append([]subscription(nil), s.subs...)
}

func publish(ch Change, subs []subscription) {
	for _, sub := range subs {
		sub.fn(ch)
	}
}

func (s *Params) SetSearch(search string) bool {
	return s.update(ChangeSearch, func(p *QueryParams) {
		p.Search = search
		p.Page = 1
	})
}

func (s *Params) SetStatus(status string) bool {
	if strings.TrimSpace(status) == "" {
		status = StatusAll
	}
	return s.update(ChangeFilter, func(p *QueryParams) {
		p.Status = status
		p.Page = 1
	})
}

// SetFilter sets an entity-specific filter; an empty or "all" value removes it.
func (s *Params) SetFilter(key, value string) bool {
	return s.update(ChangeFilter, func(p *QueryParams) {
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, StatusAll) {
			delete(p.Filters, key)
		} else {
			if p.Filters == nil {
				p.Filters = map[string]string{}
			}
			p.Filters[key] = value
		}
		p.Page = 1
	})
}

func (s *Params) SetPeriod(year string, sem model.Semester) bool {
	return s.update(ChangeFilter, func(p *QueryParams) {
		p.AcademicYear = strings.TrimSpace(year)
		p.Semester = sem
		p.Page = 1
	})
}

func (s *Params) SetPage(page int) bool {
	if page < 1 {
		page = 1
	}
	return s.update(ChangePage, func(p *QueryParams) {
		p.Page = page
	})
}

func (s *Params) SetPerPage(perPage int) bool {
	if perPage <= 0 {
		return false
	}
	return s.update(ChangePage, func(p *QueryParams) {
		p.PerPage = perPage
	})
}

// SetPageSize changes the page size and returns to page 1 in one change.
func (s *Params) SetPageSize(perPage int) bool {
	if perPage <= 0 {
		return false
	}
	return s.update(ChangePage, func(p *QueryParams) {
		p.PerPage = perPage
		p.Page = 1
	})
}

// ClearFilters restores the defaults, keeping the page size and the seeded period.
func (s *Params) ClearFilters() bool {
	return s.update(ChangeClear, func(p *QueryParams) {
		perPage := p.PerPage
		*p = s.defaults.clone()
		p.PerPage = perPage
		if s.seeded && !s.period.IsZero() {
			p.AcademicYear = s.period.AcademicYear
			p.Semester = s.period.Semester
		}
	})
}

// ResetToCurrentPeriod restores the seeded period filter.
func (s *Params) ResetToCurrentPeriod() bool {
	return s.update(ChangeFilter, func(p *QueryParams) {
		if s.seeded {
			p.AcademicYear = s.period.AcademicYear
			p.Semester = s.period.Semester
		}
		p.Page = 1
	})
}

// Seed applies the resolved period once and marks the params initialized.
// The seed change is always published; later calls are ignored and return false.
func (s *Params) Seed(period model.ActivePeriod) bool {
	s.mu.Lock()
	if s.seeded {
		s.mu.Unlock()
		return false
	}
	s.seeded = true
	s.period = period
	s.cur.AcademicYear = period.AcademicYear
	s.cur.Semester = period.Semester
	s.cur.Page = 1
	ch, subs := s.changeLocked(ChangeSeed)
	s.mu.Unlock()

	publish(ch, subs)
	return true
}

// Period returns the seeded period, zero before Seed.
func (s *Params) Period() model.ActivePeriod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}
