package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbkm-console/internal/model"
)

var period = model.ActivePeriod{AcademicYear: "2025/2026", Semester: model.SemesterGanjil}

func TestSettersResetPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		apply func(p *Params)
	}{
		{"search", func(p *Params) { p.SetSearch("budi") }},
		{"same search", func(p *Params) { p.SetSearch("") }},
		{"status", func(p *Params) { p.SetStatus("pending") }},
		{"same status", func(p *Params) { p.SetStatus(StatusAll) }},
		{"filter", func(p *Params) { p.SetFilter("program_id", "3") }},
		{"remove filter", func(p *Params) { p.SetFilter("program_id", "all") }},
		{"period", func(p *Params) { p.SetPeriod("2024/2025", model.SemesterGenap) }},
		{"clear", func(p *Params) { p.ClearFilters() }},
		{"reset period", func(p *Params) { p.ResetToCurrentPeriod() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewParams(DefaultQueryParams(15))
			p.Seed(period)
			p.SetPage(3)
			tt.apply(p)
			assert.Equal(t, 1, p.Snapshot().Page)
		})
	}
}

func TestPageSettersKeepPage(t *testing.T) {
	t.Parallel()
	p := NewParams(DefaultQueryParams(15))
	p.SetPage(3)
	p.SetPerPage(25)
	assert.Equal(t, 3, p.Snapshot().Page)
	assert.Equal(t, 25, p.Snapshot().PerPage)

	assert.False(t, p.SetPerPage(0))
	p.SetPage(-4)
	assert.Equal(t, 1, p.Snapshot().Page)
}

func TestSubscribersSeeChanges(t *testing.T) {
	t.Parallel()
	p := NewParams(DefaultQueryParams(15))
	var kinds []ChangeKind
	unsub := p.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	p.Seed(period)
	p.SetSearch("budi")
	p.SetSearch("budi") // unchanged: nothing published
	p.SetStatus("approved")
	p.SetPage(2)
	p.ClearFilters()
	unsub()
	p.SetSearch("after")

	assert.Equal(t, []ChangeKind{ChangeSeed, ChangeSearch, ChangeFilter, ChangePage, ChangeClear}, kinds)
}

func TestClearFiltersKeepsSeededPeriod(t *testing.T) {
	t.Parallel()
	p := NewParams(DefaultQueryParams(15))
	p.Seed(period)
	p.SetPerPage(50)
	p.SetSearch("x")
	p.SetStatus("pending")
	p.SetFilter("place_id", "2")
	p.SetPeriod("2024/2025", model.SemesterGenap)

	p.ClearFilters()
	got := p.Snapshot()
	assert.Equal(t, "", got.Search)
	assert.Equal(t, StatusAll, got.Status)
	assert.Empty(t, got.Filters)
	assert.Equal(t, "2025/2026", got.AcademicYear)
	assert.Equal(t, model.SemesterGanjil, got.Semester)
	assert.Equal(t, 50, got.PerPage)
}

func TestClearFiltersWithoutSeedFallsBackToAllPeriods(t *testing.T) {
	t.Parallel()
	p := NewParams(DefaultQueryParams(15))
	p.SetPeriod("2024/2025", model.SemesterGenap)
	p.ClearFilters()
	assert.True(t, p.Snapshot().Period().IsZero())
}

func TestSeedOnce(t *testing.T) {
	t.Parallel()
	p := NewParams(DefaultQueryParams(15))
	require.False(t, p.Initialized())
	require.True(t, p.Seed(period))
	require.False(t, p.Seed(model.ActivePeriod{AcademicYear: "2030/2031", Semester: model.SemesterGenap}))
	assert.True(t, p.Initialized())
	assert.Equal(t, "2025/2026", p.Snapshot().AcademicYear)

	p.SetPeriod("2024/2025", model.SemesterGenap)
	p.ResetToCurrentPeriod()
	assert.Equal(t, period, p.Snapshot().Period())
}

func TestQueryEncoding(t *testing.T) {
	t.Parallel()
	p := NewParams(DefaultQueryParams(15))
	p.Seed(period)
	p.SetSearch("  budi ")
	p.SetFilter("program_id", "4")

	q := p.Snapshot().Values()
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "15", q.Get("per_page"))
	assert.Equal(t, "budi", q.Get("search"))
	assert.Equal(t, "4", q.Get("program_id"))
	assert.Equal(t, "Ganjil", q.Get("semester"))
	assert.False(t, q.Has("status"), "status=all is not sent")

	f := p.Snapshot().ExportFilters()
	assert.NotContains(t, f, "page")
	assert.NotContains(t, f, "per_page")
	assert.Equal(t, "2025/2026", f["academic_year"])
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()
	p := NewParams(DefaultQueryParams(15))
	p.SetFilter("city", "Bandung")
	snap := p.Snapshot()
	snap.Filters["city"] = "Jakarta"
	assert.Equal(t, "Bandung", p.Snapshot().Filters["city"])
}

func TestSetPageSizeResetsPageInOneChange(t *testing.T) {
	t.Parallel()
	p := NewParams(DefaultQueryParams(15))
	p.SetPage(3)
	var changes []Change
	p.Subscribe(func(c Change) { changes = append(changes, c) })

	require.True(t, p.SetPageSize(25))
	require.Len(t, changes, 1)
	assert.Equal(t, ChangePage, changes[0].Kind)
	assert.Equal(t, 1, changes[0].Params.Page)
	assert.Equal(t, 25, changes[0].Params.PerPage)

	assert.False(t, p.SetPageSize(25), "same size on page 1 publishes nothing")
	assert.False(t, p.SetPageSize(0))
	assert.Len(t, changes, 1)
}
