package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"mbkm-console/internal/listing"
)

const busyMarker = "⋯"

func (m appModel) View() string {
	t := m.tabs[m.active]
	snap := t.snapshot()

	parts := []string{
		m.viewTabs(),
		m.viewFilters(t, snap),
		viewStats(snap),
	}
	switch m.mode {
	case modeDelete:
		parts = append(parts, m.del.render(m.width))
	case modeDetail:
		parts = append(parts, m.viewDetail(t, snap))
	default:
		parts = append(parts, m.viewTable(snap))
	}
	parts = append(parts, viewFooter(snap), m.viewMinibuffer(), m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func (m appModel) viewTabs() string {
	var tabs []string
	for i, t := range m.tabs {
		if i == m.active {
			tabs = append(tabs, styleTabActive().Render(t.title()))
		} else {
			tabs = append(tabs, styleTab().Render(t.title()))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.initialized {
		line += "  " + styleMuted().Render("active period: "+m.resolution.Period.String())
	}
	return line
}

func (m appModel) viewFilters(t tab, snap snapshot) string {
	var bits []string
	if m.searching {
		bits = append(bits, m.search.View())
	} else if snap.params.Search != "" {
		bits = append(bits, "search: "+snap.params.Search)
	}
	status := snap.params.Status
	if status == "" {
		status = listing.StatusAll
	}
	bits = append(bits, "status: "+status)
	if t.periodic() {
		bits = append(bits, "period: "+snap.params.Period().String())
	}
	for _, k := range snap.params.FilterKeys() {
		bits = append(bits, k+": "+snap.params.Filters[k])
	}
	line := strings.Join(bits, "  ")
	if snap.loading || snap.refresh {
		line = m.spinner.View() + " " + line
	}
	return line
}

func viewStats(snap snapshot) string {
	if !snap.has {
		return ""
	}
	var bits []string
	for _, k := range snap.statKeys {
		bits = append(bits, k.label+" "+lipgloss.NewStyle().Bold(true).Render(fmtCount(snap.stats.Get(k.key))))
	}
	return strings.Join(bits, styleMuted().Render("  ·  "))
}

func (m appModel) viewTable(snap snapshot) string {
	switch {
	case !snap.has && snap.errText != "":
		return lipgloss.NewStyle().Foreground(colorError).Render(snap.errText)
	case !snap.has:
		return styleMuted().Render("Loading…")
	case len(snap.ids) == 0:
		return styleMuted().Render("No data.")
	}

	headers := append([]string{""}, snap.headers...)
	rows := make([][]string, 0, len(snap.cells))
	for i, cells := range snap.cells {
		row := make([]string, 0, len(cells)+1)
		row = append(row, yesNo(snap.busy[snap.ids[i]], busyMarker, " "))
		for j, c := range cells {
			row = append(row, padRight(truncate(c, snap.widths[j]), snap.widths[j]))
		}
		rows = append(rows, row)
	}

	cursor := m.cursor
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader()
			case row == cursor:
				return styleSelectedRow()
			default:
				return styleCell()
			}
		})
	return tbl.String()
}

func (m appModel) viewDetail(t tab, snap snapshot) string {
	id, _, ok := m.selected(snap)
	if !ok {
		return styleMuted().Render("Nothing selected.")
	}
	md, _ := t.detail(id)
	width := m.width - 4
	if width <= 0 {
		width = 80
	}
	return renderMarkdown(md, width)
}

func viewFooter(snap snapshot) string {
	if !snap.has {
		return ""
	}
	p := snap.page
	return styleMuted().Render(fmt.Sprintf("page %s/%s  ·  %s-%s of %s  ·  %d per page",
		fmtCount(p.CurrentPage), fmtCount(p.LastPage),
		fmtCount(p.From), fmtCount(p.To), fmtCount(p.Total), snap.params.PerPage))
}

func (m appModel) viewMinibuffer() string {
	if m.minibufferText == "" {
		return ""
	}
	st := lipgloss.NewStyle()
	switch m.minibufferLevel {
	case listing.LevelError:
		st = st.Foreground(colorError)
	case listing.LevelSuccess:
		st = st.Foreground(colorSuccess)
	}
	text := m.minibufferText
	if m.width > 0 {
		text = truncate(text, m.width)
	}
	return st.Render(text)
}
