package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"mbkm-console/internal/api"
	"mbkm-console/internal/listing"
	"mbkm-console/internal/model"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearTickMsg:
		if m.minibufferText != "" && m.now().Sub(m.minibufferSetAt) >= minibufferAutoClearAfter {
			m.minibufferText = ""
		}
		return m, clearTick()

	case viewChangedMsg:
		m.bridge.ack()
		m.clampCursor(len(m.current().snapshot().ids))
		return m, nil

	case noticeMsg:
		(&m).showNotice(msg.notice)
		return m, nil

	case initDoneMsg:
		m.initialized = true
		m.resolution = msg.res
		m.periods = msg.periods
		return m, nil

	case actionDoneMsg:
		(&m).handleActionErr(msg.action, msg.err)
		return m, nil

	case deleteDoneMsg:
		return m.handleDeleteDone(msg.err), nil

	case exportDoneMsg:
		// The exporter already reported success or failure.
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.mode == modeDelete:
			return m.updateDelete(msg)
		case m.searching:
			return m.updateSearch(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *appModel) handleActionErr(action string, err error) {
	var resync *listing.ResyncError
	switch {
	case err == nil:
	case errors.Is(err, listing.ErrBusy):
		m.showMinibuffer("Still working on this row.")
	case errors.Is(err, listing.ErrNotReady):
		m.showMinibuffer("Waiting for the active period.")
	case errors.Is(err, errUnsupported):
		m.showMinibuffer(fmt.Sprintf("%s is %s.", action, errUnsupported))
	case errors.As(err, &resync):
		// The failed fetch already posted its own notice.
	default:
		var verr *listing.ValidationError
		if errors.As(err, &verr) {
			m.showNotice(listing.Notice{Level: listing.LevelError, Text: verr.Message})
		}
	}
}

func (m appModel) handleDeleteDone(err error) appModel {
	m.del.pending = false
	var verr *listing.ValidationError
	switch {
	case err == nil:
		m.mode = modeList
	case errors.As(err, &verr):
		m.del.errText = verr.Message
	case errors.Is(err, listing.ErrBusy):
		m.del.errText = "Still working on this row."
	default:
		var resync *listing.ResyncError
		if errors.As(err, &resync) {
			m.mode = modeList
			return m
		}
		// Keep the modal open for a retry.
		m.del.errText = api.Message(err, "Failed to delete.")
	}
	return m
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.current().params().SetSearch(m.search.Value())
	return m, cmd
}

func (m appModel) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.del.pending {
		return m, nil
	}
	switch msg.String() {
	case "esc", "ctrl+g":
		m.mode = modeList
		return m, nil
	case "ctrl+f":
		if m.del.canForce {
			m.del.force = !m.del.force
		}
		return m, nil
	case "enter":
		m.del.pending = true
		m.del.errText = ""
		t, ctx := m.current(), m.ctx
		id, confirmation, force := m.del.id, m.del.input.Value(), m.del.force
		return m, func() tea.Msg {
			return deleteDoneMsg{err: t.remove(ctx, id, confirmation, force)}
		}
	}
	var cmd tea.Cmd
	m.del.input, cmd = m.del.input.Update(msg)
	return m, cmd
}

func (m appModel) switchTab(delta int) appModel {
	m.active = (m.active + delta + len(m.tabs)) % len(m.tabs)
	m.cursor = 0
	m.mode = modeList
	m.search.SetValue(m.current().params().Snapshot().Search)
	if m.store != nil {
		_ = m.store.SetLastView(m.ctx, m.current().name())
	}
	return m
}

// rowCmd runs fn for the selected row off the update loop.
func (m appModel) rowCmd(action string, fn func(ctx context.Context, id int) error) tea.Cmd {
	id, _, ok := m.selected(m.current().snapshot())
	if !ok {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(ctx, id)}
	}
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeDetail && msg.String() == "esc" {
		m.mode = modeList
		return m, nil
	}

	t := m.current()
	p := t.params()
	snap := t.snapshot()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1), nil

	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1), nil

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor(len(snap.ids))

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor(len(snap.ids))

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(snap.params.Search)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Status):
		p.SetStatus(nextString(t.statuses(), snap.params.Status))
		m.cursor = 0

	case key.Matches(msg, m.keys.Period):
		if !t.periodic() {
			m.showMinibuffer("The period filter applies to registrants and programs.")
			break
		}
		if next, ok := nextPeriod(m.periods, snap.params.Period()); ok {
			p.SetPeriod(next.AcademicYear, next.Semester)
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.ResetPeriod):
		if t.periodic() {
			p.ResetToCurrentPeriod()
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Clear):
		p.ClearFilters()
		m.search.SetValue("")
		m.cursor = 0

	case key.Matches(msg, m.keys.PrevPage):
		if snap.page.HasPrev() {
			p.SetPage(snap.page.CurrentPage - 1)
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.NextPage):
		if snap.page.HasNext() {
			p.SetPage(snap.page.CurrentPage + 1)
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.PerPage):
		p.SetPageSize(nextPerPage(snap.params.PerPage))
		m.cursor = 0

	case key.Matches(msg, m.keys.Refresh):
		ctx := m.ctx
		return m, func() tea.Msg {
			return actionDoneMsg{action: "Refresh", err: t.refresh(ctx)}
		}

	case key.Matches(msg, m.keys.Toggle):
		return m, m.rowCmd("Toggle", t.toggle)

	case key.Matches(msg, m.keys.Approve):
		return m, m.rowCmd("Review", func(ctx context.Context, id int) error {
			return t.review(ctx, id, model.RegistrantApproved)
		})

	case key.Matches(msg, m.keys.Reject):
		return m, m.rowCmd("Review", func(ctx context.Context, id int) error {
			return t.review(ctx, id, model.RegistrantRejected)
		})

	case key.Matches(msg, m.keys.Delete):
		if !t.canDelete() {
			m.showNotice(listing.Notice{Level: listing.LevelError, Text: t.title() + " cannot be deleted; use review."})
			break
		}
		if id, name, ok := m.selected(snap); ok {
			m.del = newDeleteModal(id, name, t.canForce())
			m.mode = modeDelete
			return m, nil
		}

	case key.Matches(msg, m.keys.Export):
		ctx, dir := m.ctx, m.exportDir
		return m, func() tea.Msg {
			path, rows, err := t.export(ctx, dir)
			return exportDoneMsg{path: path, rows: rows, err: err}
		}

	case key.Matches(msg, m.keys.Copy):
		id, _, ok := m.selected(snap)
		if !ok {
			break
		}
		text, _ := t.copyText(id)
		if err := m.copy(text); err != nil {
			m.showNotice(listing.Notice{Level: listing.LevelError, Text: "Copy failed: " + err.Error()})
			break
		}
		m.showMinibuffer("Copied row to clipboard.")

	case key.Matches(msg, m.keys.Detail):
		if _, _, ok := m.selected(snap); ok {
			if m.mode == modeDetail {
				m.mode = modeList
			} else {
				m.mode = modeDetail
			}
		}
	}
	return m, nil
}
