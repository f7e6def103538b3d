package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// deleteModal asks for the row's exact name before a delete is sent.
type deleteModal struct {
	id       int
	name     string
	force    bool
	canForce bool
	pending  bool
	errText  string
	input    textinput.Model
}

func newDeleteModal(id int, name string, canForce bool) deleteModal {
	in := textinput.New()
	in.Placeholder = name
	in.Prompt = "> "
	in.CharLimit = 200
	in.Width = 40
	in.Focus()
	return deleteModal{id: id, name: name, canForce: canForce, input: in}
}

func (d deleteModal) render(width int) string {
	boxW := 56
	if width > 0 && width-4 < boxW {
		boxW = max(width-4, 20)
	}
	title := "Delete"
	if d.force {
		title = "Delete permanently"
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(title),
		"",
		"Type " + lipgloss.NewStyle().Bold(true).Render(d.name) + " to confirm.",
		"",
		d.input.View(),
	}
	if d.errText != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorError).Render(d.errText))
	}
	hint := "enter: delete   esc: cancel"
	if d.canForce {
		hint += "   ctrl+f: " + yesNo(d.force, "soft delete", "delete permanently")
	}
	if d.pending {
		hint = "deleting…"
	}
	lines = append(lines, "", styleMuted().Render(hint))

	return lipgloss.NewStyle().
		Width(boxW).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Render(strings.Join(lines, "\n"))
}
