package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"mbkm-console/internal/console"
)

// Run drives sess interactively until the user quits, then closes it.
// bridge must be the notifier sess was built with.
func Run(ctx context.Context, sess *console.Session, bridge *Bridge, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	if bridge == nil {
		bridge = NewBridge()
	}
	m := newAppModel(ctx, sess, bridge, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	go bridge.attach(p.Send)

	_, err := p.Run()
	sess.Close()
	return err
}
