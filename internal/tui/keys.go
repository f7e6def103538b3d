package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab     key.Binding
	PrevTab     key.Binding
	Up          key.Binding
	Down        key.Binding
	Search      key.Binding
	Status      key.Binding
	Period      key.Binding
	ResetPeriod key.Binding
	Clear       key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	PerPage     key.Binding
	Refresh     key.Binding
	Toggle      key.Binding
	Approve     key.Binding
	Reject      key.Binding
	Delete      key.Binding
	Export      key.Binding
	Copy        key.Binding
	Detail      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab:     key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next view")),
		PrevTab:     key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev view")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Status:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		Period:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next period")),
		ResetPeriod: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "current period")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		PrevPage:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
		NextPage:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		PerPage:     key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "rows per page")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Toggle:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle active")),
		Approve:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export csv")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy row")),
		Detail:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Search, k.Status, k.NextPage, k.Detail, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Up, k.Down, k.Detail},
		{k.Search, k.Status, k.Period, k.ResetPeriod, k.Clear},
		{k.PrevPage, k.NextPage, k.PerPage, k.Refresh},
		{k.Toggle, k.Approve, k.Reject, k.Delete},
		{k.Export, k.Copy, k.Help, k.Quit},
	}
}
