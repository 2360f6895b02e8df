package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// staticKeys are the handful of bindings that are not user-remappable (the
// remappable ones live in config.TuiKeys and are matched via matchesRune).
var staticKeys = struct {
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
	Add    key.Binding
	Cancel key.Binding
}{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add series")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}
