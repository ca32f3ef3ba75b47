// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the channel of user actions
package ui

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
)

// ActionKind identifies a user action from the TUI
type ActionKind int

const (
	ActionVolume ActionKind = iota
	ActionRemoveAll
)

// Action is a key press translated into a player operation
type Action struct {
	Kind   ActionKind
	Volume float64
}

// Controls carries user actions from the TUI to the daemon
type Controls struct {
	Actions chan Action
	Quit    chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Actions: make(chan Action, 10),
		Quit:    make(chan struct{}, 1),
	}
}

// send delivers an action without blocking the UI. A nil Controls drops it.
func (c *Controls) send(a Action) {
	if c == nil {
		return
	}
	select {
	case c.Actions <- a:
	default:
		log.Printf("TUI action dropped, channel full")
	}
}

// quit signals the daemon once. A nil Controls ignores it.
func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls) Model {
	return Model{
		volume:   1,
		controls: controls,
	}
}

// Run creates the TUI program
func Run(controls *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(controls), tea.WithAltScreen())
	return p, nil
}
