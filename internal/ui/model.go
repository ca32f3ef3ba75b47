// ABOUTME: Bubbletea model for the soundstage daemon TUI
// ABOUTME: Holds player status and turns key presses into control actions
package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Sendspin/soundstage/pkg/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// volumeStep is the master volume change per key press
const volumeStep = 0.05

const panelWidth = 60

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(panelWidth)
)

// Model represents the TUI state
type Model struct {
	// Server
	serverName string
	listenAddr string
	clients    []string

	// Player
	volume   float64
	listener protocol.ListenerState
	sounds   []protocol.SoundState
	pending  int
	lastErr  string

	controls *Controls

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderVolume(),
		m.renderListener(),
		m.renderSounds(),
		m.renderClients(),
	}
	if m.lastErr != "" {
		sections = append(sections, errorStyle.Render("Last error: "+truncate(m.lastErr, panelWidth-14)))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return panelStyle.Render(body) + "\n" + m.renderHelp()
}

func (m Model) renderHeader() string {
	name := m.serverName
	if name == "" {
		name = "soundstage"
	}
	s := titleStyle.Render(name)
	if m.listenAddr != "" {
		s += labelStyle.Render("  " + m.listenAddr)
	}
	return s
}

func (m Model) renderVolume() string {
	percent := int(math.Round(m.volume * 100))
	return fmt.Sprintf("%s [%s] %d%%", labelStyle.Render("Volume: "), renderBar(percent, 100, 20), percent)
}

func (m Model) renderListener() string {
	l := m.listener
	return fmt.Sprintf("%s %s facing %s",
		labelStyle.Render("Listener:"), formatVector(l.Position), formatVector(l.Forward))
}

func (m Model) renderSounds() string {
	var b strings.Builder
	header := fmt.Sprintf("Sounds (%d)", len(m.sounds))
	if m.pending > 0 {
		header += fmt.Sprintf(", %d loading", m.pending)
	}
	b.WriteString(labelStyle.Render(header))

	if len(m.sounds) == 0 {
		b.WriteString("\n" + idleStyle.Render("  (none)"))
		return b.String()
	}

	for _, snd := range m.sounds {
		state := idleStyle.Render("idle   ")
		if snd.Playing {
			mode := "once"
			if snd.Loop {
				mode = "loop"
			}
			state = playingStyle.Render(fmt.Sprintf("%-7s", mode))
		}
		fmt.Fprintf(&b, "\n  %-8s %s %-18s %s",
			truncate(snd.ID, 8), state, truncate(snd.Path, 18), formatVector(snd.Position))
	}
	return b.String()
}

func (m Model) renderClients() string {
	if len(m.clients) == 0 {
		return labelStyle.Render("Controllers: ") + idleStyle.Render("none")
	}
	return labelStyle.Render("Controllers: ") + truncate(strings.Join(m.clients, ", "), panelWidth-16)
}

func (m Model) renderHelp() string {
	return helpStyle.Render("↑/↓:Volume  x:Remove all  q:Quit")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.controls.quit()
		return m, tea.Quit
	case "up":
		m.volume = stepVolume(m.volume, volumeStep)
		m.controls.send(Action{Kind: ActionVolume, Volume: m.volume})
	case "down":
		m.volume = stepVolume(m.volume, -volumeStep)
		m.controls.send(Action{Kind: ActionVolume, Volume: m.volume})
	case "x":
		m.sounds = nil
		m.controls.send(Action{Kind: ActionRemoveAll})
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.ServerName != "" {
		m.serverName = msg.ServerName
	}
	if msg.ListenAddr != "" {
		m.listenAddr = msg.ListenAddr
	}
	if msg.State != nil {
		m.volume = msg.State.Volume
		m.listener = msg.State.Listener
		m.sounds = msg.State.Sounds
		m.pending = msg.State.Pending
	}
	if msg.Clients != nil {
		m.clients = msg.Clients
	}
	if msg.LastError != "" {
		m.lastErr = msg.LastError
	}
}

// StatusMsg updates TUI state. Zero fields leave the current value alone.
type StatusMsg struct {
	ServerName string
	ListenAddr string
	State      *protocol.PlayerState
	Clients    []string
	LastError  string
}

// stepVolume moves v by delta on a 5% grid, clamped to [0, 1]
func stepVolume(v, delta float64) float64 {
	v = math.Round((v+delta)*20) / 20
	return math.Max(0, math.Min(1, v))
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func formatVector(v protocol.Vector) string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X, v.Y, v.Z)
}
