// Package tui is an interactive day selector on top of a timeline.
// Arrow keys move the cursor, enter selects the day under it.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
	"github.com/stsysd/weekwide/term"
	"github.com/stsysd/weekwide/timeline"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Select, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#586069"))
)

// Model is the bubbletea model of the selector.
type Model struct {
	tl       *timeline.Timeline
	re       *lipgloss.Renderer
	title    string
	cursor   calendar.DateKey
	status   string
	help     help.Model
	quitting bool
}

// New returns a selector over tl with the cursor on the last day of the grid.
func New(tl *timeline.Timeline, title string) Model {
	m := Model{tl: tl, title: title, help: help.New()}
	if g := tl.View().Grid; !g.Empty() {
		m.cursor = calendar.KeyOf(g.End)
	}
	return m
}

// WithRenderer sets the lipgloss renderer used for the grid.
func (m Model) WithRenderer(re *lipgloss.Renderer) Model {
	m.re = re
	return m
}

// Cursor returns the day under the cursor.
func (m Model) Cursor() calendar.DateKey {
	return m.cursor
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var km tea.KeyMsg
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		km = msg
	default:
		return m, nil
	}

	// horizontal: left/right steps weeks, up/down steps days
	week, day := 7, 1
	if m.tl.View().Config.Orientation == heatmap.Vertical {
		week, day = 1, 7
	}

	switch {
	case key.Matches(km, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(km, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(km, keys.Left):
		m.move(-week)
	case key.Matches(km, keys.Right):
		m.move(week)
	case key.Matches(km, keys.Up):
		m.move(-day)
	case key.Matches(km, keys.Down):
		m.move(day)
	case key.Matches(km, keys.Select):
		if ev, ok := m.tl.Select(m.cursor); ok {
			m.status = "selected " + ev.Date.String()
		}
	}
	return m, nil
}

// move shifts the cursor by n days. The cursor never leaves the grid.
func (m *Model) move(n int) {
	g := m.tl.View().Grid
	c, ok := g.Cell(m.cursor)
	if !ok {
		return
	}
	next := calendar.KeyOf(calendar.AddDays(c.Date, n))
	if _, ok := g.Cell(next); ok {
		m.cursor = next
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.tl.View()

	status := m.status
	if text, _, ok := v.Tooltip(m.cursor); ok {
		status = text
		if m.status != "" {
			status = fmt.Sprintf("%s  (%s)", text, m.status)
		}
	}

	var parts []string
	if m.title != "" {
		parts = append(parts, titleStyle.Render(m.title), "")
	}
	parts = append(parts,
		term.Render(m.re, v, m.cursor),
		"",
		statusStyle.Render(status),
		m.help.View(keys),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
