package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nextgis-borsch/lib-gdal/registry"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	refStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateList modelState = iota
	stateInputPath
)

type handleRow struct {
	handle *registry.Handle
	refs   int
}

type interactiveModel struct {
	ctx      context.Context
	err      error
	reg      *registry.Registry
	status   string
	rows     []handleRow
	input    textinput.Model
	selected int
	access   registry.Access
	state    modelState
}

type openedMsg struct {
	err    error
	handle *registry.Handle
}

func newInteractiveModel(ctx context.Context, reg *registry.Registry) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "path/to/source"
	ti.Prompt = "open: "
	ti.Width = 60

	m := &interactiveModel{
		ctx:   ctx,
		reg:   reg,
		input: ti,
		state: stateList,
	}
	m.refresh()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

// refresh re-reads the live handle list and clamps the cursor.
func (m *interactiveModel) refresh() {
	handles := m.reg.Handles()
	m.rows = m.rows[:0]
	for _, h := range handles {
		m.rows = append(m.rows, handleRow{handle: h, refs: h.RefCount()})
	}
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *interactiveModel) current() *registry.Handle {
	if m.selected < len(m.rows) {
		return m.rows[m.selected].handle
	}
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateInputPath {
			return m.updateInput(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "o", "enter":
			if h := m.current(); h != nil {
				return m, m.openCmd(h.Identifier())
			}

		case "r":
			if h := m.current(); h != nil {
				m.err = h.Release()
				if m.err == nil {
					m.status = fmt.Sprintf("released %s", h.Identifier().Path)
				}
				m.refresh()
			}

		case "a":
			m.access = registry.ReadOnly
			m.enterInput()

		case "u":
			m.access = registry.Update
			m.enterInput()
		}

	case openedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("opened %s (refcount %d)", msg.handle.Identifier().Path, msg.handle.RefCount())
		}
		m.refresh()
	}

	return m, nil
}

func (m *interactiveModel) enterInput() {
	m.state = stateInputPath
	m.input.SetValue("")
	m.input.Focus()
}

func (m *interactiveModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.state = stateList
		m.input.Blur()
		return m, nil

	case "enter":
		path := strings.TrimSpace(m.input.Value())
		m.state = stateList
		m.input.Blur()
		if path == "" {
			return m, nil
		}
		id, err := registry.NewIdentifier(path, m.access)
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.openCmd(id)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) openCmd(id registry.Identifier) tea.Cmd {
	return func() tea.Msg {
		h, err := m.reg.OpenSharedID(m.ctx, id)
		return openedMsg{handle: h, err: err}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Shared data sources"))
	b.WriteString(fmt.Sprintf(" %d open\n\n", len(m.rows)))

	if len(m.rows) == 0 {
		b.WriteString(helpStyle.Render("  no open data sources"))
		b.WriteString("\n")
	}
	for i, row := range m.rows {
		line := m.formatRow(i, row)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n\n")
	}

	if m.state == stateInputPath {
		b.WriteString(m.input.View())
		b.WriteString(" ")
		b.WriteString(refStyle.Render(m.access.String()))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter open • esc back"))
		return b.String()
	}

	b.WriteString(helpStyle.Render("↑/↓ select • o reopen • r release • a open read-only • u open update • q quit"))
	return b.String()
}

func (m *interactiveModel) formatRow(i int, row handleRow) string {
	id := row.handle.Identifier()
	return fmt.Sprintf("[%d] %s %s %s",
		i,
		id.Access.Short(),
		refStyle.Render(fmt.Sprintf("refs=%d", row.refs)),
		pathStyle.Render(id.Path))
}

func runInteractive(ctx context.Context, reg *registry.Registry) error {
	p := tea.NewProgram(newInteractiveModel(ctx, reg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
