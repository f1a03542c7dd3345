// Package views provides TUI view components for the storysense application.
package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/storysense-dev/storysense/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// LoadRequestMsg is sent when the user submits a dataset path.
type LoadRequestMsg struct {
	Path  string
	Rater string
}

// formatHint shows the expected upload shape.
const formatHint = `{
  "stories": [
    {
      "story_id": "S1",
      "original": {"title": "...", "description": "...", "ACs": ["..."]},
      "arm_a": {"story": {...}, "ACs": [...], "risks": [...], "openQuestions": [...]},
      "arm_b": {"story": {...}, "ACs": [...], "compliance_findings": [...]}
    }
  ]
}`

// ============================================================================
// LoadModel
// ============================================================================

// LoadModel is the view model for the dataset load screen.
type LoadModel struct {
	pathInput  textinput.Model
	raterInput textinput.Model
	focus      int // 0 = path, 1 = rater
	Err        error
	Info       string

	ctrlCPending bool
	width        int
	height       int
}

// NewLoadModel creates a LoadModel with the inputs prefilled.
func NewLoadModel(path, rater string, width, height int) LoadModel {
	pi := textinput.New()
	pi.Placeholder = "path/to/evaluation_data.json"
	pi.CharLimit = 1024
	pi.Width = width - 10
	pi.SetValue(path)
	pi.Focus()

	ri := textinput.New()
	ri.Placeholder = "anonymous"
	ri.CharLimit = 200
	ri.Width = width - 10
	ri.SetValue(rater)

	return LoadModel{
		pathInput:  pi,
		raterInput: ri,
		width:      width,
		height:     height,
	}
}

// Init returns the initial command for the load view.
func (m LoadModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetCtrlCPending shows or hides the exit confirmation hint.
func (m *LoadModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}

// Update handles messages for the load view.
func (m LoadModel) Update(msg tea.Msg) (LoadModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyEnter:
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				m.pathInput.Focus()
				m.raterInput.Blur()
				m.focus = 0
				return m, nil
			}
			rater := m.raterInput.Value()
			return m, func() tea.Msg {
				return LoadRequestMsg{Path: path, Rater: rater}
			}
		case tui.KeyTab, tui.KeyUp, tui.KeyDown:
			m.focus = 1 - m.focus
			if m.focus == 0 {
				m.raterInput.Blur()
				return m, m.pathInput.Focus()
			}
			m.pathInput.Blur()
			return m, m.raterInput.Focus()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.pathInput.Width = msg.Width - 10
		m.raterInput.Width = msg.Width - 10
		return m, nil
	}

	if m.focus == 0 {
		m.pathInput, cmd = m.pathInput.Update(msg)
	} else {
		m.raterInput, cmd = m.raterInput.Update(msg)
	}
	return m, cmd
}

// View renders the load view.
func (m LoadModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("StorySense - User Story Rating"))
	b.WriteString("\n\n")

	b.WriteString("Evaluation data (JSON file)\n")
	b.WriteString(m.pathInput.View())
	b.WriteString("\n\n")
	b.WriteString("Your name (optional)\n")
	b.WriteString(m.raterInput.View())
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(tui.ErrorStyle.Render("Error: " + m.Err.Error()))
		b.WriteString("\n\n")
	}
	if m.Info != "" {
		b.WriteString(tui.WarningStyle.Render(m.Info))
		b.WriteString("\n\n")
	}

	b.WriteString(tui.DimStyle.Render("Expected format:"))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render(formatHint))
	b.WriteString("\n\n")

	footer := "Enter: Load       Tab: Switch field       Ctrl+C: Exit"
	if m.ctrlCPending {
		footer = "Press Ctrl+C again to exit"
	}
	b.WriteString(tui.DimStyle.Render(footer))

	width := m.width - 4
	if width > 100 {
		width = 100
	}
	return tui.BoxStyle.Width(width).Render(b.String())
}
