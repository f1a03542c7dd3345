package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/storysense-dev/storysense/internal/tui"
)

// ReloadRequestMsg asks the app to return to the load screen.
type ReloadRequestMsg struct{}

// EmptyModel is shown when a loaded dataset has no stories.
type EmptyModel struct {
	path         string
	ctrlCPending bool
}

// NewEmptyModel creates an EmptyModel for the file at path.
func NewEmptyModel(path string) EmptyModel {
	return EmptyModel{path: path}
}

// SetCtrlCPending shows or hides the exit confirmation hint.
func (m *EmptyModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}

// Update handles messages for the empty view.
func (m EmptyModel) Update(msg tea.Msg) (EmptyModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case tui.KeyEnter, tui.KeyEsc, tui.KeyCtrlO:
			return m, func() tea.Msg { return ReloadRequestMsg{} }
		}
	}
	return m, nil
}

// View renders the empty view.
func (m EmptyModel) View() string {
	var b strings.Builder
	b.WriteString(tui.WarningStyle.Render("No stories found in data"))
	b.WriteString("\n\n")
	if m.path != "" {
		b.WriteString(tui.DimStyle.Render(m.path))
		b.WriteString("\n\n")
	}
	b.WriteString("The file loaded but its \"stories\" list is empty.\n\n")

	footer := "Enter: Load another file       Ctrl+C: Exit"
	if m.ctrlCPending {
		footer = "Press Ctrl+C again to exit"
	}
	b.WriteString(tui.DimStyle.Render(footer))
	return tui.BoxStyle.Render(b.String())
}
