// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/storysense-dev/storysense/internal/tui"
)

// ReadDatasetCmd reads the dataset file at path. Parsing happens in the
// app so the session store is only touched on the update loop.
func ReadDatasetCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return tui.DatasetReadErrorMsg{Path: path, Err: fmt.Errorf("reading dataset: %w", err)}
		}
		return tui.DatasetReadMsg{Path: path, Payload: data}
	}
}
