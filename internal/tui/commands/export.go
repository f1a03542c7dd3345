package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/storysense-dev/storysense/internal/export"
	"github.com/storysense-dev/storysense/internal/tui"
)

const publishTimeout = 30 * time.Second

// PublishCmd hands an already rendered document to every configured sink.
func PublishCmd(p *export.Publisher, meta export.Meta, data []byte) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		res, err := p.PublishData(ctx, meta, data)
		return tui.ExportDoneMsg{Result: res, Err: err}
	}
}
