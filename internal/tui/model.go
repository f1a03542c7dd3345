package tui

import (
	"github.com/storysense-dev/storysense/internal/log"
	"github.com/storysense-dev/storysense/internal/session"
	"github.com/storysense-dev/storysense/internal/workflow"
)

// ViewState represents the current screen of the TUI.
type ViewState int

const (
	StateLoad      ViewState = iota // Waiting for a dataset path
	StateNoStories                  // Dataset loaded but empty
	StateRating                     // Rating a story
)

// Model holds the application state shared by every screen.
type Model struct {
	State ViewState

	// Session
	Controller  *workflow.Controller
	Logger      *log.Logger
	DatasetPath string

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool // True when waiting for second Ctrl+C press
}

// NewModel creates a Model with a fresh rating session.
func NewModel() *Model {
	return &Model{
		State:      StateLoad,
		Controller: workflow.New(session.NewStore()),

		// Default dimensions (will be updated on WindowSizeMsg)
		Width:  80,
		Height: 24,
	}
}
