package tui

import "github.com/storysense-dev/storysense/internal/export"

// ============================================================================
// Dataset Messages
// ============================================================================

// DatasetReadMsg carries the raw contents of a dataset file.
type DatasetReadMsg struct {
	Path    string
	Payload []byte
}

// DatasetReadErrorMsg signals that the dataset file could not be read.
type DatasetReadErrorMsg struct {
	Path string
	Err  error
}

// ============================================================================
// Export Messages
// ============================================================================

// ExportDoneMsg signals that the ratings were published.
type ExportDoneMsg struct {
	Result export.Result
	Err    error
}

// ============================================================================
// Utility Messages
// ============================================================================

// CtrlCResetMsg clears the pending ctrl+c confirmation.
type CtrlCResetMsg struct{}
