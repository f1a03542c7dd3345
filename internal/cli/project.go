package cli

import (
	"fmt"
	"os"

	"github.com/storysense-dev/storysense/internal/config"
	"github.com/storysense-dev/storysense/internal/log"
)

// projectRoot returns the working directory, which holds .storysense/.
func projectRoot() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return root, nil
}

// openEventLog returns the session event log, or nil when logging is off
// or the log directory cannot be created.
func openEventLog(root string, cfg *config.Config) *log.Logger {
	if !cfg.Log.Enabled {
		return nil
	}
	logger, err := log.NewLogger(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: event log disabled: %v\n", err)
		return nil
	}
	return logger
}
