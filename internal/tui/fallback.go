package tui

import (
	"errors"
	"fmt"
	"io"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/ui"
)

// ErrDatasetRequired is returned when no dataset path is given in
// non-interactive mode.
var ErrDatasetRequired = errors.New("dataset path required in non-interactive mode")

// FallbackRunner handles non-TTY execution: it validates the dataset,
// prints the first story and points at the commands that work without a
// terminal.
type FallbackRunner struct {
	out io.Writer
}

// NewFallbackRunner creates a new FallbackRunner writing to out.
func NewFallbackRunner(out io.Writer) *FallbackRunner {
	return &FallbackRunner{out: out}
}

// Run executes the fallback behavior for non-interactive mode.
func (f *FallbackRunner) Run(path string) error {
	fmt.Fprintln(f.out, "Running in non-interactive mode...")

	if path == "" {
		return ErrDatasetRequired
	}

	ds, err := dataset.ParseFile(path)
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		fmt.Fprintln(f.out, "No stories found in data.")
		return nil
	}

	sc, _ := ds.At(0)
	ui.NewPrinter(f.out).Story(sc, 1, ds.Len())
	fmt.Fprintln(f.out)
	fmt.Fprintf(f.out, "Use 'storysense show %s --index N' to print another story, or 'storysense serve' to rate over HTTP.\n", path)
	return nil
}
