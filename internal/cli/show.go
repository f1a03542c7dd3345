// show.go implements the "storysense show" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/ui"
	"github.com/storysense-dev/storysense/internal/workflow"
)

var showCmd = &cobra.Command{
	Use:   "show <dataset.json>",
	Short: "Print one story and both arms as plain text",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var showIndex int

func init() {
	showCmd.Flags().IntVar(&showIndex, "index", 1, "Story position, starting at 1")
}

func runShow(cmd *cobra.Command, args []string) error {
	ds, err := dataset.ParseFile(args[0])
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		return fmt.Errorf("%s: %w", args[0], workflow.ErrEmptyDataset)
	}
	sc, ok := ds.At(showIndex - 1)
	if !ok {
		return fmt.Errorf("index %d out of range (1-%d)", showIndex, ds.Len())
	}
	ui.NewPrinter(cmd.OutOrStdout()).Story(sc, showIndex, ds.Len())
	return nil
}
