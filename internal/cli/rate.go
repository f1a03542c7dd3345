// rate.go implements the "storysense rate" command, the interactive rater.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/storysense-dev/storysense/internal/config"
	"github.com/storysense-dev/storysense/internal/export"
	"github.com/storysense-dev/storysense/internal/tui"
	"github.com/storysense-dev/storysense/internal/tui/app"
)

var rateCmd = &cobra.Command{
	Use:   "rate [dataset.json]",
	Short: "Rate story pairs in the terminal",
	Long: `Open the rating screen. With a dataset argument the file is loaded
straight away; otherwise the load screen asks for one. Outside a terminal
the first story is printed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRate,
}

var (
	rateRater string
	rateOut   string
)

func init() {
	rateCmd.Flags().StringVar(&rateRater, "rater", "", "Rater name recorded in the export (default from config)")
	rateCmd.Flags().StringVar(&rateOut, "out", "", "Export file path (default from config)")
}

func runRate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	if !tui.IsTTY() {
		return tui.NewFallbackRunner(cmd.OutOrStdout()).Run(path)
	}
	return launchTUI(cmd, path, rateRater, rateOut)
}

// launchTUI wires config, export sinks and the event log into the TUI app.
func launchTUI(cmd *cobra.Command, path, rater, outPath string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	publisher, closeSinks, err := export.FromConfig(cmd.Context(), root, cfg, outPath)
	if err != nil {
		return err
	}
	defer closeSinks()

	tuiApp := app.New(cfg, app.Options{
		DatasetPath: path,
		Rater:       rater,
		Publisher:   publisher,
		Logger:      openEventLog(root, cfg),
	})
	return tui.Run(tuiApp)
}
