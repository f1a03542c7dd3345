// history.go implements the "storysense history" command listing archived exports.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storysense-dev/storysense/internal/archive"
	"github.com/storysense-dev/storysense/internal/config"
	"github.com/storysense-dev/storysense/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history [id | s3://bucket/key]",
	Short: "List archived exports or print one",
	Long: `Without arguments, list the most recent exports kept in the local
archive. With an archive id, print that export. With an s3:// reference,
download the export from the configured bucket.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of exports to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", historyLimit)
	}
	root, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 && strings.HasPrefix(args[0], "s3://") {
		client, err := storage.New(cmd.Context(), cfg.Export.S3)
		if err != nil {
			return err
		}
		data, err := client.GetExport(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	path := cfg.Export.ArchivePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	st, err := archive.NewStore(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer st.Close()

	if len(args) == 1 {
		e, err := st.Get(args[0])
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("no archived export with id %s", args[0])
		}
		fmt.Fprintln(out, string(e.Document))
		return nil
	}

	entries, err := st.List(historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No exports archived yet. Export from 'storysense rate' with ctrl+e.")
		return nil
	}
	fmt.Fprintf(out, "%-36s  %-20s  %-16s  %s\n", "ID", "CREATED", "RATER", "RATED")
	for _, e := range entries {
		fmt.Fprintf(out, "%-36s  %-20s  %-16s  %d\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Rater, e.TotalRated)
	}
	return nil
}
