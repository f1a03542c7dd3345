// init.go implements the "storysense init" command.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storysense-dev/storysense/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .storysense/config.yaml",
	Long: `Create the .storysense/ directory with a default configuration and
add its runtime files to .gitignore.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := projectRoot()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	configPath := filepath.Join(config.Dir(dir), "config.yaml")
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		fmt.Fprintln(out, "Warning: .storysense/config.yaml already exists (use --force to overwrite).")
		return nil
	}

	if err := config.WriteConfig(dir, config.DefaultConfig()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := ensureGitignore(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to set up .gitignore: %v\n", err)
	}

	fmt.Fprintln(out, "Configuration written to .storysense/config.yaml")
	fmt.Fprintln(out, "Ready to rate: storysense rate evaluation_data.json")
	return nil
}

// ensureGitignore appends the runtime entries that .gitignore is missing.
func ensureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	requiredEntries := []string{
		".env",
		".storysense/log.jsonl",
		".storysense/archive.db",
	}

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range requiredEntries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var toAppend strings.Builder
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		toAppend.WriteString("\n")
	}
	if existing != "" {
		toAppend.WriteString("\n# Added by storysense init\n")
	}
	for _, entry := range missing {
		toAppend.WriteString(entry + "\n")
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(toAppend.String()); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
