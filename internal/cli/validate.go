// validate.go implements the "storysense validate" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/workflow"
)

var validateCmd = &cobra.Command{
	Use:   "validate <dataset.json>",
	Short: "Check a dataset file without rating it",
	Long: `Parse a dataset file and report how many stories it holds.
Exits non-zero when the file is malformed or has no stories.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ds, err := dataset.ParseFile(args[0])
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		return fmt.Errorf("%s: %w", args[0], workflow.ErrEmptyDataset)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d stories\n", args[0], ds.Len())
	for _, sc := range ds.Stories {
		passed, failed := 0, 0
		for _, f := range sc.ArmB.ComplianceFindings {
			if f.Passed() {
				passed++
			} else {
				failed++
			}
		}
		fmt.Fprintf(out, "  %-12s  A: %d ACs  B: %d ACs", sc.StoryID, len(sc.ArmA.AcceptanceCriteria), len(sc.ArmB.AcceptanceCriteria))
		if passed+failed > 0 {
			fmt.Fprintf(out, "  findings: %d pass, %d fail", passed, failed)
		}
		fmt.Fprintln(out)
	}
	return nil
}
