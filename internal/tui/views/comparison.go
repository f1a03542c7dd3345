package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/tui"
)

// sideBySideMinWidth is the narrowest terminal that gets three columns.
const sideBySideMinWidth = 90

// RenderComparison lays out the original story and both arms. Wide
// terminals get three columns; narrow ones get the panels stacked.
func RenderComparison(sc dataset.StoryCase, width int) string {
	sideBySide := width >= sideBySideMinWidth
	panelWidth := width - 4
	if sideBySide {
		panelWidth = width/3 - 4
	}

	panels := []string{
		renderPanel(tui.TitleStyle.Render("Original Story"), sc.Original.Title, sc.Original.Description,
			sc.Original.AcceptanceCriteria, dataset.Arm{}, panelWidth),
		renderPanel(tui.ArmAStyle.Render("Arm A"), sc.ArmA.Story.Title, sc.ArmA.Story.Description,
			sc.ArmA.AcceptanceCriteria, sc.ArmA, panelWidth),
		renderPanel(tui.ArmBStyle.Render("Arm B"), sc.ArmB.Story.Title, sc.ArmB.Story.Description,
			sc.ArmB.AcceptanceCriteria, sc.ArmB, panelWidth),
	}

	if sideBySide {
		return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func renderPanel(heading, title, description string, acs []string, extra dataset.Arm, width int) string {
	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(description)
	b.WriteString("\n\n")

	writeSection(&b, "Acceptance Criteria", acs, true)
	if len(extra.Risks) > 0 {
		writeSection(&b, "Risks", extra.Risks, false)
	}
	if len(extra.OpenQuestions) > 0 {
		writeSection(&b, "Open Questions", extra.OpenQuestions, false)
	}
	if len(extra.ComplianceFindings) > 0 {
		b.WriteString(tui.DimStyle.Render("Compliance Findings"))
		b.WriteString("\n")
		for _, f := range extra.ComplianceFindings {
			icon := tui.FindingFail
			if f.Passed() {
				icon = tui.FindingPass
			}
			b.WriteString(fmt.Sprintf("%s %s: %s\n", icon, f.ClauseID, f.Rationale))
		}
	}

	if width < 10 {
		width = 10
	}
	return tui.PanelStyle.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func writeSection(b *strings.Builder, title string, items []string, numbered bool) {
	b.WriteString(tui.DimStyle.Render(title))
	b.WriteString("\n")
	for i, item := range items {
		if numbered {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
		} else {
			b.WriteString(fmt.Sprintf("• %s\n", item))
		}
	}
	b.WriteString("\n")
}
