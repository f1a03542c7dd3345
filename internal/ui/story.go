package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/session"
)

// Printer writes story cases as plain text, with ANSI colors on a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer over w. Colors are enabled only when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{w: w, color: color}
}

// Story prints the original story and both arms. Sections an arm does not
// carry are left out.
func (p *Printer) Story(sc dataset.StoryCase, pos, total int) {
	fmt.Fprintf(p.w, "%s\n\n", p.bold(fmt.Sprintf("Story %d of %d: %s", pos, total, sc.StoryID)))

	fmt.Fprintln(p.w, p.bold("Original Story"))
	fmt.Fprintf(p.w, "  Title: %s\n", sc.Original.Title)
	fmt.Fprintf(p.w, "  Description: %s\n", sc.Original.Description)
	p.list("Acceptance Criteria", sc.Original.AcceptanceCriteria, true)
	fmt.Fprintln(p.w)

	p.arm("Arm A", sc.ArmA)
	fmt.Fprintln(p.w)
	p.arm("Arm B", sc.ArmB)
}

// Progress prints the progress line.
func (p *Printer) Progress(pr session.Progress) {
	fmt.Fprintln(p.w, ProgressLine(pr, 20))
}

func (p *Printer) arm(name string, a dataset.Arm) {
	fmt.Fprintln(p.w, p.bold(name))
	fmt.Fprintf(p.w, "  Title: %s\n", a.Story.Title)
	fmt.Fprintf(p.w, "  Description: %s\n", a.Story.Description)
	p.list("Acceptance Criteria", a.AcceptanceCriteria, true)
	if len(a.Risks) > 0 {
		p.list("Risks", a.Risks, false)
	}
	if len(a.OpenQuestions) > 0 {
		p.list("Open Questions", a.OpenQuestions, false)
	}
	if len(a.ComplianceFindings) > 0 {
		fmt.Fprintln(p.w, "  Compliance Findings:")
		for _, f := range a.ComplianceFindings {
			fmt.Fprintf(p.w, "    %s %s: %s\n", p.findingIcon(f), f.ClauseID, f.Rationale)
		}
	}
}

func (p *Printer) list(title string, items []string, numbered bool) {
	fmt.Fprintf(p.w, "  %s:\n", title)
	for i, item := range items {
		if numbered {
			fmt.Fprintf(p.w, "    %d. %s\n", i+1, item)
		} else {
			fmt.Fprintf(p.w, "    - %s\n", item)
		}
	}
}

func (p *Printer) findingIcon(f dataset.ComplianceFinding) string {
	if !p.color {
		return "[" + strings.ToUpper(string(f.Status)) + "]"
	}
	if f.Passed() {
		return "\033[32m\u2705\033[0m" // green checkmark
	}
	return "\033[31m\u274c\033[0m" // red X
}

func (p *Printer) bold(s string) string {
	if !p.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}
