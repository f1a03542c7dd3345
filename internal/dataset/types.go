// Package dataset defines the evaluation dataset rated in a session and
// converts uploaded JSON payloads into it.
package dataset

// FindingStatus is the outcome of a compliance check against one clause.
type FindingStatus string

const (
	StatusPass FindingStatus = "pass"
	StatusFail FindingStatus = "fail"
)

// Dataset is the ordered list of story cases loaded for a session.
// It is read-only once loaded.
type Dataset struct {
	Stories []StoryCase `json:"stories"`
}

// StoryCase is one unit of evaluation: an original story and the two
// generated refinements (arms) being compared.
type StoryCase struct {
	StoryID  string   `json:"story_id"`
	Original Original `json:"original"`
	ArmA     Arm      `json:"arm_a"`
	ArmB     Arm      `json:"arm_b"`
}

// Original is the story as written before refinement.
type Original struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"ACs,omitzero"`
}

// StoryText is the refined title and description produced by an arm.
type StoryText struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Arm is one generated output. Optional sections are nil when the
// payload omitted them and encode back only when present, even if empty.
type Arm struct {
	Story              StoryText           `json:"story"`
	AcceptanceCriteria []string            `json:"ACs,omitzero"`
	Risks              []string            `json:"risks,omitzero"`
	OpenQuestions      []string            `json:"openQuestions,omitzero"`
	ComplianceFindings []ComplianceFinding `json:"compliance_findings,omitzero"`
}

// ComplianceFinding is a pass/fail judgment against a named clause.
type ComplianceFinding struct {
	ClauseID  string        `json:"clauseId"`
	Status    FindingStatus `json:"status" validate:"oneof=pass fail"`
	Rationale string        `json:"rationale"`
}

// Passed reports whether the finding is a pass.
func (f ComplianceFinding) Passed() bool {
	return f.Status == StatusPass
}

// Len returns the number of stories, treating a nil dataset as empty.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Stories)
}

// At returns the story at index i.
func (d *Dataset) At(i int) (StoryCase, bool) {
	if d == nil || i < 0 || i >= len(d.Stories) {
		return StoryCase{}, false
	}
	return d.Stories[i], true
}

// IDs returns the story ids in dataset order.
func (d *Dataset) IDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.Stories))
	for _, s := range d.Stories {
		ids = append(ids, s.StoryID)
	}
	return ids
}
