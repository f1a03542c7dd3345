// Package rating defines the judgments a rater records for one story case
// and the defaults the rating form starts from.
package rating

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Score bounds and the midpoint every slider starts at.
const (
	MinScore     = 1
	MaxScore     = 5
	DefaultScore = 3
)

// Facet is one of the six INVEST dimensions a user story is rated on.
type Facet string

const (
	Independent Facet = "Independent"
	Negotiable  Facet = "Negotiable"
	Valuable    Facet = "Valuable"
	Estimable   Facet = "Estimable"
	Small       Facet = "Small"
	Testable    Facet = "Testable"
)

// Facets lists the INVEST facets in display order.
var Facets = []Facet{Independent, Negotiable, Valuable, Estimable, Small, Testable}

// FacetHelp describes what a high score on each facet means.
var FacetHelp = map[Facet]string{
	Independent: "Story is self-contained, no dependencies",
	Negotiable:  "Leaves room for discussion on implementation",
	Valuable:    "Clear stakeholder value",
	Estimable:   "Can be estimated by the team",
	Small:       "Fits in one iteration",
	Testable:    "Has verifiable acceptance criteria",
}

// Quality is a readability-style dimension rated per arm.
type Quality string

const (
	Readability       Quality = "readability"
	Understandability Quality = "understandability"
	Completeness      Quality = "completeness"
)

// Qualities lists the quality dimensions in display order.
var Qualities = []Quality{Readability, Understandability, Completeness}

// QualityHelp gives the scale anchors shown next to each quality slider.
var QualityHelp = map[Quality]string{
	Readability:       "1=Hard to read, 5=Very clear",
	Understandability: "1=Confusing, 5=Very clear",
	Completeness:      "1=Missing info, 5=Complete",
}

// PreferenceHelp gives the scale anchors for the overall preference slider.
const PreferenceHelp = "1=Poor, 5=Excellent"

// Winner is the rater's overall verdict between the two arms.
type Winner string

const (
	ABetter  Winner = "A_better"
	BBetter  Winner = "B_better"
	Equal    Winner = "equal"
	BothPoor Winner = "both_poor"
)

// Winners lists the verdicts in the order the form offers them.
var Winners = []Winner{ABetter, BBetter, Equal, BothPoor}

// DefaultWinner is the verdict a form starts with. It is the first option,
// so a record saved without touching the verdict reads A_better.
const DefaultWinner = ABetter

// Label returns the human-readable form of the verdict.
func (w Winner) Label() string {
	switch w {
	case ABetter:
		return "A is better"
	case BBetter:
		return "B is better"
	case Equal:
		return "Both are equal"
	case BothPoor:
		return "Both are poor"
	default:
		return string(w)
	}
}

// Valid reports whether w is one of the four verdicts.
func (w Winner) Valid() bool {
	for _, v := range Winners {
		if w == v {
			return true
		}
	}
	return false
}

// Record holds every judgment for one story case. Field names match the
// export document.
type Record struct {
	ArmA           map[Facet]int   `json:"arm_a" validate:"len=6,dive,min=1,max=5"`
	ArmAQuality    map[Quality]int `json:"arm_a_quality" validate:"len=3,dive,min=1,max=5"`
	ArmAPreference int             `json:"arm_a_preference" validate:"min=1,max=5"`
	ArmB           map[Facet]int   `json:"arm_b" validate:"len=6,dive,min=1,max=5"`
	ArmBQuality    map[Quality]int `json:"arm_b_quality" validate:"len=3,dive,min=1,max=5"`
	ArmBPreference int             `json:"arm_b_preference" validate:"min=1,max=5"`
	Comments       string          `json:"comments"`
	Winner         Winner          `json:"winner" validate:"oneof=A_better B_better equal both_poor"`
}

// NewRecord returns a record with every score at the midpoint, an empty
// comment and the default verdict.
func NewRecord() Record {
	return Record{
		ArmA:           defaultFacets(),
		ArmAQuality:    defaultQualities(),
		ArmAPreference: DefaultScore,
		ArmB:           defaultFacets(),
		ArmBQuality:    defaultQualities(),
		ArmBPreference: DefaultScore,
		Winner:         DefaultWinner,
	}
}

// Clone returns a deep copy so callers can edit without touching stored maps.
func (r Record) Clone() Record {
	out := r
	out.ArmA = cloneMap(r.ArmA)
	out.ArmAQuality = cloneMap(r.ArmAQuality)
	out.ArmB = cloneMap(r.ArmB)
	out.ArmBQuality = cloneMap(r.ArmBQuality)
	return out
}

var validate = validator.New()

// Validate checks ranges, facet keys and the verdict. Forms built from
// NewRecord always pass; it exists for records arriving from outside the
// form, such as an HTTP body.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid rating: %w", err)
	}
	for _, f := range Facets {
		if _, ok := r.ArmA[f]; !ok {
			return fmt.Errorf("invalid rating: arm_a missing facet %s", f)
		}
		if _, ok := r.ArmB[f]; !ok {
			return fmt.Errorf("invalid rating: arm_b missing facet %s", f)
		}
	}
	for _, q := range Qualities {
		if _, ok := r.ArmAQuality[q]; !ok {
			return fmt.Errorf("invalid rating: arm_a_quality missing %s", q)
		}
		if _, ok := r.ArmBQuality[q]; !ok {
			return fmt.Errorf("invalid rating: arm_b_quality missing %s", q)
		}
	}
	return nil
}

// Clamp pins a score into [MinScore, MaxScore].
func Clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

func defaultFacets() map[Facet]int {
	m := make(map[Facet]int, len(Facets))
	for _, f := range Facets {
		m[f] = DefaultScore
	}
	return m
}

func defaultQualities() map[Quality]int {
	m := make(map[Quality]int, len(Qualities))
	for _, q := range Qualities {
		m[q] = DefaultScore
	}
	return m
}

func cloneMap[K comparable](m map[K]int) map[K]int {
	if m == nil {
		return nil
	}
	out := make(map[K]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
