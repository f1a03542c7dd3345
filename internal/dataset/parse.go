package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DataFormatError reports a payload that does not match the dataset schema.
// A payload that fails with this error is never partially applied.
type DataFormatError struct {
	Reason string
	Err    error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid dataset: %s: %v", e.Reason, e.Err)
	}
	return "invalid dataset: " + e.Reason
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// IsDataFormatError reports whether err is or wraps a *DataFormatError.
func IsDataFormatError(err error) bool {
	var dfe *DataFormatError
	return errors.As(err, &dfe)
}

var validate = validator.New()

// rawCase mirrors StoryCase but keeps story_id as a pointer so a missing
// key can be told apart from an empty one.
type rawCase struct {
	StoryID  *string  `json:"story_id"`
	Original Original `json:"original"`
	ArmA     Arm      `json:"arm_a"`
	ArmB     Arm      `json:"arm_b"`
}

// Parse converts a JSON payload into a Dataset.
// The payload must be an object with a "stories" array; every case needs a
// non-empty, unique story_id and compliance statuses must be pass or fail.
// Missing optional sections decode to their zero values.
func Parse(payload []byte) (*Dataset, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return nil, &DataFormatError{Reason: "payload is not a JSON object", Err: err}
	}

	rawStories, ok := top["stories"]
	if !ok {
		return nil, &DataFormatError{Reason: `missing "stories" key`}
	}

	var cases []rawCase
	if trimmed := strings.TrimSpace(string(rawStories)); !strings.HasPrefix(trimmed, "[") {
		return nil, &DataFormatError{Reason: `"stories" is not an array`}
	}
	if err := json.Unmarshal(rawStories, &cases); err != nil {
		return nil, &DataFormatError{Reason: "decoding stories", Err: err}
	}

	ds := &Dataset{Stories: make([]StoryCase, 0, len(cases))}
	seen := make(map[string]int, len(cases))
	for i, c := range cases {
		if c.StoryID == nil || strings.TrimSpace(*c.StoryID) == "" {
			return nil, &DataFormatError{Reason: fmt.Sprintf("story %d is missing story_id", i)}
		}
		id := *c.StoryID
		if prev, dup := seen[id]; dup {
			return nil, &DataFormatError{Reason: fmt.Sprintf("story_id %q repeated at stories %d and %d", id, prev, i)}
		}
		seen[id] = i

		sc := StoryCase{StoryID: id, Original: c.Original, ArmA: c.ArmA, ArmB: c.ArmB}
		if err := validateCase(sc); err != nil {
			return nil, &DataFormatError{Reason: fmt.Sprintf("story %q", id), Err: err}
		}
		ds.Stories = append(ds.Stories, sc)
	}

	return ds, nil
}

// ParseFile reads and parses a dataset file from disk.
func ParseFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return Parse(data)
}

func validateCase(sc StoryCase) error {
	for _, arm := range []struct {
		name string
		arm  Arm
	}{{"arm_a", sc.ArmA}, {"arm_b", sc.ArmB}} {
		for j, f := range arm.arm.ComplianceFindings {
			if err := validate.Struct(f); err != nil {
				return fmt.Errorf("%s compliance finding %d: status %q must be pass or fail", arm.name, j, f.Status)
			}
		}
	}
	return nil
}
