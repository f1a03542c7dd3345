// Package testutil provides test helper utilities for storysense tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TempProject creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// StoryCase returns one story case in the upload format. Arm B carries
// compliance findings, arm A carries risks and open questions.
func StoryCase(id string) map[string]interface{} {
	return map[string]interface{}{
		"story_id": id,
		"original": map[string]interface{}{
			"title":       "Reset password " + id,
			"description": "As a user I want to reset my password.",
			"ACs":         []string{"Email is sent", "Link expires"},
		},
		"arm_a": map[string]interface{}{
			"story": map[string]interface{}{
				"title":       "Self-service password reset",
				"description": "As a locked-out user I want a reset link so I can log in again.",
			},
			"ACs":           []string{"Reset email arrives within 1 minute"},
			"risks":         []string{"Email deliverability"},
			"openQuestions": []string{"How long is the link valid?"},
		},
		"arm_b": map[string]interface{}{
			"story": map[string]interface{}{
				"title":       "Password reset via email",
				"description": "As a user I want to reset my password by email.",
			},
			"ACs": []string{"Given a registered email, a link is sent"},
			"compliance_findings": []map[string]interface{}{
				{"clauseId": "SEC-1", "status": "pass", "rationale": "Token is single use"},
				{"clauseId": "SEC-2", "status": "fail", "rationale": "No rate limit"},
			},
		},
	}
}

// DatasetJSON returns an upload payload with n stories named S1..Sn.
func DatasetJSON(n int) []byte {
	stories := make([]interface{}, 0, n)
	for i := 1; i <= n; i++ {
		stories = append(stories, StoryCase(fmt.Sprintf("S%d", i)))
	}
	data, _ := json.MarshalIndent(map[string]interface{}{"stories": stories}, "", "  ")
	return data
}

// MinimalDatasetJSON has one story with only the required story_id and no
// optional sections.
const MinimalDatasetJSON = `{"stories": [{"story_id": "S1", "original": {"title": "t", "description": "d", "ACs": []}, "arm_a": {"story": {"title": "a", "description": "ad"}, "ACs": []}, "arm_b": {"story": {"title": "b", "description": "bd"}, "ACs": []}}]}`
