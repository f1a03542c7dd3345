package tui

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/testutil"
)

func TestFallbackRunnerPrintsFirstStory(t *testing.T) {
	dir := testutil.TempProject(t, map[string]string{"eval.json": string(testutil.DatasetJSON(2))})

	var buf bytes.Buffer
	if err := NewFallbackRunner(&buf).Run(filepath.Join(dir, "eval.json")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Story 1 of 2: S1") {
		t.Errorf("output missing first story:\n%s", out)
	}
	if !strings.Contains(out, "storysense show") {
		t.Errorf("output missing guidance:\n%s", out)
	}
}

func TestFallbackRunnerErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFallbackRunner(&buf).Run(""); !errors.Is(err, ErrDatasetRequired) {
		t.Errorf("err = %v, want ErrDatasetRequired", err)
	}

	dir := testutil.TempProject(t, map[string]string{"bad.json": `{"items": []}`})
	err := NewFallbackRunner(&buf).Run(filepath.Join(dir, "bad.json"))
	if !dataset.IsDataFormatError(err) {
		t.Errorf("err = %v, want DataFormatError", err)
	}
}

func TestFallbackRunnerEmptyDataset(t *testing.T) {
	dir := testutil.TempProject(t, map[string]string{"empty.json": `{"stories": []}`})

	var buf bytes.Buffer
	if err := NewFallbackRunner(&buf).Run(filepath.Join(dir, "empty.json")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No stories found in data.") {
		t.Errorf("output = %q", buf.String())
	}
}
