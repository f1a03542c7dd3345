package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storysense-dev/storysense/internal/config"
	"github.com/storysense-dev/storysense/internal/rating"
	"github.com/storysense-dev/storysense/internal/session"
)

type failingSink struct{}

func (failingSink) Name() string { return "broken" }

func (failingSink) Put(context.Context, Meta, []byte) (string, error) {
	return "", errors.New("disk on fire")
}

func storeWithRating(t *testing.T) *session.Store {
	t.Helper()
	s := session.NewStore()
	s.SetRaterName("dana")
	s.RecordRating("S1", rating.NewRecord())
	return s
}

func TestFileSinkWritesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ratings.json")
	p := NewPublisher(FileSink{Path: path})

	res, err := p.Publish(context.Background(), storeWithRating(t))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(res.Targets) != 1 || res.Targets[0] != path {
		t.Errorf("Targets = %v, want [%s]", res.Targets, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var doc session.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if doc.Metadata.Rater != "dana" || doc.Metadata.TotalRated != 1 {
		t.Errorf("Metadata = %+v", doc.Metadata)
	}
}

func TestPublishContinuesPastFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.json")
	p := NewPublisher(failingSink{}, FileSink{Path: path})

	res, err := p.Publish(context.Background(), storeWithRating(t))
	if err == nil || !strings.Contains(err.Error(), "broken: disk on fire") {
		t.Errorf("err = %v, want broken sink error", err)
	}
	if len(res.Targets) != 1 {
		t.Errorf("Targets = %v, want the file sink only", res.Targets)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Errorf("file sink should still run: %v", statErr)
	}
}

func TestFromConfigArchivesExports(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()

	p, closeFn, err := FromConfig(context.Background(), root, cfg, "")
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	defer closeFn()

	res, err := p.Publish(context.Background(), storeWithRating(t))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(res.Targets) != 2 {
		t.Fatalf("Targets = %v, want file and archive", res.Targets)
	}
	if res.Targets[0] != filepath.Join(root, "ratings.json") {
		t.Errorf("file target = %q", res.Targets[0])
	}
	if !strings.HasPrefix(res.Targets[1], "archive:") {
		t.Errorf("archive target = %q", res.Targets[1])
	}
}

func TestFromConfigOutPathOverride(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Export.Archive = false

	p, closeFn, err := FromConfig(context.Background(), root, cfg, "custom.json")
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	defer closeFn()

	res, err := p.Publish(context.Background(), session.NewStore())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(res.Targets) != 1 || res.Targets[0] != filepath.Join(root, "custom.json") {
		t.Errorf("Targets = %v", res.Targets)
	}
}
