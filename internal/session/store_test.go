package session

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/rating"
	"github.com/storysense-dev/storysense/internal/testutil"
)

func TestInitializeIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Initialize()
	id := s.ID()
	s.SetCurrentIndex(2)
	s.RecordRating("S1", rating.NewRecord())

	s.Initialize()

	if s.ID() != id {
		t.Errorf("ID changed from %q to %q", id, s.ID())
	}
	if s.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex = %d, want 2", s.CurrentIndex())
	}
	if s.Progress().Rated != 1 {
		t.Errorf("Rated = %d, want 1", s.Progress().Rated)
	}
}

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()
	if s.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex = %d, want 0", s.CurrentIndex())
	}
	if s.Loaded() {
		t.Error("new store should have no dataset")
	}
	if s.ID() == "" {
		t.Error("session ID should be set")
	}
}

func TestLoadDatasetKeepsProgress(t *testing.T) {
	s := NewStore()
	if _, err := s.LoadDataset(testutil.DatasetJSON(3)); err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	s.SetCurrentIndex(2)
	s.RecordRating("S1", rating.NewRecord())

	if _, err := s.LoadDataset(testutil.DatasetJSON(4)); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if s.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex = %d, want 2 after reload", s.CurrentIndex())
	}
	if p := s.Progress(); p.Rated != 1 || p.Total != 4 {
		t.Errorf("Progress = %+v, want 1/4", p)
	}
}

func TestLoadDatasetRejectsAtomically(t *testing.T) {
	s := NewStore()
	if _, err := s.LoadDataset(testutil.DatasetJSON(2)); err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	before := s.Dataset()

	_, err := s.LoadDataset([]byte(`{"stories": [{"story_id": "X"}, {"original": {}}]}`))
	if !dataset.IsDataFormatError(err) {
		t.Fatalf("err = %v, want DataFormatError", err)
	}
	if s.Dataset() != before {
		t.Error("dataset changed after a rejected load")
	}
}

func TestRecordRatingOverwrites(t *testing.T) {
	s := NewStore()
	first := rating.NewRecord()
	second := rating.NewRecord()
	second.Winner = rating.BothPoor
	second.Comments = "second pass"

	s.RecordRating("S1", first)
	s.RecordRating("S1", second)
	s.RecordRating("S2", first)

	if p := s.Progress(); p.Rated != 2 {
		t.Errorf("Rated = %d, want 2 distinct ids", p.Rated)
	}
	got, ok := s.Rating("S1")
	if !ok {
		t.Fatal("S1 rating missing")
	}
	if got.Winner != rating.BothPoor || got.Comments != "second pass" {
		t.Errorf("S1 = %+v, want the second record", got)
	}
}

func TestRecordRatingCopiesMaps(t *testing.T) {
	s := NewStore()
	rec := rating.NewRecord()
	s.RecordRating("S1", rec)
	rec.ArmA[rating.Small] = 1

	got, _ := s.Rating("S1")
	if got.ArmA[rating.Small] != rating.DefaultScore {
		t.Error("store shares maps with the caller")
	}
}

func TestProgressWithoutDataset(t *testing.T) {
	s := NewStore()
	p := s.Progress()
	if p.Rated != 0 || p.Total != 0 {
		t.Errorf("Progress = %+v, want 0/0", p)
	}
	if p.Fraction() != 0 {
		t.Errorf("Fraction = %v, want 0", p.Fraction())
	}
}

func TestProgressFraction(t *testing.T) {
	tests := []struct {
		p    Progress
		want float64
	}{
		{Progress{Rated: 0, Total: 0}, 0},
		{Progress{Rated: 3, Total: 0}, 0},
		{Progress{Rated: 1, Total: 4}, 0.25},
		{Progress{Rated: 4, Total: 4}, 1},
		{Progress{Rated: 5, Total: 2}, 1},
	}
	for _, tt := range tests {
		if got := tt.p.Fraction(); got != tt.want {
			t.Errorf("%+v.Fraction() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestExportDocument(t *testing.T) {
	s := NewStore()
	s.RecordRating("S1", rating.NewRecord())
	s.RecordRating("S2", rating.NewRecord())

	doc := s.Export()
	if doc.Metadata.TotalRated != 2 {
		t.Errorf("TotalRated = %d, want 2", doc.Metadata.TotalRated)
	}
	if doc.Metadata.Rater != AnonymousRater {
		t.Errorf("Rater = %q, want %q", doc.Metadata.Rater, AnonymousRater)
	}
	if len(doc.Ratings) != 2 {
		t.Fatalf("len(Ratings) = %d, want 2", len(doc.Ratings))
	}
	for _, id := range []string{"S1", "S2"} {
		if _, ok := doc.Ratings[id]; !ok {
			t.Errorf("Ratings missing %s", id)
		}
	}
}

func TestExportRaterName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", AnonymousRater},
		{"   ", AnonymousRater},
		{"dana", "dana"},
		{" dana ", "dana"},
	}
	for _, tt := range tests {
		s := NewStore()
		s.SetRaterName(tt.name)
		if got := s.Export().Metadata.Rater; got != tt.want {
			t.Errorf("rater %q exported as %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExportJSONShape(t *testing.T) {
	s := NewStore()
	s.SetRaterName("dana")
	s.RecordRating("S1", rating.NewRecord())

	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"metadata\": {") {
		t.Errorf("export should be indented with two spaces:\n%s", data)
	}

	var raw struct {
		Metadata map[string]json.RawMessage            `json:"metadata"`
		Ratings  map[string]map[string]json.RawMessage `json:"ratings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if string(raw.Metadata["total_rated"]) != "1" || string(raw.Metadata["rater"]) != `"dana"` {
		t.Errorf("metadata = %v", raw.Metadata)
	}
	if string(raw.Ratings["S1"]["winner"]) != `"A_better"` {
		t.Errorf("winner = %s", raw.Ratings["S1"]["winner"])
	}
}
