package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/rating"
)

// Store is the single source of truth for one session: navigation position,
// rater identity and accumulated ratings. It holds no workflow logic and is
// not safe for concurrent use; shells serialize access to it.
type Store struct {
	state *State
}

// NewStore returns a Store whose state is created on first use.
func NewStore() *Store {
	return &Store{}
}

// Initialize creates the default state if none exists. Calling it again
// keeps whatever progress the session already has.
func (s *Store) Initialize() {
	if s.state != nil {
		return
	}
	s.state = &State{
		ID:      uuid.New().String(),
		Ratings: make(map[string]rating.Record),
	}
}

func (s *Store) st() *State {
	s.Initialize()
	return s.state
}

// ID returns the session identifier.
func (s *Store) ID() string {
	return s.st().ID
}

// LoadDataset parses payload and, only if it is valid, replaces the loaded
// dataset. The current index and ratings are left alone.
func (s *Store) LoadDataset(payload []byte) (*dataset.Dataset, error) {
	ds, err := dataset.Parse(payload)
	if err != nil {
		return nil, err
	}
	s.SetDataset(ds)
	return ds, nil
}

// SetDataset installs an already parsed dataset.
func (s *Store) SetDataset(ds *dataset.Dataset) {
	s.st().Dataset = ds
}

// Dataset returns the loaded dataset, or nil.
func (s *Store) Dataset() *dataset.Dataset {
	return s.st().Dataset
}

// Loaded reports whether a dataset has been loaded, even an empty one.
func (s *Store) Loaded() bool {
	return s.st().Dataset != nil
}

// CurrentIndex returns the navigation position.
func (s *Store) CurrentIndex() int {
	return s.st().CurrentIndex
}

// SetCurrentIndex moves the navigation position. Bounds are the
// controller's concern; negative values are pinned to 0.
func (s *Store) SetCurrentIndex(i int) {
	if i < 0 {
		i = 0
	}
	s.st().CurrentIndex = i
}

// RaterName returns the name as entered, possibly empty.
func (s *Store) RaterName() string {
	return s.st().RaterName
}

// SetRaterName records who is rating.
func (s *Store) SetRaterName(name string) {
	s.st().RaterName = name
}

// RecordRating inserts or overwrites the rating for storyID.
func (s *Store) RecordRating(storyID string, rec rating.Record) {
	s.st().Ratings[storyID] = rec.Clone()
}

// Rating returns a copy of the saved rating for storyID.
func (s *Store) Rating(storyID string) (rating.Record, bool) {
	rec, ok := s.st().Ratings[storyID]
	if !ok {
		return rating.Record{}, false
	}
	return rec.Clone(), true
}

// Progress returns how many stories carry a rating against the size of the
// loaded dataset.
func (s *Store) Progress() Progress {
	st := s.st()
	return Progress{Rated: len(st.Ratings), Total: st.Dataset.Len()}
}

// Export builds the export document. The ratings map is copied verbatim.
func (s *Store) Export() ExportDocument {
	st := s.st()
	rater := strings.TrimSpace(st.RaterName)
	if rater == "" {
		rater = AnonymousRater
	}

	ratings := make(map[string]rating.Record, len(st.Ratings))
	for id, rec := range st.Ratings {
		ratings[id] = rec.Clone()
	}

	return ExportDocument{
		Metadata: Metadata{TotalRated: len(ratings), Rater: rater},
		Ratings:  ratings,
	}
}

// ExportJSON renders Export as indented JSON, ready for download.
func (s *Store) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.Export(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling export: %w", err)
	}
	return data, nil
}
