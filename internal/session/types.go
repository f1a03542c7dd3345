// Package session holds the in-memory state of one rating session.
package session

import (
	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/rating"
)

// AnonymousRater is exported as the rater name when none was given.
const AnonymousRater = "anonymous"

// State is everything a session accumulates. It is owned by exactly one
// Store and discarded with it.
type State struct {
	ID           string
	CurrentIndex int
	Ratings      map[string]rating.Record
	Dataset      *dataset.Dataset
	RaterName    string
}

// Metadata is the header of an export document.
type Metadata struct {
	TotalRated int    `json:"total_rated"`
	Rater      string `json:"rater"`
}

// ExportDocument is the serialized form of a session's ratings.
type ExportDocument struct {
	Metadata Metadata                 `json:"metadata"`
	Ratings  map[string]rating.Record `json:"ratings"`
}

// Progress summarizes how much of the loaded dataset has been rated.
type Progress struct {
	Rated int `json:"rated"`
	Total int `json:"total"`
}

// Fraction returns Rated/Total, 0 when nothing is loaded and at most 1
// when ratings outnumber a reloaded, smaller dataset.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	f := float64(p.Rated) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}
