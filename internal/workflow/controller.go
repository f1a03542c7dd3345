// Package workflow drives a rating session one story case at a time:
// loading the dataset, forward/back navigation, collecting ratings and
// auto-advancing after each save.
package workflow

import (
	"errors"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/rating"
	"github.com/storysense-dev/storysense/internal/session"
)

// Phase is the controller state.
type Phase int

const (
	PhaseEmpty     Phase = iota // No dataset loaded
	PhaseNoStories              // Dataset loaded but it has no stories
	PhaseBrowsing               // A story is current
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseNoStories:
		return "no_stories"
	case PhaseBrowsing:
		return "browsing"
	default:
		return "unknown"
	}
}

// Event is a discrete user action the controller reacts to.
type Event int

const (
	EventLoad Event = iota
	EventPrevious
	EventNext
	EventSave
)

// transitions lists the events each phase accepts. Loading is accepted
// everywhere; its target phase depends on the dataset, see Load.
var transitions = map[Phase]map[Event]bool{
	PhaseEmpty:     {EventLoad: true},
	PhaseNoStories: {EventLoad: true},
	PhaseBrowsing:  {EventLoad: true, EventPrevious: true, EventNext: true, EventSave: true},
}

// ErrEmptyDataset is returned by Load when the dataset has no stories.
// The dataset is kept but browsing does not start.
var ErrEmptyDataset = errors.New("no stories found in data")

// ErrNoCurrentStory is returned by Save outside the browsing phase.
var ErrNoCurrentStory = errors.New("no story is currently selected")

// Controller runs the rating workflow over a session store.
type Controller struct {
	store *session.Store
}

// New returns a Controller over store, initializing it if needed.
func New(store *session.Store) *Controller {
	store.Initialize()
	return &Controller{store: store}
}

// Store returns the underlying session store.
func (c *Controller) Store() *session.Store {
	return c.store
}

// Phase derives the current phase from the store.
func (c *Controller) Phase() Phase {
	switch {
	case !c.store.Loaded():
		return PhaseEmpty
	case c.store.Dataset().Len() == 0:
		return PhaseNoStories
	default:
		return PhaseBrowsing
	}
}

func (c *Controller) accepts(ev Event) bool {
	return transitions[c.Phase()][ev]
}

// Load parses payload into the store. A malformed payload leaves the store
// untouched and returns a *dataset.DataFormatError. A valid payload with no
// stories is installed and ErrEmptyDataset is returned. Otherwise the
// current index is clamped into the new dataset's range.
func (c *Controller) Load(payload []byte) error {
	ds, err := dataset.Parse(payload)
	if err != nil {
		return err
	}
	return c.LoadDataset(ds)
}

// LoadDataset installs an already parsed dataset with the same rules as Load.
func (c *Controller) LoadDataset(ds *dataset.Dataset) error {
	c.store.SetDataset(ds)
	if ds.Len() == 0 {
		return ErrEmptyDataset
	}
	if last := ds.Len() - 1; c.store.CurrentIndex() > last {
		c.store.SetCurrentIndex(last)
	}
	return nil
}

// Previous steps back one story. It is a no-op on the first story.
func (c *Controller) Previous() {
	if !c.accepts(EventPrevious) {
		return
	}
	if i := c.store.CurrentIndex(); i > 0 {
		c.store.SetCurrentIndex(i - 1)
	}
}

// Next steps forward one story. It is a no-op on the last story.
func (c *Controller) Next() {
	if !c.accepts(EventNext) {
		return
	}
	c.advance()
}

func (c *Controller) advance() bool {
	i := c.store.CurrentIndex()
	if i < c.store.Dataset().Len()-1 {
		c.store.SetCurrentIndex(i + 1)
		return true
	}
	return false
}

// SaveResult describes what Save did.
type SaveResult struct {
	StoryID  string
	Advanced bool
}

// Save records rec for the current story and moves to the next one unless
// the current story is the last.
func (c *Controller) Save(rec rating.Record) (SaveResult, error) {
	if !c.accepts(EventSave) {
		return SaveResult{}, ErrNoCurrentStory
	}
	sc, ok := c.Current()
	if !ok {
		return SaveResult{}, ErrNoCurrentStory
	}
	c.store.RecordRating(sc.StoryID, rec)
	return SaveResult{StoryID: sc.StoryID, Advanced: c.advance()}, nil
}

// Current returns the story case under review exactly as it was loaded.
func (c *Controller) Current() (dataset.StoryCase, bool) {
	if c.Phase() != PhaseBrowsing {
		return dataset.StoryCase{}, false
	}
	return c.store.Dataset().At(c.store.CurrentIndex())
}

// Position returns the 1-based position of the current story and the total.
// Both are 0 outside the browsing phase.
func (c *Controller) Position() (int, int) {
	if c.Phase() != PhaseBrowsing {
		return 0, 0
	}
	return c.store.CurrentIndex() + 1, c.store.Dataset().Len()
}

// Form returns the record the rating form should start from: the saved
// rating for the current story if there is one, the defaults otherwise.
func (c *Controller) Form() rating.Record {
	if sc, ok := c.Current(); ok {
		if rec, saved := c.store.Rating(sc.StoryID); saved {
			return rec
		}
	}
	return rating.NewRecord()
}

// Progress proxies the store's progress.
func (c *Controller) Progress() session.Progress {
	return c.store.Progress()
}

// Export proxies the store's export document.
func (c *Controller) Export() session.ExportDocument {
	return c.store.Export()
}
