// Package app provides the main TUI application that wires all views together.
package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/storysense-dev/storysense/internal/config"
	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/export"
	"github.com/storysense-dev/storysense/internal/log"
	"github.com/storysense-dev/storysense/internal/tui"
	"github.com/storysense-dev/storysense/internal/tui/commands"
	"github.com/storysense-dev/storysense/internal/tui/views"
	"github.com/storysense-dev/storysense/internal/workflow"
)

// Options configures a new App.
type Options struct {
	DatasetPath string            // Loaded on start when set
	Rater       string            // Prefills the rater name
	Publisher   *export.Publisher // Export destinations; nil disables ctrl+e
	Logger      *log.Logger       // Event log; nil discards
}

// App is the main TUI application that wires all views together.
type App struct {
	model     *tui.Model
	publisher *export.Publisher

	// View models
	loadView   views.LoadModel
	emptyView  views.EmptyModel
	ratingView views.RatingModel
}

// New creates a new App with the given configuration.
func New(cfg *config.Config, opts Options) *App {
	model := tui.NewModel()
	model.Logger = opts.Logger
	model.DatasetPath = opts.DatasetPath

	rater := opts.Rater
	if rater == "" && cfg != nil {
		rater = cfg.Rater
	}
	model.Controller.Store().SetRaterName(rater)

	return &App{
		model:      model,
		publisher:  opts.Publisher,
		loadView:   views.NewLoadModel(opts.DatasetPath, rater, model.Width, model.Height),
		ratingView: views.NewRatingModel(model.Width, model.Height),
	}
}

// Model exposes the shared state.
func (a *App) Model() *tui.Model {
	return a.model
}

// Init logs the session start and loads the dataset given on the command
// line, if any.
func (a *App) Init() tea.Cmd {
	a.logEvent(log.LogEvent{Event: log.EventSessionStarted})
	if a.model.DatasetPath != "" {
		return commands.ReadDatasetCmd(a.model.DatasetPath)
	}
	return a.loadView.Init()
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		var loadCmd, ratingCmd tea.Cmd
		a.loadView, loadCmd = a.loadView.Update(msg)
		a.ratingView, ratingCmd = a.ratingView.Update(msg)
		return a, tea.Batch(loadCmd, ratingCmd)

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.model.CtrlCPending {
				// Second press within timeout - exit
				return a, tea.Quit
			}
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case tui.DatasetReadMsg:
		return a.handleDataset(msg.Path, msg.Payload)

	case tui.DatasetReadErrorMsg:
		a.showLoadError(msg.Err)
		return a, nil

	case tui.ExportDoneMsg:
		a.handleExportDone(msg)
		return a, nil
	}

	switch a.model.State {
	case tui.StateLoad:
		return a.updateLoad(msg)
	case tui.StateNoStories:
		return a.updateEmpty(msg)
	case tui.StateRating:
		return a.updateRating(msg)
	}
	return a, nil
}

// View renders the current application state.
func (a *App) View() string {
	a.loadView.SetCtrlCPending(a.model.CtrlCPending)
	a.emptyView.SetCtrlCPending(a.model.CtrlCPending)
	a.ratingView.SetCtrlCPending(a.model.CtrlCPending)

	switch a.model.State {
	case tui.StateLoad:
		return a.centerContent(a.loadView.View())
	case tui.StateNoStories:
		return a.centerContent(a.emptyView.View())
	case tui.StateRating:
		return a.ratingView.View()
	default:
		return "Unknown state"
	}
}

// centerContent centers the given content both horizontally and vertically.
func (a *App) centerContent(content string) string {
	return lipgloss.Place(
		a.model.Width,
		a.model.Height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// ============================================================================
// State Update Handlers
// ============================================================================

func (a *App) updateLoad(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == tui.KeyEsc {
		// Back to the loaded dataset, if there is one.
		if a.model.Controller.Phase() == workflow.PhaseBrowsing {
			a.model.State = tui.StateRating
			a.refreshRating("")
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.loadView, cmd = a.loadView.Update(msg)

	if req, ok := msg.(views.LoadRequestMsg); ok {
		a.model.Controller.Store().SetRaterName(req.Rater)
		a.model.DatasetPath = req.Path
		return a, commands.ReadDatasetCmd(req.Path)
	}
	return a, cmd
}

func (a *App) updateEmpty(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.emptyView, cmd = a.emptyView.Update(msg)

	if _, ok := msg.(views.ReloadRequestMsg); ok {
		return a, a.toLoad("")
	}
	return a, cmd
}

func (a *App) updateRating(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.ratingView, cmd = a.ratingView.Update(msg)

	ctrl := a.model.Controller
	switch msg := msg.(type) {
	case views.PreviousStoryMsg:
		ctrl.Previous()
		a.refreshRating("")
		return a, nil

	case views.NextStoryMsg:
		ctrl.Next()
		a.refreshRating("")
		return a, nil

	case views.SaveRatingMsg:
		return a, a.saveRating(msg)

	case views.ExportRequestMsg:
		return a, a.startExport()

	case views.ReloadRequestMsg:
		return a, a.toLoad("")
	}
	return a, cmd
}

// handleDataset feeds a dataset file through the controller and picks the
// screen that matches the outcome.
func (a *App) handleDataset(path string, payload []byte) (tea.Model, tea.Cmd) {
	ctrl := a.model.Controller
	err := ctrl.Load(payload)

	switch {
	case errors.Is(err, workflow.ErrEmptyDataset):
		a.logEvent(log.LogEvent{Event: log.EventDatasetLoaded, Source: path})
		a.model.State = tui.StateNoStories
		a.emptyView = views.NewEmptyModel(path)
		return a, nil

	case err != nil:
		a.logEvent(log.LogEvent{Event: log.EventDatasetRejected, Source: path, Error: err.Error()})
		a.showLoadError(err)
		return a, nil
	}

	total := ctrl.Store().Dataset().Len()
	a.logEvent(log.LogEvent{Event: log.EventDatasetLoaded, Source: path, Stories: total})
	a.model.State = tui.StateRating
	a.refreshRating(fmt.Sprintf("Loaded %d stories", total))
	return a, nil
}

func (a *App) saveRating(msg views.SaveRatingMsg) tea.Cmd {
	ctrl := a.model.Controller
	res, err := ctrl.Save(msg.Record)
	if err != nil {
		a.ratingView.SetStatus("", err)
		return nil
	}

	p := ctrl.Progress()
	a.logEvent(log.LogEvent{
		Event:   log.EventRatingSaved,
		StoryID: res.StoryID,
		Winner:  string(msg.Record.Winner),
		Rated:   p.Rated,
		Total:   p.Total,
	})

	status := fmt.Sprintf("Rating saved for %s", res.StoryID)
	if !res.Advanced {
		status += ". Last story reached; press ctrl+e to export"
	}
	a.refreshRating(status)
	return nil
}

func (a *App) startExport() tea.Cmd {
	if a.publisher == nil {
		a.ratingView.SetStatus("", errors.New("export is not configured"))
		return nil
	}
	meta, data, err := export.Snapshot(a.model.Controller.Store())
	if err != nil {
		a.ratingView.SetStatus("", err)
		return nil
	}
	a.ratingView.SetStatus(fmt.Sprintf("Exporting %d ratings...", meta.TotalRated), nil)
	return commands.PublishCmd(a.publisher, meta, data)
}

func (a *App) handleExportDone(msg tui.ExportDoneMsg) {
	ev := log.LogEvent{
		Event:   log.EventRatingsExported,
		Rated:   a.model.Controller.Progress().Rated,
		Targets: msg.Result.Targets,
	}
	if msg.Err != nil {
		ev.Error = msg.Err.Error()
	}
	a.logEvent(ev)

	switch {
	case msg.Err != nil:
		a.ratingView.SetStatus("", msg.Err)
	case len(msg.Result.Targets) == 0:
		a.ratingView.SetStatus("Nothing was exported", nil)
	default:
		a.ratingView.SetStatus("Exported to "+strings.Join(msg.Result.Targets, ", "), nil)
	}
}

// refreshRating pushes the controller's current story, form and progress
// into the rating view.
func (a *App) refreshRating(status string) {
	ctrl := a.model.Controller
	sc, ok := ctrl.Current()
	if !ok {
		return
	}
	pos, total := ctrl.Position()
	a.ratingView.SetStory(sc, pos, total, ctrl.Form())
	a.ratingView.SetProgress(ctrl.Progress())
	a.ratingView.SetStatus(status, nil)
}

func (a *App) toLoad(info string) tea.Cmd {
	a.model.State = tui.StateLoad
	a.loadView = views.NewLoadModel(a.model.DatasetPath, a.model.Controller.Store().RaterName(), a.model.Width, a.model.Height)
	a.loadView.Info = info
	return a.loadView.Init()
}

func (a *App) showLoadError(err error) {
	if a.model.State != tui.StateLoad {
		a.toLoad("")
	}
	if dataset.IsDataFormatError(err) {
		a.loadView.Info = "The file was rejected; the previous dataset is unchanged."
	}
	a.loadView.Err = err
}

func (a *App) logEvent(ev log.LogEvent) {
	ev.SessionID = a.model.Controller.Store().ID()
	ev.Rater = a.model.Controller.Store().Export().Metadata.Rater
	_ = a.model.Logger.Append(ev)
}
