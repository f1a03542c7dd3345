package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/storysense-dev/storysense/internal/dataset"
	"github.com/storysense-dev/storysense/internal/rating"
	"github.com/storysense-dev/storysense/internal/session"
	"github.com/storysense-dev/storysense/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// PreviousStoryMsg asks the app to step back one story.
type PreviousStoryMsg struct{}

// NextStoryMsg asks the app to step forward one story.
type NextStoryMsg struct{}

// SaveRatingMsg carries the form's record for the current story.
type SaveRatingMsg struct {
	Record rating.Record
}

// ExportRequestMsg asks the app to publish the ratings.
type ExportRequestMsg struct{}

// formHeight is the number of lines the form and footer take.
const formHeight = 27

// ============================================================================
// RatingModel
// ============================================================================

// RatingModel is the view model for rating one story case.
type RatingModel struct {
	viewport viewport.Model
	form     FormModel
	story    dataset.StoryCase
	pos      int
	total    int
	progress session.Progress
	status   string
	err      error

	ctrlCPending bool
	width        int
	height       int
}

// NewRatingModel creates an empty RatingModel.
func NewRatingModel(width, height int) RatingModel {
	return RatingModel{
		viewport: viewport.New(width, viewportHeight(height)),
		form:     NewFormModel(width),
		width:    width,
		height:   height,
	}
}

func viewportHeight(height int) int {
	if h := height - formHeight; h > 6 {
		return h
	}
	return 6
}

// SetStory shows sc and loads rec into the form.
func (m *RatingModel) SetStory(sc dataset.StoryCase, pos, total int, rec rating.Record) {
	m.story = sc
	m.pos = pos
	m.total = total
	m.form.SetRecord(rec)
	m.viewport.SetContent(RenderComparison(sc, m.width))
	m.viewport.GotoTop()
}

// SetProgress updates the progress bar.
func (m *RatingModel) SetProgress(p session.Progress) {
	m.progress = p
}

// SetStatus sets the status line. A non-nil err is shown instead of msg.
func (m *RatingModel) SetStatus(msg string, err error) {
	m.status = msg
	m.err = err
}

// SetCtrlCPending shows or hides the exit confirmation hint.
func (m *RatingModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}

// Form returns the form model.
func (m RatingModel) Form() FormModel {
	return m.form
}

// Update handles messages for the rating view.
func (m RatingModel) Update(msg tea.Msg) (RatingModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyCtrlP:
			return m, func() tea.Msg { return PreviousStoryMsg{} }
		case tui.KeyCtrlN:
			return m, func() tea.Msg { return NextStoryMsg{} }
		case tui.KeyCtrlS:
			rec := m.form.Record()
			return m, func() tea.Msg { return SaveRatingMsg{Record: rec} }
		case tui.KeyCtrlE:
			return m, func() tea.Msg { return ExportRequestMsg{} }
		case tui.KeyCtrlO:
			return m, func() tea.Msg { return ReloadRequestMsg{} }
		case tui.KeyPgUp, tui.KeyPgDn:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight(msg.Height)
		if m.total > 0 {
			m.viewport.SetContent(RenderComparison(m.story, m.width))
		}
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the rating view.
func (m RatingModel) View() string {
	var b strings.Builder

	header := tui.TitleStyle.Render(fmt.Sprintf("Story %d of %d", m.pos, m.total)) +
		tui.DimStyle.Render("  ID: "+m.story.StoryID)
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render(fmt.Sprintf("%3.f%% of comparison shown above", m.viewport.ScrollPercent()*100)))
	b.WriteString("\n\n")

	b.WriteString(m.form.View())
	b.WriteString("\n")

	b.WriteString(renderProgress(m.progress, m.width/3))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(tui.ErrorStyle.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(tui.SuccessStyle.Render(m.status))
	}
	b.WriteString("\n")

	footer := tui.HelpLine(
		tui.DefaultKeyMap.Previous,
		tui.DefaultKeyMap.Next,
		tui.DefaultKeyMap.Save,
		tui.DefaultKeyMap.Export,
		tui.DefaultKeyMap.ScrollDn,
	)
	if m.ctrlCPending {
		footer = "Press Ctrl+C again to exit"
	}
	b.WriteString(tui.StatusBarStyle.Width(m.width).Render(footer))

	return b.String()
}

// renderProgress draws "Progress: 2/5 stories rated" with a colored bar.
func renderProgress(p session.Progress, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(p.Fraction()*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	bar := tui.ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		tui.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
	label := fmt.Sprintf("Progress: %d/%d stories rated", p.Rated, p.Total)
	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", label)
}
