package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/storysense-dev/storysense/internal/rating"
	"github.com/storysense-dev/storysense/internal/tui"
)

// gridRow is one A/B score pair in the rating form.
type gridRow struct {
	label      string
	help       string
	facet      rating.Facet
	quality    rating.Quality
	preference bool
}

var gridRows = buildGridRows()

func buildGridRows() []gridRow {
	rows := make([]gridRow, 0, len(rating.Facets)+len(rating.Qualities)+1)
	for _, f := range rating.Facets {
		rows = append(rows, gridRow{label: string(f), help: rating.FacetHelp[f], facet: f})
	}
	for _, q := range rating.Qualities {
		label := strings.ToUpper(string(q[:1])) + string(q[1:])
		rows = append(rows, gridRow{label: label, help: rating.QualityHelp[q], quality: q})
	}
	rows = append(rows, gridRow{label: "Preference", help: rating.PreferenceHelp, preference: true})
	return rows
}

// Focusable fields after the score grid.
var (
	fieldComment = len(gridRows)
	fieldWinner  = len(gridRows) + 1
	fieldCount   = len(gridRows) + 2
)

// Column selects which arm a score edit applies to.
const (
	columnA = 0
	columnB = 1
)

// FormModel is the rating form: an A/B score grid, a comment and a verdict.
type FormModel struct {
	scores  [2][]int
	winner  int
	comment textinput.Model
	focus   int
	column  int
	width   int
}

// NewFormModel returns a form holding the default record.
func NewFormModel(width int) FormModel {
	ti := textinput.New()
	ti.Placeholder = "Any additional observations..."
	ti.CharLimit = 2000
	ti.Width = formInputWidth(width)

	m := FormModel{comment: ti, width: width}
	m.SetRecord(rating.NewRecord())
	return m
}

func formInputWidth(width int) int {
	if width-20 < 20 {
		return 20
	}
	return width - 20
}

// SetRecord loads rec into the form and moves focus to the first field.
func (m *FormModel) SetRecord(rec rating.Record) {
	m.scores = [2][]int{make([]int, len(gridRows)), make([]int, len(gridRows))}
	for i, row := range gridRows {
		m.scores[columnA][i] = rating.Clamp(rowValue(row, rec.ArmA, rec.ArmAQuality, rec.ArmAPreference))
		m.scores[columnB][i] = rating.Clamp(rowValue(row, rec.ArmB, rec.ArmBQuality, rec.ArmBPreference))
	}
	m.winner = 0
	for i, w := range rating.Winners {
		if w == rec.Winner {
			m.winner = i
		}
	}
	m.comment.SetValue(rec.Comments)
	m.focus = 0
	m.column = columnA
	m.comment.Blur()
}

func rowValue(row gridRow, facets map[rating.Facet]int, qualities map[rating.Quality]int, pref int) int {
	switch {
	case row.preference:
		return pref
	case row.quality != "":
		return qualities[row.quality]
	default:
		return facets[row.facet]
	}
}

// Record builds a rating record from the form's current values.
func (m FormModel) Record() rating.Record {
	rec := rating.Record{
		ArmA:        make(map[rating.Facet]int, len(rating.Facets)),
		ArmAQuality: make(map[rating.Quality]int, len(rating.Qualities)),
		ArmB:        make(map[rating.Facet]int, len(rating.Facets)),
		ArmBQuality: make(map[rating.Quality]int, len(rating.Qualities)),
		Comments:    m.comment.Value(),
		Winner:      rating.Winners[m.winner],
	}
	for i, row := range gridRows {
		a, b := m.scores[columnA][i], m.scores[columnB][i]
		switch {
		case row.preference:
			rec.ArmAPreference, rec.ArmBPreference = a, b
		case row.quality != "":
			rec.ArmAQuality[row.quality], rec.ArmBQuality[row.quality] = a, b
		default:
			rec.ArmA[row.facet], rec.ArmB[row.facet] = a, b
		}
	}
	return rec
}

// Focus returns the focused field index.
func (m FormModel) Focus() int {
	return m.focus
}

// Update handles form keys. Story-level keys are handled by the caller.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyUp:
			return m, m.moveFocus(-1)
		case tui.KeyDown:
			return m, m.moveFocus(1)
		case tui.KeyTab:
			if m.focus < fieldComment {
				m.column = 1 - m.column
			}
			return m, nil
		case tui.KeyLeft, tui.KeyRight:
			delta := 1
			if msg.String() == tui.KeyLeft {
				delta = -1
			}
			switch {
			case m.focus < fieldComment:
				m.scores[m.column][m.focus] = rating.Clamp(m.scores[m.column][m.focus] + delta)
				return m, nil
			case m.focus == fieldWinner:
				m.winner = (m.winner + delta + len(rating.Winners)) % len(rating.Winners)
				return m, nil
			}
		case "1", "2", "3", "4", "5":
			if m.focus < fieldComment {
				m.scores[m.column][m.focus] = int(msg.String()[0] - '0')
				return m, nil
			}
			if m.focus == fieldWinner {
				if i := int(msg.String()[0] - '1'); i < len(rating.Winners) {
					m.winner = i
				}
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.comment.Width = formInputWidth(msg.Width)
		return m, nil
	}

	if m.focus == fieldComment {
		var cmd tea.Cmd
		m.comment, cmd = m.comment.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *FormModel) moveFocus(delta int) tea.Cmd {
	next := m.focus + delta
	if next < 0 || next >= fieldCount {
		return nil
	}
	m.focus = next
	if m.focus == fieldComment {
		return m.comment.Focus()
	}
	m.comment.Blur()
	return nil
}

// View renders the form.
func (m FormModel) View() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%-20s %s  %s\n", "", m.columnHeader(columnA), m.columnHeader(columnB)))
	for i, row := range gridRows {
		switch i {
		case 0:
			b.WriteString(tui.TitleStyle.Render("INVEST"))
			b.WriteString("\n")
		case len(rating.Facets):
			b.WriteString(tui.TitleStyle.Render("Quality"))
			b.WriteString("\n")
		case len(rating.Facets) + len(rating.Qualities):
			b.WriteString(tui.TitleStyle.Render("Overall"))
			b.WriteString("\n")
		}

		label := fmt.Sprintf("%-20s", row.label)
		if m.focus == i {
			label = tui.SelectedStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString(" ")
		b.WriteString(m.cell(i, columnA))
		b.WriteString("  ")
		b.WriteString(m.cell(i, columnB))
		b.WriteString("  ")
		b.WriteString(tui.DimStyle.Render(row.help))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.fieldLabel(fieldComment, "Comments"))
	b.WriteString("\n")
	b.WriteString(m.comment.View())
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel(fieldWinner, "Which is better?"))
	b.WriteString("\n")
	for i, w := range rating.Winners {
		mark := "( )"
		if i == m.winner {
			mark = "(•)"
		}
		opt := fmt.Sprintf("%s %s", mark, w.Label())
		if i == m.winner && m.focus == fieldWinner {
			opt = tui.SelectedStyle.Render(opt)
		}
		b.WriteString(opt)
		b.WriteString("   ")
	}
	b.WriteString("\n")

	return b.String()
}

func (m FormModel) columnHeader(col int) string {
	if col == columnA {
		return tui.ArmAStyle.Render("Arm A")
	}
	return tui.ArmBStyle.Render("Arm B")
}

func (m FormModel) cell(row, col int) string {
	v := m.scores[col][row]
	s := fmt.Sprintf("%s %d", scoreDots(v), v)
	if m.focus == row && m.column == col {
		return tui.SelectedStyle.Render("›" + s)
	}
	return " " + s
}

func (m FormModel) fieldLabel(field int, label string) string {
	if m.focus == field {
		return tui.SelectedStyle.Render("› " + label)
	}
	return "  " + label
}

// scoreDots renders a score as filled and empty dots, e.g. ●●●○○.
func scoreDots(v int) string {
	return strings.Repeat("●", v) + strings.Repeat("○", rating.MaxScore-v)
}
