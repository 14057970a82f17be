// Package render draws the dashboard views for a terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/views"
)

var (
	priorityColor = map[model.Priority]lipgloss.Color{
		model.PriorityHigh:   lipgloss.Color("#d50000"),
		model.PriorityMedium: lipgloss.Color("#f6bf26"),
		model.PriorityLow:    lipgloss.Color("#33b679"),
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	nowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d50000")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Faint(true)
)

// Theme colors tasks by priority and category.
type Theme struct {
	palette *colors.Palette
	loc     *time.Location
}

func NewTheme(palette *colors.Palette, loc *time.Location) *Theme {
	if loc == nil {
		loc = time.Local
	}
	return &Theme{palette: palette, loc: loc}
}

func (th *Theme) priority(p model.Priority) string {
	marker := "●"
	if c, ok := priorityColor[p]; ok {
		return lipgloss.NewStyle().Foreground(c).Render(marker)
	}
	return marker
}

func (th *Theme) category(c string) string {
	if c == "" {
		return ""
	}
	style := lipgloss.NewStyle()
	if th.palette != nil {
		style = style.Foreground(lipgloss.Color(th.palette.Hex(c)))
	}
	return style.Render("#" + c)
}

func (th *Theme) checkbox(t model.Task) string {
	switch t.Status {
	case model.StatusCompleted:
		return "[x]"
	case model.StatusInProgress:
		return "[~]"
	}
	return "[ ]"
}

// Line renders one task: checkbox, priority dot, title, due, category and id.
func (th *Theme) Line(t model.Task) string {
	title := t.Title
	if t.IsCompleted() {
		title = doneStyle.Render(title)
	}
	parts := []string{th.checkbox(t), th.priority(t.Priority), title}
	if due, ok := t.Due(); ok {
		parts = append(parts, mutedStyle.Render(due.In(th.loc).Format("Mon Jan 2 15:04")))
	} else if t.DueDate != nil && t.DueDate.Raw != "" {
		parts = append(parts, mutedStyle.Render("due ?"+t.DueDate.Raw))
	}
	if c := th.category(t.Category); c != "" {
		parts = append(parts, c)
	}
	parts = append(parts, mutedStyle.Render("("+t.ID+")"))
	return strings.Join(parts, " ")
}

// List renders tasks one per line.
func (th *Theme) List(tasks []model.Task) string {
	if len(tasks) == 0 {
		return mutedStyle.Render("No tasks found.") + "\n"
	}
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(th.Line(t))
		b.WriteByte('\n')
	}
	return b.String()
}

// Agenda renders one day's tasks with their times, plus overdue ones.
func (th *Theme) Agenda(date time.Time, day, overdue []model.Task) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(date.Format("Monday, January 2, 2006")))
	b.WriteString("\n")
	if len(overdue) > 0 {
		b.WriteString(nowStyle.Render(fmt.Sprintf("%d overdue", len(overdue))))
		b.WriteString("\n")
		for _, t := range overdue {
			b.WriteString("  ! " + th.Line(t) + "\n")
		}
	}
	if len(day) == 0 {
		b.WriteString(mutedStyle.Render("Nothing scheduled.") + "\n")
		return b.String()
	}
	for _, t := range day {
		due, _ := t.Due()
		b.WriteString("  " + due.In(date.Location()).Format("15:04") + "  " + th.Line(t) + "\n")
	}
	return b.String()
}

// Board renders the active and completed columns and the someday list.
func (th *Theme) Board(board views.Board, unscheduled []model.Task) string {
	active := headerStyle.Render(fmt.Sprintf("Active (%d)", len(board.Active))) + "\n" + th.List(board.Active)
	done := headerStyle.Render(fmt.Sprintf("Completed (%d)", len(board.Completed))) + "\n" + th.List(board.Completed)
	var b strings.Builder
	b.WriteString(active)
	b.WriteString("\n")
	b.WriteString(done)
	if len(unscheduled) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("Someday (%d)", len(unscheduled))))
		b.WriteString("\n")
		b.WriteString(th.List(unscheduled))
	}
	return b.String()
}
