package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/taskboard/pkg/views"
)

const weekColumnWidth = 16

// Week renders the hours of the grid that hold tasks or the now marker.
func (th *Theme) Week(g views.WeekGrid) string {
	cellStyle := lipgloss.NewStyle().Width(weekColumnWidth).MaxWidth(weekColumnWidth)
	hourStyle := lipgloss.NewStyle().Width(6)

	header := []string{hourStyle.Render("")}
	for i, d := range g.Days {
		label := d.Format("Mon 02")
		if g.Now.Visible && g.Now.Day == i {
			label = nowStyle.Render(label)
		}
		header = append(header, cellStyle.Render(label))
	}

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}
	for h := 0; h < views.HoursPerDay; h++ {
		nowRow := g.Now.Visible && g.Now.Hour == h
		busy := false
		for d := 0; d < views.DaysPerWeek; d++ {
			if len(g.Cell(d, h)) > 0 {
				busy = true
				break
			}
		}
		if !busy && !nowRow {
			continue
		}

		label := fmt.Sprintf("%02d:00", h)
		if nowRow {
			label = nowStyle.Render(fmt.Sprintf("%02d:%02d", h, int(g.Now.Fraction*60)))
		}
		cols := []string{hourStyle.Render(label)}
		for d := 0; d < views.DaysPerWeek; d++ {
			cols = append(cols, cellStyle.Render(th.weekCell(g.Cell(d, h))))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	if g.Count() == 0 {
		rows = append(rows, mutedStyle.Render("Nothing scheduled this week."))
	}
	return strings.Join(rows, "\n") + "\n"
}

// weekCell splits the cell width evenly between its placements.
func (th *Theme) weekCell(cell []views.Placement) string {
	if len(cell) == 0 {
		return ""
	}
	width := int(float64(weekColumnWidth-1) * cell[0].Width())
	if width < 1 {
		width = 1
	}
	parts := make([]string, 0, len(cell))
	for _, p := range cell {
		title := truncate(p.Task.Title, width-1)
		parts = append(parts, th.priority(p.Task.Priority)+title)
	}
	return strings.Join(parts, "")
}

// Month renders the month grid with up to three priority dots per day.
func (th *Theme) Month(m views.MonthOverview) string {
	cellStyle := lipgloss.NewStyle().Width(8)
	var rows []string
	rows = append(rows, headerStyle.Render(m.Month.Format("January 2006")))

	var names []string
	for _, n := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		names = append(names, cellStyle.Render(n))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, names...))

	for _, week := range m.Weeks {
		var cols []string
		for _, c := range week {
			day := fmt.Sprintf("%2d", c.Date.Day())
			switch {
			case c.Today:
				day = nowStyle.Render(day)
			case !c.InMonth:
				day = mutedStyle.Render(day)
			}
			var dots strings.Builder
			for _, p := range c.Dots {
				dots.WriteString(th.priority(p))
			}
			cols = append(cols, cellStyle.Render(day+" "+dots.String()))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	return strings.Join(rows, "\n") + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
