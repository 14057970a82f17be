package views

import (
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// MaxDots is how many priority dots a month cell shows.
const MaxDots = 3

type DayCell struct {
	Date    time.Time
	InMonth bool
	Today   bool
	Count   int
	High    int
	Medium  int
	Low     int
	// Dots lists up to MaxDots priorities, highest first.
	Dots []model.Priority
}

type MonthOverview struct {
	Month time.Time
	Weeks [][DaysPerWeek]DayCell
}

// BuildMonthOverview lays out month as Monday-first weeks, padded with days
// from the neighbouring months, and counts the tasks due on each day.
func BuildMonthOverview(tasks []model.Task, month, today time.Time) MonthOverview {
	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	gridStart := StartOfWeek(first)
	gridEnd := last.AddDate(0, 0, DaysPerWeek-1-MondayIndex(last.Weekday()))

	type tally struct{ high, medium, low int }
	counts := map[dayKey]*tally{}
	for _, t := range tasks {
		due, ok := dueIn(t, loc)
		if !ok {
			continue
		}
		day := StartOfDay(due)
		if day.Before(gridStart) || day.After(gridEnd) {
			continue
		}
		c := counts[keyOf(day)]
		if c == nil {
			c = &tally{}
			counts[keyOf(day)] = c
		}
		switch t.Priority {
		case model.PriorityHigh:
			c.high++
		case model.PriorityLow:
			c.low++
		default:
			c.medium++
		}
	}

	m := MonthOverview{Month: first}
	for weekStart := gridStart; !weekStart.After(gridEnd); weekStart = weekStart.AddDate(0, 0, DaysPerWeek) {
		var week [DaysPerWeek]DayCell
		for i := range week {
			day := weekStart.AddDate(0, 0, i)
			cell := DayCell{
				Date:    day,
				InMonth: day.Month() == first.Month(),
				Today:   SameDay(day, today, loc),
			}
			if c := counts[keyOf(day)]; c != nil {
				cell.High, cell.Medium, cell.Low = c.high, c.medium, c.low
				cell.Count = c.high + c.medium + c.low
				cell.Dots = dots(c.high, c.medium, c.low)
			}
			week[i] = cell
		}
		m.Weeks = append(m.Weeks, week)
	}
	return m
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

func dots(high, medium, low int) []model.Priority {
	var out []model.Priority
	for _, group := range []struct {
		p model.Priority
		n int
	}{{model.PriorityHigh, high}, {model.PriorityMedium, medium}, {model.PriorityLow, low}} {
		for i := 0; i < group.n && len(out) < MaxDots; i++ {
			out = append(out, group.p)
		}
	}
	return out
}
