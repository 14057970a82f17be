// Package views derives the dashboard's presentations from a task list.
//
// Every function here is pure: it takes the current store contents and
// recomputes from scratch. Nothing is cached between calls.
package views

import (
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// DaysPerWeek and HoursPerDay size the week grid.
const (
	DaysPerWeek = 7
	HoursPerDay = 24
)

// MondayIndex maps a weekday to a Monday-first column: Monday is 0 and
// Sunday is 6. All views go through this so they agree on columns.
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -MondayIndex(day.Weekday()))
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// dueIn returns the task's due date converted to loc.
func dueIn(t model.Task, loc *time.Location) (time.Time, bool) {
	due, ok := t.Due()
	if !ok {
		return time.Time{}, false
	}
	return due.In(loc), true
}
