package views

import (
	"sort"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// DayAgenda returns the tasks due on date's calendar day, earliest first.
// The day is taken in date's location. Undated tasks never appear.
func DayAgenda(tasks []model.Task, date time.Time) []model.Task {
	loc := date.Location()
	var out []model.Task
	for _, t := range tasks {
		due, ok := dueIn(t, loc)
		if !ok || !SameDay(due, date, loc) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Due()
		b, _ := out[j].Due()
		return a.Before(b)
	})
	return out
}

// Unscheduled returns the tasks without a usable due date, in store order.
func Unscheduled(tasks []model.Task) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if _, ok := t.Due(); !ok {
			out = append(out, t)
		}
	}
	return out
}

// Overdue returns unfinished tasks due before now, oldest first.
func Overdue(tasks []model.Task, now time.Time) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.IsCompleted() {
			continue
		}
		if due, ok := t.Due(); ok && due.Before(now) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Due()
		b, _ := out[j].Due()
		return a.Before(b)
	})
	return out
}
