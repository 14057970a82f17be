package views

import (
	"sort"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Placement is a task positioned in a week grid cell. Tasks sharing a cell
// split its width evenly: this one covers [Slot/Slots, (Slot+1)/Slots).
type Placement struct {
	Task   model.Task
	Day    int
	Hour   int
	Minute int
	Slot   int
	Slots  int
}

// Width is the fraction of the cell this placement covers.
func (p Placement) Width() float64 { return 1 / float64(p.Slots) }

// Offset is the left edge of this placement as a fraction of the cell.
func (p Placement) Offset() float64 { return float64(p.Slot) / float64(p.Slots) }

// NowMarker locates the current time in the grid. Visible is false when
// now falls outside the displayed week.
type NowMarker struct {
	Visible bool
	Day     int
	Hour    int
	// Fraction is how far through the hour now is, in [0, 1).
	Fraction float64
}

type WeekGrid struct {
	Start time.Time
	Days  [DaysPerWeek]time.Time
	Cells [DaysPerWeek][HoursPerDay][]Placement
	Now   NowMarker
}

// Cell returns the placements at (day, hour).
func (g WeekGrid) Cell(day, hour int) []Placement {
	return g.Cells[day][hour]
}

// Count returns the number of placed tasks.
func (g WeekGrid) Count() int {
	n := 0
	for d := range g.Cells {
		for h := range g.Cells[d] {
			n += len(g.Cells[d][h])
		}
	}
	return n
}

// BuildWeekGrid places every dated task due in the Monday-started week
// containing weekStart into its (day, hour) cell.
func BuildWeekGrid(tasks []model.Task, weekStart, now time.Time) WeekGrid {
	start := StartOfWeek(weekStart)
	loc := start.Location()
	end := start.AddDate(0, 0, DaysPerWeek)

	g := WeekGrid{Start: start}
	for i := range g.Days {
		g.Days[i] = start.AddDate(0, 0, i)
	}

	for _, t := range tasks {
		due, ok := dueIn(t, loc)
		if !ok || due.Before(start) || !due.Before(end) {
			continue
		}
		day := MondayIndex(due.Weekday())
		g.Cells[day][due.Hour()] = append(g.Cells[day][due.Hour()], Placement{
			Task:   t,
			Day:    day,
			Hour:   due.Hour(),
			Minute: due.Minute(),
		})
	}

	for d := range g.Cells {
		for h := range g.Cells[d] {
			cell := g.Cells[d][h]
			sort.SliceStable(cell, func(i, j int) bool {
				if cell[i].Minute != cell[j].Minute {
					return cell[i].Minute < cell[j].Minute
				}
				return cell[i].Task.ID < cell[j].Task.ID
			})
			for i := range cell {
				cell[i].Slot = i
				cell[i].Slots = len(cell)
			}
		}
	}

	g.Now = nowMarker(start, end, now.In(loc))
	return g
}

func nowMarker(start, end, now time.Time) NowMarker {
	if now.Before(start) || !now.Before(end) {
		return NowMarker{}
	}
	return NowMarker{
		Visible:  true,
		Day:      MondayIndex(now.Weekday()),
		Hour:     now.Hour(),
		Fraction: float64(now.Minute()*60+now.Second()) / 3600,
	}
}
