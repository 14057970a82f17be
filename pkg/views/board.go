package views

import (
	"sort"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Board is the sticky-note view: unfinished and finished tasks.
type Board struct {
	Active    []model.Task
	Completed []model.Task
}

// Partition splits tasks by completion. Each side lists high priority first,
// then newest created first; remaining ties keep store order.
func Partition(tasks []model.Task) Board {
	var b Board
	for _, t := range tasks {
		if t.IsCompleted() {
			b.Completed = append(b.Completed, t)
		} else {
			b.Active = append(b.Active, t)
		}
	}
	sortBoard(b.Active)
	sortBoard(b.Completed)
	return b
}

func sortBoard(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return boardBefore(tasks[i], tasks[j])
	})
}

func boardBefore(a, b model.Task) bool {
	aHigh, bHigh := a.Priority == model.PriorityHigh, b.Priority == model.PriorityHigh
	if aHigh != bHigh {
		return aHigh
	}
	return a.CreatedAt.Time.After(b.CreatedAt.Time)
}
