package google

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"google.golang.org/api/calendar/v3"
)

const (
	// TaskIDProperty is the private extended property carrying the task id.
	TaskIDProperty = "taskboard_id"
	// EventDuration is the length of a mirrored event.
	EventDuration = 30 * time.Minute
)

// ErrUndated is returned for tasks without a usable due date.
var ErrUndated = errors.New("task has no due date")

// ConvertTaskToEvent builds the calendar event mirroring a task.
func ConvertTaskToEvent(task model.Task, colorID string, now time.Time) (*calendar.Event, error) {
	due, ok := task.Due()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndated, task.ID)
	}

	prefix := ""
	if task.IsCompleted() {
		prefix = "✓"
	} else if due.Before(now) {
		prefix = "!"
	}
	summary := task.Title
	if prefix != "" {
		summary = fmt.Sprintf("%s %s", prefix, task.Title)
	}

	var desc strings.Builder
	if len(task.Tags) > 0 {
		for _, tag := range task.Tags {
			desc.WriteString(fmt.Sprintf("#%s ", tag))
		}
		desc.WriteString("\n\n")
	}
	if task.Description != "" {
		desc.WriteString(task.Description)
		desc.WriteString("\n\n")
	}
	desc.WriteString(fmt.Sprintf("Status: %s\n", task.Status))
	desc.WriteString(fmt.Sprintf("Priority: %s\n", task.Priority))
	if task.Category != "" {
		desc.WriteString(fmt.Sprintf("Category: %s\n", task.Category))
	}
	desc.WriteString(fmt.Sprintf("ID: %s\n", task.ID))

	return &calendar.Event{
		Summary:     summary,
		Description: desc.String(),
		ColorId:     colorID,
		Start: &calendar.EventDateTime{
			DateTime: due.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: due.Add(EventDuration).UTC().Format(time.RFC3339),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{TaskIDProperty: task.ID},
		},
	}, nil
}

// EventNeedsUpdate returns a patch with the fields of target that differ from
// existing, or nil when the event is already current.
func EventNeedsUpdate(existing, target *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}

	same, err := sameTimes(existing, target)
	if err != nil {
		return nil, err
	}
	if !same {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

func sameTimes(existing, target *calendar.Event) (bool, error) {
	if existing.Start == nil || existing.End == nil || existing.Start.DateTime == "" || existing.End.DateTime == "" {
		return false, nil
	}
	pairs := [][2]string{
		{existing.Start.DateTime, target.Start.DateTime},
		{existing.End.DateTime, target.End.DateTime},
	}
	for _, p := range pairs {
		a, err := time.Parse(time.RFC3339, p[0])
		if err != nil {
			return false, err
		}
		b, err := time.Parse(time.RFC3339, p[1])
		if err != nil {
			return false, err
		}
		if !a.Equal(b) {
			return false, nil
		}
	}
	return true, nil
}
