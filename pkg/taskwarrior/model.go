package taskwarrior

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"
)

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, 'Z' indicates UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for CustomTime.
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Time.Format(taskwarriorTimeLayout) + `"`), nil
}

type Annotation struct {
	Description string      `json:"description"`
	Entry       *CustomTime `json:"entry"`
}

type Task struct {
	UUID        string       `json:"uuid"`
	Description string       `json:"description"`
	Due         *CustomTime  `json:"due,omitempty"`
	Scheduled   *CustomTime  `json:"scheduled,omitempty"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority,omitempty"`
	Project     string       `json:"project,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

var priorities = map[string]model.Priority{
	"H": model.PriorityHigh,
	"M": model.PriorityMedium,
	"L": model.PriorityLow,
}

// Imported maps the task onto a dashboard draft. The due date falls back to
// the scheduled date; annotations become the description.
func (t Task) Imported() model.Imported {
	d := model.Draft{
		Title:    t.Description,
		Priority: priorities[strings.ToUpper(t.Priority)],
		Category: t.Project,
		Tags:     t.Tags,
	}
	switch {
	case t.Due != nil && !t.Due.IsZero():
		due := t.Due.Time
		d.DueDate = &due
	case t.Scheduled != nil && !t.Scheduled.IsZero():
		scheduled := t.Scheduled.Time
		d.DueDate = &scheduled
	}
	if len(t.Annotations) > 0 {
		notes := make([]string, 0, len(t.Annotations))
		for _, a := range t.Annotations {
			notes = append(notes, a.Description)
		}
		d.Description = strings.Join(notes, "\n")
	}
	return model.Imported{Draft: d, Completed: t.Status == COMPLETED, Source: "taskwarrior:" + t.UUID}
}

// Importable reports whether the task should be brought over.
func (t Task) Importable() bool {
	return t.Status != DELETED && strings.TrimSpace(t.Description) != ""
}
