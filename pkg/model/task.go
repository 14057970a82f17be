package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a task record as returned by the task service.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *Timestamp `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

// Due returns the due date and whether the task has a usable one.
// Missing and unparseable due dates both report false.
func (t Task) Due() (time.Time, bool) {
	if t.DueDate == nil || !t.DueDate.Valid() {
		return time.Time{}, false
	}
	return t.DueDate.Time, true
}

func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// Clone returns a deep copy so callers can't alias store-owned slices or pointers.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		c.UpdatedAt = &u
	}
	c.Tags = slices.Clone(t.Tags)
	return c
}

// Draft is the body of a create request: a task without server-assigned fields.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// Normalize trims the draft, applies the default priority and validates it.
func (d *Draft) Normalize() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	if d.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if !d.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, d.Priority)
	}
	return nil
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Category    *string    `json:"category,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.Priority == nil && p.Status == nil && p.Category == nil
}

func (p Patch) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: no updates provided", ErrInvalidTask)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidTask)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, *p.Status)
	}
	return nil
}

// Apply returns a copy of t with the patch merged in.
func (p Patch) Apply(t Task) Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.DueDate != nil {
		out.DueDate = &Timestamp{Time: *p.DueDate}
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	return out
}

// Imported is a task read from another tool. Completed tasks are created as
// drafts and then marked completed.
type Imported struct {
	Draft     Draft
	Completed bool
	Source    string
}
