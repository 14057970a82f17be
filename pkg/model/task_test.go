package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTask(t *testing.T) {
	input := `{
		"id": "7b1c",
		"title": "Buy milk",
		"description": null,
		"due_date": "2024-01-02T09:00:00+05:30",
		"priority": "high",
		"status": "pending",
		"category": "shopping",
		"tags": ["errand"],
		"created_at": "2024-01-01T08:00:00.123456+00:00"
	}`

	var task Task
	require.NoError(t, json.Unmarshal([]byte(input), &task))

	assert.Equal(t, "7b1c", task.ID)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, []string{"errand"}, task.Tags)
	due, ok := task.Due()
	require.True(t, ok)
	assert.True(t, due.Equal(time.Date(2024, 1, 2, 3, 30, 0, 0, time.UTC)))
	assert.True(t, task.CreatedAt.Valid())
}

func TestTimestampFormats(t *testing.T) {
	cases := map[string]time.Time{
		"2024-01-02T09:00:00":                       time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local),
		"2024-01-02T09:00":                          time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local),
		"2024-01-02":                                time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local),
		"2024-01-02T09:00:00Z":                      time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		"2024-01-02T09:00:00Z/2024-01-02T10:00:00Z": time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), "%s: got %v want %v", in, got, want)
	}
}

func TestInvalidDueDateIsAbsent(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","title":"x","due_date":"next blursday"}`), &task))

	_, ok := task.Due()
	assert.False(t, ok)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "next blursday", task.DueDate.Raw)

	out, err := json.Marshal(task.DueDate)
	require.NoError(t, err)
	assert.JSONEq(t, `"next blursday"`, string(out))
}

func TestNullDueDate(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","title":"x","due_date":null}`), &task))
	_, ok := task.Due()
	assert.False(t, ok)
}

func TestPatchPreservesUntouchedFields(t *testing.T) {
	due := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	task := Task{
		ID:          "1",
		Title:       "Write report",
		Description: "Q1 numbers",
		DueDate:     NewTimestamp(due),
		Priority:    PriorityHigh,
		Status:      StatusPending,
		Category:    "work",
		Tags:        []string{"q1"},
		CreatedAt:   Timestamp{Time: due.Add(-48 * time.Hour)},
	}
	done := StatusCompleted

	got := Patch{Status: &done}.Apply(task)

	want := task.Clone()
	want.Status = StatusCompleted
	assert.Equal(t, want, got)
	assert.Equal(t, StatusPending, task.Status, "original must not change")
}

func TestPatchValidate(t *testing.T) {
	assert.ErrorIs(t, Patch{}.Validate(), ErrInvalidTask)

	blank := "  "
	assert.ErrorIs(t, Patch{Title: &blank}.Validate(), ErrInvalidTask)

	bad := Priority("urgent")
	assert.ErrorIs(t, Patch{Priority: &bad}.Validate(), ErrInvalidTask)

	title := "ok"
	assert.NoError(t, Patch{Title: &title}.Validate())
}

func TestPatchEncodesOnlySetFields(t *testing.T) {
	done := StatusCompleted
	out, err := json.Marshal(Patch{Status: &done})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed"}`, string(out))
}

func TestDraftNormalize(t *testing.T) {
	d := Draft{Title: "  Call mom  "}
	require.NoError(t, d.Normalize())
	assert.Equal(t, "Call mom", d.Title)
	assert.Equal(t, PriorityMedium, d.Priority)

	empty := Draft{Title: " "}
	assert.ErrorIs(t, empty.Normalize(), ErrInvalidTask)
}

func TestCloneDoesNotAlias(t *testing.T) {
	task := Task{ID: "1", Tags: []string{"a"}, DueDate: NewTimestamp(time.Now())}
	c := task.Clone()
	c.Tags[0] = "b"
	c.DueDate.Time = time.Time{}

	assert.Equal(t, "a", task.Tags[0])
	assert.True(t, task.DueDate.Valid())
}
