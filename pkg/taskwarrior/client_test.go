package taskwarrior

import (
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTask(t *testing.T) {
	input := `{
		"uuid": "f45a05b3-c12e-42e5-9c9c-333333333333",
		"description": "Buy milk",
		"status": "pending",
		"priority": "H",
		"due": "20230101T120000Z",
		"project": "Groceries",
		"tags": ["buy", "food"],
		"annotations": [
			{"entry": "20230101T120500Z", "description": "Don't forget almond milk"}
		]
	}`

	client := NewClient()
	task, err := client.ParseTask(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "f45a05b3-c12e-42e5-9c9c-333333333333", task.UUID)
	assert.Equal(t, "Buy milk", task.Description)
	assert.Equal(t, "Groceries", task.Project)
	assert.Len(t, task.Tags, 2)
	assert.Len(t, task.Annotations, 1)
	assert.True(t, task.Due.Time.Equal(time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)))

	imported := task.Imported()
	assert.Equal(t, "Buy milk", imported.Draft.Title)
	assert.Equal(t, model.PriorityHigh, imported.Draft.Priority)
	assert.Equal(t, "Groceries", imported.Draft.Category)
	assert.Equal(t, "Don't forget almond milk", imported.Draft.Description)
	require.NotNil(t, imported.Draft.DueDate)
	assert.False(t, imported.Completed)
}

func TestParseTasksArrayAndStream(t *testing.T) {
	client := NewClient()

	array := `[{"uuid":"1","description":"a","status":"pending"},{"uuid":"2","description":"b","status":"completed"}]`
	tasks, err := client.ParseTasks(strings.NewReader(array))
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	stream := "{\"uuid\":\"1\",\"description\":\"a\",\"status\":\"pending\"}\n{\"uuid\":\"2\",\"description\":\"b\",\"status\":\"pending\"}\n"
	tasks, err = client.ParseTasks(strings.NewReader(stream))
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = client.ParseTasks(strings.NewReader(`{"uuid":`))
	assert.Error(t, err)
}

func TestConvertSkipsDeleted(t *testing.T) {
	scheduled := &CustomTime{Time: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)}
	got := Convert([]Task{
		{UUID: "1", Description: "keep", Status: PENDING, Scheduled: scheduled, Priority: "l"},
		{UUID: "2", Description: "gone", Status: DELETED},
		{UUID: "3", Description: "done", Status: COMPLETED},
		{UUID: "4", Description: " ", Status: PENDING},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "keep", got[0].Draft.Title)
	assert.Equal(t, model.PriorityLow, got[0].Draft.Priority)
	require.NotNil(t, got[0].Draft.DueDate)
	assert.True(t, got[0].Draft.DueDate.Equal(scheduled.Time))
	assert.True(t, got[1].Completed)
	assert.Equal(t, model.Priority(""), got[1].Draft.Priority)
}

func TestCustomTimeRoundTrip(t *testing.T) {
	ct := CustomTime{Time: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)}
	b, err := ct.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"20230101T120000Z"`, string(b))

	var zero CustomTime
	require.NoError(t, zero.UnmarshalJSON([]byte(`""`)))
	assert.True(t, zero.IsZero())
	assert.Error(t, zero.UnmarshalJSON([]byte(`"yesterday"`)))
}
