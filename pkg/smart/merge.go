// Package smart handles the language-model side of task entry: shaping the
// current-time hint sent with a request and normalizing what comes back.
package smart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Normalize turns a smart-add response, either one task object or an array
// of them, into a slice in the order the service returned them.
func Normalize(raw []byte) ([]model.Task, error) {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 {
		return nil, &model.ParseError{Op: "smart add", Err: errors.New("empty response")}
	}

	var tasks []model.Task
	switch body[0] {
	case '{':
		var t model.Task
		if err := json.Unmarshal(body, &t); err != nil {
			return nil, &model.ParseError{Op: "smart add", Err: err}
		}
		tasks = []model.Task{t}
	case '[':
		if err := json.Unmarshal(body, &tasks); err != nil {
			return nil, &model.ParseError{Op: "smart add", Err: err}
		}
	default:
		return nil, &model.ParseError{Op: "smart add", Err: fmt.Errorf("expected task object or array, got %.20q", body)}
	}

	for i, t := range tasks {
		if t.ID == "" || t.Title == "" {
			return nil, &model.ParseError{Op: "smart add", Err: fmt.Errorf("task %d is missing id or title", i)}
		}
	}
	return tasks, nil
}

// CurrentTime renders now the way the language model expects its time
// context, e.g. "Saturday, January 3, 2026, 8:50 AM GMT+05:30".
func CurrentTime(now time.Time) string {
	return now.Format("Monday, January 2, 2006, 3:04 PM") + " GMT" + now.Format("-07:00")
}
