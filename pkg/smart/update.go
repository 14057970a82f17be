package smart

import (
	"encoding/json"
	"fmt"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

const (
	OutcomeSuccess   = "success"
	OutcomeAmbiguous = "ambiguous"
)

// UpdateOutcome is the answer to a natural-language update. On success Task
// holds the updated record; when the text matched several tasks, Matches
// lists the candidates and nothing was changed.
type UpdateOutcome struct {
	Status  string       `json:"status"`
	Task    *model.Task  `json:"task,omitempty"`
	Matches []model.Task `json:"matches,omitempty"`
	Message string       `json:"message,omitempty"`
}

func (o UpdateOutcome) Ambiguous() bool { return o.Status == OutcomeAmbiguous }

// DecodeUpdate parses a smart-update response.
func DecodeUpdate(raw []byte) (UpdateOutcome, error) {
	var out UpdateOutcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return UpdateOutcome{}, &model.ParseError{Op: "smart update", Err: err}
	}
	switch out.Status {
	case OutcomeSuccess:
		if out.Task == nil || out.Task.ID == "" {
			return UpdateOutcome{}, &model.ParseError{Op: "smart update", Err: fmt.Errorf("success without task")}
		}
	case OutcomeAmbiguous:
	default:
		return UpdateOutcome{}, &model.ParseError{Op: "smart update", Err: fmt.Errorf("unknown status %q", out.Status)}
	}
	return out, nil
}
