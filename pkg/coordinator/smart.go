package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/smart"
)

var errNoAssistant = errors.New("no language-model service configured")

// SmartAdd asks the language model to turn text into one or more tasks and
// prepends them to the store in the order returned. Nothing is applied
// before the service answers.
func (c *Coordinator) SmartAdd(ctx context.Context, text string) ([]model.Task, error) {
	if c.assistant == nil {
		return nil, errNoAssistant
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: nothing to add", model.ErrInvalidTask)
	}

	raw, err := c.assistant.SmartAdd(ctx, text, smart.CurrentTime(c.now()))
	if err != nil {
		return nil, err
	}
	tasks, err := smart.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if err := c.store.InsertManyFront(tasks); err != nil {
		return nil, err
	}
	c.log.Debug("smart add applied", "tasks", len(tasks))
	return tasks, nil
}

// SmartUpdate asks the language model to apply a described change. The
// service performs the update itself, so the confirmed record goes straight
// into the store. An ambiguous outcome changes nothing.
func (c *Coordinator) SmartUpdate(ctx context.Context, text string) (smart.UpdateOutcome, error) {
	if c.assistant == nil {
		return smart.UpdateOutcome{}, errNoAssistant
	}
	raw, err := c.assistant.SmartUpdate(ctx, text)
	if err != nil {
		return smart.UpdateOutcome{}, err
	}
	outcome, err := smart.DecodeUpdate(raw)
	if err != nil {
		return smart.UpdateOutcome{}, err
	}
	if outcome.Ambiguous() {
		return outcome, nil
	}

	if err := c.store.Replace(*outcome.Task); err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return smart.UpdateOutcome{}, err
		}
		c.log.Info("smart update touched an unknown task, resyncing", "id", outcome.Task.ID)
		if err := c.Resync(ctx); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// Search runs a natural-language query. Results are not merged into the store.
func (c *Coordinator) Search(ctx context.Context, text string) ([]model.Task, error) {
	if c.assistant == nil {
		return nil, errNoAssistant
	}
	return c.assistant.Search(ctx, text)
}
