// Package coordinator applies task mutations optimistically to the store and
// reconciles them against the task service.
//
// Updates and deletes touch the store before the request is sent. When the
// service confirms, the returned record replaces the local one. When it
// fails, the whole store is resynced from the service rather than rolled
// back record by record, and the error is returned once the resync is done.
// Creates and smart adds are applied only after the service answers, since
// there is no id to key a rollback on before that.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

// TaskService is the CRUD side of the task service.
type TaskService interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, d model.Draft) (model.Task, error)
	PatchTask(ctx context.Context, id string, p model.Patch) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Assistant is the language-model side of the task service.
type Assistant interface {
	SmartAdd(ctx context.Context, text, currentTime string) ([]byte, error)
	SmartUpdate(ctx context.Context, text string) ([]byte, error)
	Search(ctx context.Context, text string) ([]model.Task, error)
}

// Result is the terminal outcome of an asynchronous mutation.
type Result struct {
	Task model.Task
	Err  error
}

type Coordinator struct {
	store     *store.Store
	tasks     TaskService
	assistant Assistant
	log       *slog.Logger
	now       func() time.Time

	resyncs singleflight.Group
}

type Option func(*Coordinator)

func WithLogger(log *slog.Logger) Option { return func(c *Coordinator) { c.log = log } }

func WithClock(now func() time.Time) Option { return func(c *Coordinator) { c.now = now } }

// WithAssistant enables the smart add/update/search operations.
func WithAssistant(a Assistant) Option { return func(c *Coordinator) { c.assistant = a } }

func New(s *store.Store, tasks TaskService, opts ...Option) *Coordinator {
	c := &Coordinator{
		store: s,
		tasks: tasks,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Store() *store.Store { return c.store }

// Resync replaces the store with a fresh copy of the service's collection.
// Concurrent callers share one in-flight fetch.
func (c *Coordinator) Resync(ctx context.Context) error {
	_, err, shared := c.resyncs.Do("resync", func() (any, error) {
		tasks, err := c.tasks.ListTasks(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("resync: %w", err)
		}
		c.store.Reset(tasks)
		c.log.Info("store resynced", "tasks", len(tasks), "version", c.store.Version())
		return nil, nil
	})
	if shared {
		c.log.Debug("resync coalesced")
	}
	return err
}

// Create sends the draft and puts the confirmed task at the front of the
// store. On failure the store is left untouched.
func (c *Coordinator) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	if err := d.Normalize(); err != nil {
		return model.Task{}, err
	}
	task, err := c.tasks.CreateTask(ctx, d)
	if err != nil {
		return model.Task{}, err
	}
	if err := c.store.InsertFront(task); err != nil {
		return model.Task{}, err
	}
	c.log.Debug("task created", "id", task.ID)
	return task, nil
}

// Update applies p and waits for the confirmation.
func (c *Coordinator) Update(ctx context.Context, id string, p model.Patch) (model.Task, error) {
	res := <-c.UpdateAsync(ctx, id, p)
	return res.Task, res.Err
}

// UpdateAsync applies p to the store before returning and delivers the
// confirmed record, or the failure after a resync, on the channel. The
// channel is buffered so callers may drop it.
func (c *Coordinator) UpdateAsync(ctx context.Context, id string, p model.Patch) <-chan Result {
	out := make(chan Result, 1)
	if err := p.Validate(); err != nil {
		out <- Result{Err: err}
		return out
	}
	_, rev, err := c.store.Patch(id, p)
	if err != nil {
		out <- Result{Err: err}
		return out
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		confirmed, err := c.tasks.PatchTask(ctx, id, p)
		if err != nil {
			c.log.Error("update failed, resyncing", "id", id, "error", err)
			out <- Result{Err: c.resyncAfter(ctx, err)}
			return
		}
		applied, rerr := c.store.Reconcile(confirmed, rev)
		switch {
		case errors.Is(rerr, model.ErrNotFound):
			c.log.Debug("confirmation for removed task ignored", "id", id)
		case !applied:
			c.log.Warn("stale confirmation dropped", "id", id, "rev", rev)
		}
		out <- Result{Task: confirmed}
	}()
	return out
}

// Delete removes the task and waits for the confirmation.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	return (<-c.DeleteAsync(ctx, id)).Err
}

// DeleteAsync removes the task from the store before returning. Result.Task
// holds the removed record.
func (c *Coordinator) DeleteAsync(ctx context.Context, id string) <-chan Result {
	out := make(chan Result, 1)
	removed, err := c.store.Remove(id)
	if err != nil {
		out <- Result{Err: err}
		return out
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := c.tasks.DeleteTask(ctx, id); err != nil {
			c.log.Error("delete failed, resyncing", "id", id, "error", err)
			out <- Result{Task: removed, Err: c.resyncAfter(ctx, err)}
			return
		}
		out <- Result{Task: removed}
	}()
	return out
}

// ToggleStatus flips a task between completed and pending.
func (c *Coordinator) ToggleStatus(ctx context.Context, id string) (model.Task, error) {
	current, ok := c.store.Get(id)
	if !ok {
		return model.Task{}, fmt.Errorf("toggle %s: %w", id, model.ErrNotFound)
	}
	next := model.StatusCompleted
	if current.IsCompleted() {
		next = model.StatusPending
	}
	return c.Update(ctx, id, model.Patch{Status: &next})
}

// resyncAfter resyncs after a failed mutation and returns the mutation error,
// joined with the resync error if that failed too.
func (c *Coordinator) resyncAfter(ctx context.Context, cause error) error {
	if err := c.Resync(ctx); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
