package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/index"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// Mirror keeps one Google Calendar event per dated task.
type Mirror struct {
	srv        *calendar.Service
	calendarID string
	links      *index.Links
	palette    *colors.Palette
	log        *slog.Logger
	now        func() time.Time
}

// SyncReport summarizes a SyncAll run.
type SyncReport struct {
	Synced  int
	Removed int
	Skipped int
}

// NewMirror resolves calendarName and returns a mirror writing to it.
func NewMirror(ctx context.Context, srv *calendar.Service, calendarName string, links *index.Links, palette *colors.Palette, log *slog.Logger) (*Mirror, error) {
	calendarID, err := FindCalendar(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewMirrorWithID(srv, calendarID, links, palette, log), nil
}

// NewMirrorWithID returns a mirror writing to a known calendar id.
func NewMirrorWithID(srv *calendar.Service, calendarID string, links *index.Links, palette *colors.Palette, log *slog.Logger) *Mirror {
	if log == nil {
		log = slog.Default()
	}
	return &Mirror{
		srv:        srv,
		calendarID: calendarID,
		links:      links,
		palette:    palette,
		log:        log.With(slog.String("calendar", calendarID)),
		now:        time.Now,
	}
}

func (m *Mirror) colorID(category string) string {
	if m.palette == nil {
		return colors.UncategorizedSlot
	}
	return m.palette.ColorID(category)
}

// SyncTask creates the task's event or patches the existing one.
func (m *Mirror) SyncTask(ctx context.Context, task model.Task) (*calendar.Event, error) {
	event, err := ConvertTaskToEvent(task, m.colorID(task.Category), m.now())
	if err != nil {
		return nil, err
	}

	existing, err := m.findEvent(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("error searching for event: %w", err)
	}

	if existing != nil {
		patch, err := EventNeedsUpdate(existing, event)
		if err != nil {
			m.log.Warn("could not compare task with its calendar event", slog.String("task", task.ID), slog.Any("error", err))
			return nil, err
		}
		if patch == nil {
			m.link(task.ID, existing.Id)
			return existing, nil
		}
		updated, err := m.srv.Events.Patch(m.calendarID, existing.Id, patch).Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		m.link(task.ID, updated.Id)
		m.log.Debug("patched event", slog.String("task", task.ID), slog.String("event", updated.Id))
		return updated, nil
	}

	created, err := m.srv.Events.Insert(m.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	m.link(task.ID, created.Id)
	m.log.Debug("created event", slog.String("task", task.ID), slog.String("event", created.Id))
	return created, nil
}

// RemoveTask deletes the task's event, if there is one.
func (m *Mirror) RemoveTask(ctx context.Context, taskID string) error {
	existing, err := m.findEvent(ctx, taskID)
	if err != nil {
		return err
	}
	if existing != nil {
		err := m.srv.Events.Delete(m.calendarID, existing.Id).Context(ctx).Do()
		if err != nil && !isGone(err) {
			return err
		}
		m.log.Debug("deleted event", slog.String("task", taskID), slog.String("event", existing.Id))
	}
	m.links.Forget(taskID)
	return nil
}

// SyncAll mirrors every dated task and removes events whose task is gone or
// lost its due date. The links are saved even when some tasks fail.
func (m *Mirror) SyncAll(ctx context.Context, tasks []model.Task) (SyncReport, error) {
	var report SyncReport
	var errs []error

	dated := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if _, ok := t.Due(); !ok {
			report.Skipped++
			continue
		}
		dated[t.ID] = true
		if _, err := m.SyncTask(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", t.ID, err))
			continue
		}
		report.Synced++
	}

	stale := m.links.Stale(func(id string) bool { return dated[id] })
	for _, id := range stale {
		if err := m.RemoveTask(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", id, err))
			continue
		}
		report.Removed++
	}

	if err := m.links.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("save event links: %w", err))
	}
	m.log.Info("calendar synced",
		slog.Int("synced", report.Synced),
		slog.Int("removed", report.Removed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", len(errs)))
	return report, errors.Join(errs...)
}

// findEvent looks the linked event up first and falls back to searching
// the calendar by extended property.
func (m *Mirror) findEvent(ctx context.Context, taskID string) (*calendar.Event, error) {
	if link, ok := m.links.Lookup(taskID); ok {
		eventID := link.EventID
		event, err := m.srv.Events.Get(m.calendarID, eventID).Context(ctx).Do()
		if err == nil && event.Status != "cancelled" {
			return event, nil
		}
		if err != nil && !isGone(err) {
			m.log.Debug("linked event lookup failed", slog.String("event", eventID), slog.Any("error", err))
		}
	}

	events, err := m.srv.Events.List(m.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", TaskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	for _, e := range events.Items {
		if e.Status != "cancelled" {
			return e, nil
		}
	}
	return nil, nil
}

func (m *Mirror) link(taskID, eventID string) {
	m.links.Record(taskID, index.Link{EventID: eventID, SyncedAt: m.now().UTC()})
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
