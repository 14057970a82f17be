// Package index persists which calendar event mirrors which task, so a sync
// can find its events without searching the calendar.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const fileVersion = 1

// Link ties a task to the calendar event that mirrors it.
type Link struct {
	EventID  string    `json:"event_id"`
	SyncedAt time.Time `json:"synced_at"`
}

type linkFile struct {
	Version int             `json:"version"`
	Links   map[string]Link `json:"links"`
}

// Links is the task-to-event table kept next to the config. Changes stay in
// memory until Flush.
type Links struct {
	path string

	mu    sync.Mutex
	links map[string]Link
	dirty bool
}

// Open reads the links stored at path. A missing file is an empty table.
func Open(path string) (*Links, error) {
	l := &Links{path: path, links: make(map[string]Link)}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}

	var f linkFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to decode event links %s: %w", path, err)
	}
	if f.Version != fileVersion {
		return nil, fmt.Errorf("event links %s: unsupported version %d", path, f.Version)
	}
	for id, link := range f.Links {
		if id != "" && link.EventID != "" {
			l.links[id] = link
		}
	}
	return l, nil
}

func (l *Links) Path() string { return l.path }

func (l *Links) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.links)
}

// Lookup returns the link recorded for taskID.
func (l *Links) Lookup(taskID string) (Link, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	link, ok := l.links[taskID]
	return link, ok
}

// Record stores link for taskID, replacing any earlier one.
func (l *Links) Record(taskID string, link Link) {
	if taskID == "" || link.EventID == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.links[taskID] != link {
		l.links[taskID] = link
		l.dirty = true
	}
}

func (l *Links) Forget(taskID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.links[taskID]; ok {
		delete(l.links, taskID)
		l.dirty = true
	}
}

// Stale lists, in sorted order, the linked tasks for which keep is false.
func (l *Links) Stale(keep func(taskID string) bool) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for id := range l.links {
		if !keep(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Flush writes the table if it changed since it was opened or last flushed.
// The file is replaced through a rename so a crash never leaves it half
// written.
func (l *Links) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.dirty {
		return nil
	}

	b, err := json.MarshalIndent(linkFile{Version: fileVersion, Links: l.links}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return fmt.Errorf("failed to write event links: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write event links %s: %w", l.path, err)
	}
	l.dirty = false
	return nil
}
