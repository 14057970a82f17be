// Package store holds the session's authoritative in-memory task collection.
//
// Every write builds a new snapshot and swaps it in atomically, so readers
// never see a half-applied change. Each record also carries the revision of
// its latest optimistic write, which the coordinator uses to drop
// confirmations that arrive after a newer local write to the same record.
// Only Patch advances it: server data arriving through a resync, an insert
// or a replace never makes an in-flight confirmation stale.
package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

type snapshot struct {
	tasks   []model.Task
	pos     map[string]int
	revs    map[string]uint64
	version uint64
}

func (s *snapshot) index(id string) (int, bool) {
	i, ok := s.pos[id]
	return i, ok
}

// Store is safe for concurrent use. Writers are serialized by mu; readers
// only load the current snapshot.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
	nextRev uint64
}

func New() *Store {
	s := &Store{}
	s.current.Store(&snapshot{pos: map[string]int{}, revs: map[string]uint64{}})
	return s
}

// List returns a copy of the current collection in store order.
func (s *Store) List() []model.Task {
	snap := s.current.Load()
	out := make([]model.Task, len(snap.tasks))
	for i, t := range snap.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Get(id string) (model.Task, bool) {
	snap := s.current.Load()
	i, ok := snap.index(id)
	if !ok {
		return model.Task{}, false
	}
	return snap.tasks[i].Clone(), true
}

func (s *Store) Len() int { return len(s.current.Load().tasks) }

// Version increases on every successful write.
func (s *Store) Version() uint64 { return s.current.Load().version }

// Revision returns the revision of the record's latest optimistic write, 0 if
// it has none or is absent.
func (s *Store) Revision(id string) uint64 { return s.current.Load().revs[id] }

// InsertFront puts task at the front of the collection.
func (s *Store) InsertFront(task model.Task) error {
	return s.InsertManyFront([]model.Task{task})
}

// InsertManyFront prepends tasks keeping their order. A task whose id is
// already present replaces the old record, which keeps ids unique.
func (s *Store) InsertManyFront(tasks []model.Task) error {
	for _, t := range tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task %q has no id", model.ErrInvalidTask, t.Title)
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load()

	seen := make(map[string]bool, len(tasks))
	next := make([]model.Task, 0, len(tasks)+len(old.tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		next = append(next, t.Clone())
	}
	for _, t := range old.tasks {
		if !seen[t.ID] {
			next = append(next, t)
		}
	}

	s.swap(old, next, copyRevs(old.revs))
	return nil
}

// Patch merges p into the record and returns the pre-patch value together
// with the revision assigned to this write.
func (s *Store) Patch(id string, p model.Patch) (model.Task, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load()

	i, ok := old.index(id)
	if !ok {
		return model.Task{}, 0, fmt.Errorf("patch %s: %w", id, model.ErrNotFound)
	}
	prev := old.tasks[i]

	next := make([]model.Task, len(old.tasks))
	copy(next, old.tasks)
	next[i] = p.Apply(prev)

	revs := copyRevs(old.revs)
	rev := s.bump()
	revs[id] = rev
	s.swap(old, next, revs)
	return prev.Clone(), rev, nil
}

// Reconcile replaces a record with its server-confirmed value, but only if
// no local write to it happened after the write tagged rev. It reports
// whether the confirmation was applied.
func (s *Store) Reconcile(task model.Task, rev uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load()

	i, ok := old.index(task.ID)
	if !ok {
		return false, fmt.Errorf("reconcile %s: %w", task.ID, model.ErrNotFound)
	}
	if old.revs[task.ID] != rev {
		return false, nil
	}
	s.replaceAt(old, i, task)
	return true, nil
}

// Replace unconditionally swaps in a server-provided record.
func (s *Store) Replace(task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load()

	i, ok := old.index(task.ID)
	if !ok {
		return fmt.Errorf("replace %s: %w", task.ID, model.ErrNotFound)
	}
	s.replaceAt(old, i, task)
	return nil
}

// Remove deletes the record and returns it.
func (s *Store) Remove(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load()

	i, ok := old.index(id)
	if !ok {
		return model.Task{}, fmt.Errorf("remove %s: %w", id, model.ErrNotFound)
	}
	removed := old.tasks[i]

	next := make([]model.Task, 0, len(old.tasks)-1)
	next = append(next, old.tasks[:i]...)
	next = append(next, old.tasks[i+1:]...)

	revs := copyRevs(old.revs)
	delete(revs, id)
	s.swap(old, next, revs)
	return removed.Clone(), nil
}

// Reset replaces the whole collection, as done by a resync. Duplicate ids
// in tasks keep their first occurrence. Records that survive keep their
// revision.
func (s *Store) Reset(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load()

	next := make([]model.Task, 0, len(tasks))
	seen := make(map[string]bool, len(tasks))
	revs := make(map[string]uint64, len(old.revs))
	for _, t := range tasks {
		if t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if rev, ok := old.revs[t.ID]; ok {
			revs[t.ID] = rev
		}
		next = append(next, t.Clone())
	}
	s.swap(old, next, revs)
}

func (s *Store) replaceAt(old *snapshot, i int, task model.Task) {
	next := make([]model.Task, len(old.tasks))
	copy(next, old.tasks)
	next[i] = task.Clone()

	s.swap(old, next, copyRevs(old.revs))
}

func (s *Store) swap(old *snapshot, tasks []model.Task, revs map[string]uint64) {
	pos := make(map[string]int, len(tasks))
	for i, t := range tasks {
		pos[t.ID] = i
	}
	s.current.Store(&snapshot{tasks: tasks, pos: pos, revs: revs, version: old.version + 1})
}

// bump must be called with mu held.
func (s *Store) bump() uint64 {
	s.nextRev++
	return s.nextRev
}

func copyRevs(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
