package store

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(id, title string) model.Task {
	return model.Task{ID: id, Title: title, Priority: model.PriorityMedium, Status: model.StatusPending}
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestInsertFront(t *testing.T) {
	s := New()
	require.NoError(t, s.InsertFront(task("1", "first")))
	require.NoError(t, s.InsertFront(task("2", "second")))

	assert.Equal(t, []string{"2", "1"}, ids(s.List()))
	assert.Equal(t, uint64(2), s.Version())
}

func TestInsertManyFrontKeepsOrder(t *testing.T) {
	s := New()
	s.Reset([]model.Task{task("old", "old")})

	require.NoError(t, s.InsertManyFront([]model.Task{task("a", "A"), task("b", "B")}))

	assert.Equal(t, []string{"a", "b", "old"}, ids(s.List()))
}

func TestInsertReplacesDuplicateID(t *testing.T) {
	s := New()
	s.Reset([]model.Task{task("1", "one"), task("2", "two")})

	require.NoError(t, s.InsertFront(task("2", "two again")))

	list := s.List()
	assert.Equal(t, []string{"2", "1"}, ids(list))
	assert.Equal(t, "two again", list[0].Title)
}

func TestInsertRejectsMissingID(t *testing.T) {
	s := New()
	err := s.InsertFront(model.Task{Title: "no id"})
	assert.ErrorIs(t, err, model.ErrInvalidTask)
	assert.Equal(t, 0, s.Len())
}

func TestPatchReturnsPrevious(t *testing.T) {
	s := New()
	orig := task("1", "write")
	orig.Category = "work"
	s.Reset([]model.Task{orig})

	done := model.StatusCompleted
	prev, rev, err := s.Patch("1", model.Patch{Status: &done})
	require.NoError(t, err)

	assert.Equal(t, orig, prev)
	assert.Equal(t, s.Revision("1"), rev)
	got, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, "work", got.Category)
	assert.Equal(t, "write", got.Title)
}

func TestPatchMissing(t *testing.T) {
	s := New()
	title := "x"
	_, _, err := s.Patch("nope", model.Patch{Title: &title})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, uint64(0), s.Version())
}

func TestRemove(t *testing.T) {
	s := New()
	s.Reset([]model.Task{task("1", "a"), task("2", "b"), task("3", "c")})

	removed, err := s.Remove("2")
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Title)
	assert.Equal(t, []string{"1", "3"}, ids(s.List()))
	_, ok := s.Get("2")
	assert.False(t, ok)

	_, err = s.Remove("2")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReconcileDropsStaleConfirmation(t *testing.T) {
	s := New()
	s.Reset([]model.Task{task("1", "draft")})

	first := "first"
	_, rev1, err := s.Patch("1", model.Patch{Title: &first})
	require.NoError(t, err)
	second := "second"
	_, rev2, err := s.Patch("1", model.Patch{Title: &second})
	require.NoError(t, err)

	applied, err := s.Reconcile(task("1", "first (server)"), rev1)
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = s.Reconcile(task("1", "second (server)"), rev2)
	require.NoError(t, err)
	assert.True(t, applied)

	got, _ := s.Get("1")
	assert.Equal(t, "second (server)", got.Title)
}

func TestReconcileRemovedRecord(t *testing.T) {
	s := New()
	s.Reset([]model.Task{task("1", "a")})
	title := "b"
	_, rev, err := s.Patch("1", model.Patch{Title: &title})
	require.NoError(t, err)
	_, err = s.Remove("1")
	require.NoError(t, err)

	applied, err := s.Reconcile(task("1", "b"), rev)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.False(t, applied)
	assert.Equal(t, 0, s.Len())
}

func TestServerWritesKeepOptimisticRevision(t *testing.T) {
	s := New()
	s.Reset([]model.Task{task("1", "a"), task("2", "b")})
	assert.Zero(t, s.Revision("1"))

	title := "b2"
	_, rev, err := s.Patch("2", model.Patch{Title: &title})
	require.NoError(t, err)

	s.Reset([]model.Task{task("2", "b"), task("1", "a")})
	assert.Equal(t, rev, s.Revision("2"), "resync keeps the revision")
	require.NoError(t, s.Replace(task("1", "a (server)")))
	require.NoError(t, s.InsertFront(task("2", "b (smart)")))
	assert.Equal(t, rev, s.Revision("2"))

	applied, err := s.Reconcile(task("2", "b2"), rev)
	require.NoError(t, err)
	assert.True(t, applied)
	got, _ := s.Get("2")
	assert.Equal(t, "b2", got.Title)

	s.Reset([]model.Task{task("1", "a")})
	assert.Zero(t, s.Revision("2"), "dropped records lose their revision")
}

func TestListIsACopy(t *testing.T) {
	s := New()
	tk := task("1", "a")
	tk.Tags = []string{"x"}
	s.Reset([]model.Task{tk})

	list := s.List()
	list[0].Title = "mutated"
	list[0].Tags[0] = "y"

	got, _ := s.Get("1")
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, []string{"x"}, got.Tags)
}

func TestResetDropsDuplicates(t *testing.T) {
	s := New()
	s.Reset([]model.Task{task("1", "a"), task("1", "dup"), task("2", "b")})
	assert.Equal(t, []string{"1", "2"}, ids(s.List()))
}

func TestUniquenessUnderRandomMutations(t *testing.T) {
	s := New()
	r := rand.New(rand.NewSource(7))
	title := "t"

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < 300; i++ {
				id := fmt.Sprintf("%d", r.Intn(20))
				switch r.Intn(4) {
				case 0:
					_ = s.InsertFront(task(id, "x"))
				case 1:
					_ = s.InsertManyFront([]model.Task{task(id, "y"), task(fmt.Sprintf("%d", r.Intn(20)), "z")})
				case 2:
					_, _, _ = s.Patch(id, model.Patch{Title: &title})
				case 3:
					_, _ = s.Remove(id)
				}
			}
		}(r.Int63())
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, tk := range s.List() {
		assert.False(t, seen[tk.ID], "duplicate id %s", tk.ID)
		seen[tk.ID] = true
	}
}
