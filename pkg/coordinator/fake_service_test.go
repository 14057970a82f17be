package coordinator

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

var serverClock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeService is an in-memory task service with failure injection.
type fakeService struct {
	mu     sync.Mutex
	tasks  []model.Task
	nextID int

	failList   error
	failCreate error
	failPatch  error
	failDelete error

	// beforePatch runs outside the lock before a patch is processed.
	beforePatch func(id string, p model.Patch)
	// beforeList runs outside the lock before a listing is served.
	beforeList func()

	listCalls   int
	patchCalls  int
	deleteCalls int

	smartAddBody    []byte
	smartAddErr     error
	smartAddTime    string
	smartUpdateBody []byte
	searchResult    []model.Task
}

func newFakeService(tasks ...model.Task) *fakeService {
	return &fakeService{tasks: tasks, nextID: 100}
}

func (f *fakeService) snapshot() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, len(f.tasks))
	for i, t := range f.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (f *fakeService) ListTasks(ctx context.Context) ([]model.Task, error) {
	if f.beforeList != nil {
		f.beforeList()
	}
	f.mu.Lock()
	f.listCalls++
	err := f.failList
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.snapshot(), nil
}

func (f *fakeService) CreateTask(ctx context.Context, d model.Draft) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return model.Task{}, f.failCreate
	}
	f.nextID++
	t := model.Task{
		ID:          fmt.Sprintf("t%d", f.nextID),
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Status:      model.StatusPending,
		Category:    d.Category,
		CreatedAt:   model.Timestamp{Time: serverClock},
	}
	if d.DueDate != nil {
		t.DueDate = model.NewTimestamp(*d.DueDate)
	}
	f.tasks = append([]model.Task{t}, f.tasks...)
	return t, nil
}

func (f *fakeService) PatchTask(ctx context.Context, id string, p model.Patch) (model.Task, error) {
	if f.beforePatch != nil {
		f.beforePatch(id, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patchCalls++
	if f.failPatch != nil {
		return model.Task{}, f.failPatch
	}
	for i, t := range f.tasks {
		if t.ID == id {
			updated := p.Apply(t)
			updated.UpdatedAt = model.NewTimestamp(serverClock)
			f.tasks[i] = updated
			return updated, nil
		}
	}
	return model.Task{}, &model.ServiceError{Op: "patch task", StatusCode: http.StatusNotFound}
}

func (f *fakeService) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failDelete != nil {
		return f.failDelete
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &model.ServiceError{Op: "delete task", StatusCode: http.StatusNotFound}
}

func (f *fakeService) SmartAdd(ctx context.Context, text, currentTime string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.smartAddTime = currentTime
	return f.smartAddBody, f.smartAddErr
}

func (f *fakeService) SmartUpdate(ctx context.Context, text string) ([]byte, error) {
	return f.smartUpdateBody, nil
}

func (f *fakeService) Search(ctx context.Context, text string) ([]model.Task, error) {
	return f.searchResult, nil
}
