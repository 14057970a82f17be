package coordinator

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/smart"
	"github.com/harrisonrobin/taskboard/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmartAddPrependsInServiceOrder(t *testing.T) {
	c, svc := setup(t, seed("1", "a"), seed("2", "b"))
	svc.smartAddBody = []byte(`[{"id":"A","title":"first"},{"id":"B","title":"second"}]`)

	tasks, err := c.SmartAdd(context.Background(), "first and second")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, []string{"A", "B", "1", "2"}, storeIDs(c))
}

func TestSmartAddAcceptsSingleObject(t *testing.T) {
	c, svc := setup(t, seed("1", "a"))
	svc.smartAddBody = []byte(`{"id":"A","title":"only"}`)

	_, err := c.SmartAdd(context.Background(), "only")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "1"}, storeIDs(c))
}

func TestSmartAddSendsInjectedTime(t *testing.T) {
	svc := newFakeService()
	svc.smartAddBody = []byte(`{"id":"A","title":"x"}`)
	now := time.Date(2026, 1, 3, 8, 50, 0, 0, time.FixedZone("IST", 5*3600+1800))
	c := New(store.New(), svc, WithAssistant(svc), WithClock(func() time.Time { return now }))

	_, err := c.SmartAdd(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, smart.CurrentTime(now), svc.smartAddTime)
	assert.Equal(t, "Saturday, January 3, 2026, 8:50 AM GMT+05:30", svc.smartAddTime)
}

func TestSmartAddFailureLeavesStoreUntouched(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		as   any
	}{
		{name: "service error", err: &model.ServiceError{Op: "smart add", StatusCode: http.StatusBadGateway}, as: new(*model.ServiceError)},
		{name: "unparseable", body: `{"message":"No updates provided"}`, as: new(*model.ParseError)},
		{name: "empty", body: ``, as: new(*model.ParseError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, svc := setup(t, seed("1", "a"))
			svc.smartAddBody = []byte(tt.body)
			svc.smartAddErr = tt.err
			before := c.Store().Version()

			_, err := c.SmartAdd(context.Background(), "something")
			require.Error(t, err)
			assert.ErrorAs(t, err, tt.as)
			assert.Equal(t, before, c.Store().Version())
			assert.Equal(t, []string{"1"}, storeIDs(c))
		})
	}
}

func TestSmartAddRejectsBlankText(t *testing.T) {
	c, _ := setup(t)
	_, err := c.SmartAdd(context.Background(), "   ")
	assert.ErrorIs(t, err, model.ErrInvalidTask)
}

func TestSmartUpdateReplacesConfirmedRecord(t *testing.T) {
	c, svc := setup(t, seed("1", "gym"), seed("2", "read"))
	svc.smartUpdateBody = []byte(`{"status":"success","task":{"id":"1","title":"gym","status":"completed"}}`)

	out, err := c.SmartUpdate(context.Background(), "mark gym done")
	require.NoError(t, err)
	assert.False(t, out.Ambiguous())

	got, ok := c.Store().Get("1")
	require.True(t, ok)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, []string{"1", "2"}, storeIDs(c))
}

func TestSmartUpdateAmbiguousChangesNothing(t *testing.T) {
	c, svc := setup(t, seed("1", "gym"), seed("2", "gym bag"))
	svc.smartUpdateBody = []byte(`{"status":"ambiguous","matches":[{"id":"1","title":"gym"},{"id":"2","title":"gym bag"}],"message":"Found 2 matching tasks."}`)
	before := c.Store().Version()
	lists := svc.listCalls

	out, err := c.SmartUpdate(context.Background(), "finish gym")
	require.NoError(t, err)
	assert.True(t, out.Ambiguous())
	assert.Len(t, out.Matches, 2)
	assert.Equal(t, before, c.Store().Version())
	assert.Equal(t, lists, svc.listCalls)
}

func TestSmartUpdateOfUnknownTaskResyncs(t *testing.T) {
	c, svc := setup(t, seed("1", "a"))
	// created elsewhere after the last resync
	svc.mu.Lock()
	svc.tasks = append(svc.tasks, seed("9", "remote"))
	svc.mu.Unlock()
	svc.smartUpdateBody = []byte(`{"status":"success","task":{"id":"9","title":"remote","status":"completed"}}`)
	lists := svc.listCalls

	_, err := c.SmartUpdate(context.Background(), "finish remote")
	require.NoError(t, err)
	assert.Equal(t, lists+1, svc.listCalls)
	assert.Equal(t, []string{"1", "9"}, storeIDs(c))
}

func TestSmartUpdateBadResponseChangesNothing(t *testing.T) {
	c, svc := setup(t, seed("1", "a"))
	svc.smartUpdateBody = []byte(`{"status":"success"}`)
	before := c.Store().Version()

	_, err := c.SmartUpdate(context.Background(), "whatever")
	var pe *model.ParseError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, before, c.Store().Version())
}

func TestSearchDoesNotTouchStore(t *testing.T) {
	c, svc := setup(t, seed("1", "a"), seed("2", "b"))
	svc.searchResult = []model.Task{seed("2", "b"), seed("7", "archived")}
	before := c.Store().Version()

	got, err := c.Search(context.Background(), "b things")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "7", got[1].ID)
	assert.Equal(t, before, c.Store().Version())
	assert.Equal(t, []string{"1", "2"}, storeIDs(c))
}

func TestSmartOperationsNeedAssistant(t *testing.T) {
	c := New(store.New(), newFakeService())

	_, err := c.SmartAdd(context.Background(), "x")
	assert.ErrorIs(t, err, errNoAssistant)
	_, err = c.SmartUpdate(context.Background(), "x")
	assert.ErrorIs(t, err, errNoAssistant)
	_, err = c.Search(context.Background(), "x")
	assert.ErrorIs(t, err, errNoAssistant)
}
