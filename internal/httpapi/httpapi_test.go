package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/event-discovery/internal/dataloader"
	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/internal/discovery"
	"github.com/rx3lixir/event-discovery/internal/predicate"
	"github.com/rx3lixir/event-discovery/pkg/consistency"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

var wednesday = time.Date(2024, time.January, 3, 10, 0, 0, 0, time.UTC)

type fakeBackend struct {
	filters []*db.EventFilter
	err     error
}

func (f *fakeBackend) SearchEvents(_ context.Context, filter *db.EventFilter) (*db.SearchResult, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return &db.SearchResult{
		Events: []*db.Event{{ID: "evt-1", Title: "Jazz night", Tags: []string{"music"}, Channels: []string{}}},
		Total:  1,
	}, nil
}

func (f *fakeBackend) lastWhere(t *testing.T) predicate.And {
	t.Helper()
	require.NotEmpty(t, f.filters)
	where, ok := f.filters[len(f.filters)-1].Where.(predicate.And)
	require.True(t, ok)
	return where
}

type fakeConsistency struct {
	where  predicate.Node
	called bool
}

func (f *fakeConsistency) CheckConsistency(_ context.Context, where predicate.Node) (*consistency.CheckResult, error) {
	f.called = true
	f.where = where
	return &consistency.CheckResult{IsConsistent: true, TotalEventsDB: 3, TotalEventsIndex: 3}, nil
}

type fakeSyncStatus struct{}

func (fakeSyncStatus) CheckSyncStatus(context.Context) (*dataloader.SyncStatus, error) {
	return &dataloader.SyncStatus{PostgreSQLCount: 5, OpenSearchCount: 4, Difference: 1}, nil
}

func newTestAPI(backend db.EventSearcher, opts ...Option) http.Handler {
	svc := discovery.NewService(backend, "fake", logger.NewNop(),
		discovery.WithClock(func() time.Time { return wednesday }),
	)
	return New(svc, logger.NewNop(), opts...).Handler()
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func Test_SearchEvents(t *testing.T) {
	backend := &fakeBackend{}
	h := newTestAPI(backend)

	rec, body := get(t, h, "/api/v1/events?tags=music&free=true&limit=5&offset=10")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(5), body["limit"])
	assert.Equal(t, float64(10), body["offset"])
	assert.Contains(t, body["query"], "tags=music")

	require.Len(t, backend.filters, 1)
	assert.Equal(t, 5, backend.filters[0].GetLimit())
	assert.Equal(t, 10, backend.filters[0].GetOffset())
	assert.Contains(t, backend.lastWhere(t).Children, predicate.Node(predicate.Eq("free", true)))
}

func Test_SearchEvents_KeepsRequestID(t *testing.T) {
	h := newTestAPI(&fakeBackend{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func Test_SearchChannelEvents(t *testing.T) {
	backend := &fakeBackend{}
	h := newTestAPI(backend)

	rec, _ := get(t, h, "/api/v1/channels/trivia/events")
	require.Equal(t, http.StatusOK, rec.Code)

	where := backend.lastWhere(t)
	require.NotEmpty(t, where.Children)
	assert.Equal(t, predicate.Some("EventChannels", predicate.Eq("channelUniqueName", "trivia")), where.Children[0])
}

func Test_SearchOnlineEvents(t *testing.T) {
	backend := &fakeBackend{}
	h := newTestAPI(backend)

	rec, body := get(t, h, "/api/v1/events/online")
	require.Equal(t, http.StatusOK, rec.Code)

	filters := body["filters"].(map[string]any)
	assert.Equal(t, "ONLY_VIRTUAL", filters["locationFilter"])
	assert.Equal(t, true, filters["hasVirtualEventUrl"])
	assert.Contains(t, backend.lastWhere(t).Children,
		predicate.Node(predicate.AnyOf(predicate.NotNull("virtualEventUrl"))))
}

func Test_SearchEvents_Errors(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		target  string
		status  int
	}{
		{
			name:    "malformed_weekdays",
			backend: &fakeBackend{},
			target:  "/api/v1/events?weekdays=%7Bnot-json",
			status:  http.StatusBadRequest,
		},
		{
			name:    "invalid_limit",
			backend: &fakeBackend{},
			target:  "/api/v1/events?limit=abc",
			status:  http.StatusBadRequest,
		},
		{
			name:    "negative_offset",
			backend: &fakeBackend{},
			target:  "/api/v1/events?offset=-1",
			status:  http.StatusBadRequest,
		},
		{
			name:    "backend_failure",
			backend: &fakeBackend{err: errors.New("connection refused")},
			target:  "/api/v1/events",
			status:  http.StatusBadGateway,
		},
		{
			name:    "unsupported_predicate",
			backend: &fakeBackend{err: predicate.ErrUnsupportedPredicate},
			target:  "/api/v1/events",
			status:  http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := get(t, newTestAPI(tt.backend), tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, rec.Header().Get(RequestIDHeader), body["requestId"])
		})
	}
}

func Test_FilterState(t *testing.T) {
	backend := &fakeBackend{}
	h := newTestAPI(backend)

	rec, body := get(t, h, "/api/v1/filters/state?tags=music&tags=music&searchInput=jazz")
	require.Equal(t, http.StatusOK, rec.Code)

	filters := body["filters"].(map[string]any)
	assert.Equal(t, "jazz", filters["searchInput"])
	assert.Equal(t, []any{"music"}, filters["tags"])
	assert.NotEmpty(t, body["query"])
	assert.Empty(t, backend.filters)
}

func Test_FilterWhere(t *testing.T) {
	h := newTestAPI(&fakeBackend{})

	rec, body := get(t, h, "/api/v1/filters/where?channelId=trivia")
	require.Equal(t, http.StatusOK, rec.Code)

	where := body["where"].(map[string]any)
	children := where["AND"].([]any)
	require.NotEmpty(t, children)
	assert.Equal(t, map[string]any{
		"EventChannels_SOME": map[string]any{"channelUniqueName": "trivia"},
	}, children[0])
	assert.Equal(t, float64(len(children)), body["conditions"])
}

func Test_Vocabulary(t *testing.T) {
	rec, body := get(t, newTestAPI(&fakeBackend{}), "/api/v1/filters/vocabulary")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotEmpty(t, body["timeShortcuts"])
	assert.Len(t, body["weekdays"], 7)
	assert.Len(t, body["locationFilters"], 4)
}

func Test_NotFound(t *testing.T) {
	rec, body := get(t, newTestAPI(&fakeBackend{}), "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", body["error"])
}

func Test_AdminRoutes(t *testing.T) {
	t.Run("disabled_by_default", func(t *testing.T) {
		rec, _ := get(t, newTestAPI(&fakeBackend{}), "/api/v1/admin/consistency")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("consistency_all_events", func(t *testing.T) {
		checker := &fakeConsistency{}
		rec, body := get(t, newTestAPI(&fakeBackend{}, WithConsistency(checker)), "/api/v1/admin/consistency")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, checker.called)
		assert.Nil(t, checker.where)
		assert.Equal(t, true, body["isConsistent"])
	})

	t.Run("consistency_filtered", func(t *testing.T) {
		checker := &fakeConsistency{}
		rec, _ := get(t, newTestAPI(&fakeBackend{}, WithConsistency(checker)), "/api/v1/admin/consistency?free=true")

		require.Equal(t, http.StatusOK, rec.Code)
		where, ok := checker.where.(predicate.And)
		require.True(t, ok)
		assert.Contains(t, where.Children, predicate.Node(predicate.Eq("free", true)))
	})

	t.Run("sync_status", func(t *testing.T) {
		rec, body := get(t, newTestAPI(&fakeBackend{}, WithSyncStatus(fakeSyncStatus{})), "/api/v1/admin/sync")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(5), body["postgresql_count"])
		assert.Equal(t, float64(1), body["difference"])
	})
}

func Test_CORS(t *testing.T) {
	h := newTestAPI(&fakeBackend{}, WithAllowedOrigins([]string{"https://events.example.com"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filters/vocabulary", nil)
	req.Header.Set("Origin", "https://events.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://events.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/filters/vocabulary", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
