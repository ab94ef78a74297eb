package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/ff-events/internal/event"
	"github.com/pfrederiksen/ff-events/internal/refresh"
	"github.com/pfrederiksen/ff-events/internal/storage"
)

var updatedAt = time.Date(2024, time.January, 14, 17, 0, 0, 0, time.UTC)

type fakeService struct {
	snap       *event.Snapshot
	loadErr    error
	refreshErr error
	triggers   []string
}

func (f *fakeService) Load(context.Context) (*event.Snapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.snap == nil {
		return nil, storage.ErrNotFound
	}
	return f.snap, nil
}

func (f *fakeService) EnsureSnapshot(ctx context.Context, trigger string) (*event.Snapshot, error) {
	if f.snap != nil {
		return f.snap, nil
	}
	return f.Refresh(ctx, trigger)
}

func (f *fakeService) Refresh(_ context.Context, trigger string) (*event.Snapshot, error) {
	f.triggers = append(f.triggers, trigger)
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	f.snap = event.NewSnapshot(sampleEvents(), updatedAt)
	return f.snap, nil
}

func sampleEvents() []*event.Event {
	at := time.Date(2024, time.January, 15, 1, 30, 0, 0, time.UTC)
	return []*event.Event{
		event.NewEvent("1", at, "USD", "Core CPI m/m"),
		event.NewEvent("2", at.Add(90*time.Minute), "GBP", "GDP m/m"),
	}
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestInfo(t *testing.T) {
	srv := New(&fakeService{}, Options{Schedule: "0 0 * * 0 (Asia/Bangkok)"})

	rec := do(t, srv, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "0 0 * * 0 (Asia/Bangkok)", body["schedule"])
	endpoints, ok := body["endpoints"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, endpoints, "/api/news")
	assert.Contains(t, endpoints, "/weekly_ecocar.json")
}

func TestNews_ExistingSnapshot(t *testing.T) {
	svc := &fakeService{snap: event.NewSnapshot(sampleEvents(), updatedAt)}
	srv := New(svc, Options{})

	rec := do(t, srv, http.MethodGet, "/api/news")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, svc.triggers, "existing snapshot must not trigger a run")

	var body struct {
		Success     bool                `json:"success"`
		Count       int                 `json:"count"`
		Data        []map[string]string `json:"data"`
		LastUpdated string              `json:"last_updated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "2024-01-14T17:00:00Z", body.LastUpdated)
	require.Len(t, body.Data, 2)
	assert.Equal(t, map[string]string{
		"event_time_utc": "2024-01-15T01:30:00+00:00",
		"currency":       "USD",
		"impact":         "HIGH",
		"event":          "Core CPI m/m",
	}, body.Data[0])
}

func TestNews_LazyRunWhenMissing(t *testing.T) {
	svc := &fakeService{}
	srv := New(svc, Options{})

	rec := do(t, srv, http.MethodGet, "/api/news")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{refresh.TriggerLazy}, svc.triggers)
	assert.Contains(t, rec.Body.String(), `"count":2`)
}

func TestNews_Failure(t *testing.T) {
	srv := New(&fakeService{refreshErr: errors.New("navigation timeout")}, Options{})

	rec := do(t, srv, http.MethodGet, "/api/news")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"navigation timeout"}`, rec.Body.String())
}

func TestNews_EmptySnapshot(t *testing.T) {
	srv := New(&fakeService{snap: event.NewSnapshot(nil, updatedAt)}, Options{})

	rec := do(t, srv, http.MethodGet, "/api/news")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestDocument(t *testing.T) {
	srv := New(&fakeService{snap: event.NewSnapshot(sampleEvents(), updatedAt)}, Options{})

	rec := do(t, srv, http.MethodGet, "/weekly_ecocar.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, updatedAt.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))

	var data []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	require.Len(t, data, 2)
	assert.Equal(t, "GBP", data[1]["currency"])
	assert.Equal(t, "2024-01-15T03:00:00+00:00", data[1]["event_time_utc"])
}

type rawDocument struct {
	data []byte
	err  error
}

func (d rawDocument) Raw(context.Context) ([]byte, error) { return d.data, d.err }

func TestDocument_ServesStoredBytes(t *testing.T) {
	stored := []byte("[\n  {\"event_time_utc\": \"2024-01-15T01:30:00+00:00\", \"currency\": \"USD\", \"impact\": \"HIGH\", \"event\": \"Core CPI m/m\"}\n]")
	srv := New(&fakeService{snap: event.NewSnapshot(sampleEvents(), updatedAt)}, Options{
		Document: rawDocument{data: stored},
	})

	rec := do(t, srv, http.MethodGet, "/weekly_ecocar.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, string(stored), rec.Body.String())
}

func TestDocument_RawErrorFallsBack(t *testing.T) {
	srv := New(&fakeService{snap: event.NewSnapshot(sampleEvents(), updatedAt)}, Options{
		Document: rawDocument{err: errors.New("disk gone")},
	})

	rec := do(t, srv, http.MethodGet, "/weekly_ecocar.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var data []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Len(t, data, 2)
}

func TestDocument_Failure(t *testing.T) {
	srv := New(&fakeService{refreshErr: errors.New("boom")}, Options{})

	rec := do(t, srv, http.MethodGet, "/weekly_ecocar.json")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCalendar(t *testing.T) {
	srv := New(&fakeService{snap: event.NewSnapshot(sampleEvents(), updatedAt)}, Options{})

	rec := do(t, srv, http.MethodGet, "/calendar.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "BEGIN:VEVENT"))
	assert.Contains(t, rec.Body.String(), "DTSTART:20240115T013000Z")
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		svc        *fakeService
		fileExists bool
	}{
		{"snapshot present", &fakeService{snap: event.NewSnapshot(nil, updatedAt)}, true},
		{"snapshot missing", &fakeService{}, false},
		{"store unreadable", &fakeService{loadErr: errors.New("permission denied")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(tt.svc, Options{})
			srv.now = func() time.Time { return updatedAt }

			rec := do(t, srv, http.MethodGet, "/health")
			require.Equal(t, http.StatusOK, rec.Code)

			var body healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "healthy", body.Status)
			assert.Equal(t, tt.fileExists, body.FileExists)
			assert.Equal(t, "2024-01-14T17:00:00Z", body.Timestamp)
			assert.Empty(t, tt.svc.triggers, "health must never trigger a run")
		})
	}
}

func TestScrapeNow(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			svc := &fakeService{snap: event.NewSnapshot(nil, updatedAt)}
			srv := New(svc, Options{})

			rec := do(t, srv, method, "/scrape-now")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, []string{refresh.TriggerManual}, svc.triggers)
			assert.JSONEq(t, `{"success":true,"message":"Scraping completed successfully","count":2}`, rec.Body.String())
		})
	}
}

func TestScrapeNow_Failure(t *testing.T) {
	srv := New(&fakeService{refreshErr: errors.New("calendar layout not recognized")}, Options{})

	rec := do(t, srv, http.MethodPost, "/scrape-now")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"calendar layout not recognized"}`, rec.Body.String())
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ffevents_runs_total 1\n"))
	})

	withMetrics := New(&fakeService{}, Options{Metrics: metrics})
	rec := do(t, withMetrics, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ffevents_runs_total")

	without := New(&fakeService{}, Options{})
	rec = do(t, without, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownMethod(t *testing.T) {
	srv := New(&fakeService{}, Options{})

	rec := do(t, srv, http.MethodDelete, "/api/news")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNews_Filtered(t *testing.T) {
	svc := &fakeService{snap: event.NewSnapshot(sampleEvents(), updatedAt)}
	srv := New(svc, Options{})

	rec := do(t, srv, http.MethodGet, "/api/news?currency=gbp")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int                 `json:"count"`
		Data  []map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "GDP m/m", body.Data[0]["event"])
}

func TestNews_BadFilter(t *testing.T) {
	svc := &fakeService{}
	srv := New(svc, Options{})

	rec := do(t, srv, http.MethodGet, "/api/news?from=yesterday")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Empty(t, svc.triggers, "a rejected request must not trigger a run")
}

func TestCalendar_Filtered(t *testing.T) {
	srv := New(&fakeService{snap: event.NewSnapshot(sampleEvents(), updatedAt)}, Options{})

	rec := do(t, srv, http.MethodGet, "/calendar.ics?q=cpi")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "BEGIN:VEVENT"))
	assert.Contains(t, rec.Body.String(), "Core CPI m/m")
}
