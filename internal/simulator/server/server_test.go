package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/vfleet/internal/simulator/vehicle"
)

type fakeFleet struct {
	ready bool
	snaps []vehicle.Snapshot
}

func (f *fakeFleet) Ready() bool                   { return f.ready }
func (f *fakeFleet) Snapshots() []vehicle.Snapshot { return f.snaps }

func (f *fakeFleet) Snapshot(id int) (vehicle.Snapshot, bool) {
	for _, s := range f.snaps {
		if s.ID == id {
			return s, true
		}
	}
	return vehicle.Snapshot{}, false
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestProbes(t *testing.T) {
	fleet := &fakeFleet{}
	r := NewRouter(fleet, nil)

	assert.Equal(t, http.StatusOK, get(t, r, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, r, "/readyz").Code)

	fleet.ready = true
	rec := get(t, r, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	rec := get(t, NewRouter(&fakeFleet{}, nil), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestVehicles(t *testing.T) {
	fleet := &fakeFleet{snaps: []vehicle.Snapshot{
		{ID: 1, Status: "waits", StatusCode: 5, Battery: 100, Autonomy: 2000},
		{ID: 2, Status: "alert", StatusCode: 7, Halted: true},
	}}
	r := NewRouter(fleet, nil)

	rec := get(t, r, "/vehicles")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []vehicle.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, fleet.snaps, got)

	rec = get(t, r, "/vehicles/2")
	require.Equal(t, http.StatusOK, rec.Code)
	var one vehicle.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.True(t, one.Halted)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/vehicles/9").Code)
	assert.Equal(t, http.StatusNotFound, get(t, r, "/vehicles/abc").Code)
}

func TestFeedRoute(t *testing.T) {
	called := false
	feed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	assert.Equal(t, http.StatusNotFound, get(t, NewRouter(&fakeFleet{}, nil), "/feed").Code)

	rec := get(t, NewRouter(&fakeFleet{}, feed), "/feed")
	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
