package restserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/tidegauge/internal/store"
)

type failingStore struct{ store.Store }

func (failingStore) ListRuns(context.Context, string, int) ([]store.Run, error) {
	return nil, errors.New("disk on fire")
}

func newTestController(t *testing.T, st store.Store, metrics http.Handler) *Controller {
	t.Helper()
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, st, "", metrics)
	require.NoError(t, err)
	return ctrl
}

func seededStore(t *testing.T) (*store.SQLiteStore, []string) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC))
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	var ids []string
	for _, station := range []string{"Whitby", "Newlyn", "Whitby"} {
		r := &store.Run{
			Station:         station,
			RiseRatePerHour: 1e-7,
			Constituents:    []store.ConstituentResult{{Name: "M2", Amplitude: 1.5, Phase: 2}},
		}
		require.NoError(t, st.SaveRun(context.Background(), r))
		ids = append(ids, r.ID)
		clock.Advance(time.Minute)
	}
	return st, ids
}

func serve(ctrl *Controller, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewControllerDefaults(t *testing.T) {
	st, _ := seededStore(t)
	ctrl := newTestController(t, st, nil)
	assert.Equal(t, DefaultListenAddr, ctrl.Server.Addr)

	_, err := NewController(context.Background(), &sync.WaitGroup{}, nil, "", nil)
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	st, _ := seededStore(t)
	rec := serve(newTestController(t, st, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestListRuns(t *testing.T) {
	st, ids := seededStore(t)
	ctrl := newTestController(t, st, nil)

	tests := []struct {
		name   string
		target string
		code   int
		want   []string
	}{
		{"all", "/runs", http.StatusOK, []string{ids[2], ids[1], ids[0]}},
		{"station", "/runs?station=Whitby", http.StatusOK, []string{ids[2], ids[0]}},
		{"limit", "/runs?limit=1", http.StatusOK, []string{ids[2]}},
		{"unknown station", "/runs?station=Dover", http.StatusOK, []string{}},
		{"bad limit", "/runs?limit=zero", http.StatusBadRequest, nil},
		{"limit too big", "/runs?limit=5000", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(ctrl, tt.target)
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				return
			}

			var runs []store.Run
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
			got := []string{}
			for _, r := range runs {
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListRunsStoreError(t *testing.T) {
	rec := serve(newTestController(t, failingStore{}, nil), "/runs")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestGetRun(t *testing.T) {
	st, ids := seededStore(t)
	ctrl := newTestController(t, st, nil)

	rec := serve(ctrl, "/runs/"+ids[1])
	require.Equal(t, http.StatusOK, rec.Code)
	var run store.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "Newlyn", run.Station)
	require.Len(t, run.Constituents, 1)
	assert.Equal(t, "M2", run.Constituents[0].Name)

	rec = serve(ctrl, "/runs/"+ids[1]+"?format=msgpack")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-msgpack", rec.Header().Get("Content-Type"))
	var decoded map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "Newlyn", decoded["station"])

	rec = serve(ctrl, "/runs/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListConstituents(t *testing.T) {
	st, _ := seededStore(t)
	ctrl := newTestController(t, st, nil)

	rec := serve(ctrl, "/constituents")
	require.Equal(t, http.StatusOK, rec.Code)

	var cs []ConstituentInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cs))
	require.NotEmpty(t, cs)

	var m2 *ConstituentInfo
	for i := range cs {
		if cs[i].Name == "M2" {
			m2 = &cs[i]
		}
	}
	require.NotNil(t, m2)
	assert.InDelta(t, 28.9841042, m2.Speed, 1e-5)
	assert.InDelta(t, 12.4206012, m2.Period, 1e-5)

	rec = serve(ctrl, "/constituents?at=2030-06-01")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(ctrl, "/constituents?at=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	st, _ := seededStore(t)

	rec := serve(newTestController(t, st, nil), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tidegauge_files_parsed_total 0\n"))
	})
	rec = serve(newTestController(t, st, metrics), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tidegauge_files_parsed_total")
}

func TestStartControllerBusyPort(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	st, _ := seededStore(t)
	var wg sync.WaitGroup
	ctrl, err := NewController(context.Background(), &wg, st, taken.Addr().String(), nil)
	require.NoError(t, err)

	err = ctrl.StartController()
	assert.ErrorContains(t, err, "cannot listen")
	wg.Wait()
}

func TestStartControllerShutsDown(t *testing.T) {
	st, _ := seededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	ctrl, err := NewController(ctx, &wg, st, "127.0.0.1:0", nil)
	require.NoError(t, err)
	require.NoError(t, ctrl.StartController())

	cancel()
	wg.Wait()
	select {
	case err := <-ctrl.Err():
		t.Fatalf("unexpected serve error: %v", err)
	default:
	}
}
