package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depthchart-hub/depth-chart-hub/internal/infrastructure/persistence/postgres"
	"github.com/depthchart-hub/depth-chart-hub/internal/interface/http/handlers"
	"github.com/depthchart-hub/depth-chart-hub/internal/sport"
)

type stubJournal struct {
	entries  []postgres.JournalEntry
	err      error
	gotSport string
	gotLimit int
	calls    int
}

func (s *stubJournal) Recent(_ context.Context, sport string, limit int) ([]postgres.JournalEntry, error) {
	s.calls++
	s.gotSport, s.gotLimit = sport, limit
	return s.entries, s.err
}

type response struct {
	Data      json.RawMessage `json:"data"`
	Error     *APIError       `json:"error"`
	RequestID string          `json:"request_id"`
}

func newTestServer(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	if deps.Sports == nil {
		reg, err := sport.Build([]sport.Definition{{ID: "nfl"}, {ID: "mlb"}}, nil)
		require.NoError(t, err)
		deps.Sports = reg
	}
	return NewServer(DefaultConfig(), deps).Handler()
}

func get(t *testing.T, h http.Handler, path string, data any) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body response
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		if data != nil && body.Error == nil {
			require.NoError(t, json.Unmarshal(body.Data, data))
		}
	}
	return rec, body
}

func TestServer_ChartSnapshot(t *testing.T) {
	reg, err := sport.Build([]sport.Definition{{ID: "nfl"}}, nil)
	require.NoError(t, err)

	nfl, _ := reg.Get("nfl")
	ctx := context.Background()
	nfl.Interpreter.Process(ctx, []byte(`{"type":"add","name":"Bob","position":"QB"}`))
	nfl.Interpreter.Process(ctx, []byte(`{"type":"add","name":"Alice","position":"QB"}`))

	h := newTestServer(t, Dependencies{Sports: reg})
	var chart struct {
		Sport string `json:"sport"`
		Slots []struct {
			Position  string `json:"position"`
			PlayerIDs []int  `json:"player_ids"`
		} `json:"slots"`
	}
	rec, body := get(t, h, "/sports/NFL/chart", &chart)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body.Error)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body.RequestID)

	assert.Equal(t, "nfl", chart.Sport)
	require.Len(t, chart.Slots, 8)
	assert.Equal(t, "QB", chart.Slots[0].Position)
	assert.Equal(t, []int{1, 2}, chart.Slots[0].PlayerIDs)
	assert.Empty(t, chart.Slots[1].PlayerIDs)
}

func TestServer_KeepsCallerRequestID(t *testing.T) {
	h := newTestServer(t, Dependencies{})
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "trace-42", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"request_id":"trace-42"`)
}

func TestServer_UnknownSport(t *testing.T) {
	h := newTestServer(t, Dependencies{})
	rec, body := get(t, h, "/sports/nba/chart", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "sport_not_found", body.Error.Code)
}

func TestServer_ListSports(t *testing.T) {
	h := newTestServer(t, Dependencies{})
	var list []sportInfo
	rec, _ := get(t, h, "/sports", &list)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, list, 2)
	assert.Equal(t, "nfl", list[0].ID)
	assert.Equal(t, "nfl_depth_chart_queue", list[0].Queue)
	assert.Equal(t, "QB", list[0].Positions[0])
	assert.Equal(t, "mlb", list[1].ID)
}

func TestServer_HealthAndReady(t *testing.T) {
	checker := handlers.NewChecker("test", time.Second)
	h := newTestServer(t, Dependencies{Health: checker})

	rec, _ := get(t, h, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = get(t, h, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	checker.Add("redis", func(context.Context) error { return errors.New("connection refused") })

	var report handlers.Report
	rec, _ = get(t, h, "/health", &report)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, report.Healthy)
	assert.Equal(t, "test", report.Version)
	require.Len(t, report.Checks, 1)
	assert.Equal(t, "connection refused", report.Checks[0].Error)

	var ready struct {
		Status  string   `json:"status"`
		Failing []string `json:"failing"`
	}
	rec, _ = get(t, h, "/ready", &ready)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, []string{"redis"}, ready.Failing)

	rec, _ = get(t, h, "/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_MetricsRouteOptional(t *testing.T) {
	h := newTestServer(t, Dependencies{})
	rec, _ := get(t, h, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	h = newTestServer(t, Dependencies{Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("depthchart_commands_total 0\n"))
	})})
	rec, _ = get(t, h, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "depthchart_commands_total")
}

func TestServer_Journal(t *testing.T) {
	journal := &stubJournal{entries: []postgres.JournalEntry{{
		ID:          uuid.MustParse("3f1c1a52-5d5e-4a43-9a59-5c4c7b6f4a11"),
		Sport:       "nfl",
		CommandType: "add_player",
		Status:      "succeeded",
		Payload:     `{"type":"add_player","name":"Bob"}`,
		Output:      "Added Player Bob with Id: 1",
		Duration:    250 * time.Microsecond,
		ReceivedAt:  time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC),
	}}}
	h := newTestServer(t, Dependencies{Journal: journal})

	var list []journalEntryDTO
	rec, _ := get(t, h, "/sports/NFL/journal?limit=10", &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nfl", journal.gotSport)
	assert.Equal(t, 10, journal.gotLimit)

	require.Len(t, list, 1)
	assert.Equal(t, "3f1c1a52-5d5e-4a43-9a59-5c4c7b6f4a11", list[0].ID)
	assert.Equal(t, int64(250), list[0].DurationUS)
	assert.Equal(t, "2024-09-01T12:00:00Z", list[0].ReceivedAt)

	journal.err = errors.New("circuit breaker is open")
	rec, _ = get(t, h, "/sports/nfl/journal", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 0, journal.gotLimit)
}

func TestServer_JournalRejectsBadLimit(t *testing.T) {
	journal := &stubJournal{}
	h := newTestServer(t, Dependencies{Journal: journal})

	for _, limit := range []string{"abc", "0", "-3"} {
		rec, body := get(t, h, "/sports/nfl/journal?limit="+limit, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
		require.NotNil(t, body.Error)
		assert.Equal(t, "invalid_limit", body.Error.Code)
	}
	assert.Zero(t, journal.calls)
}

func TestServer_JournalRouteOptional(t *testing.T) {
	h := newTestServer(t, Dependencies{})
	rec, _ := get(t, h, "/sports/nfl/journal", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RecoversFromPanics(t *testing.T) {
	h := newTestServer(t, Dependencies{Metrics: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("exporter exploded")
	})})

	rec, body := get(t, h, "/metrics", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "internal_error", body.Error.Code)
	assert.NotEmpty(t, body.RequestID)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := DefaultConfig()
	cfg.Addr = addr
	srv := NewServer(cfg, Dependencies{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/live")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
