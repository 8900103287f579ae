package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depthchart-hub/depth-chart-hub/internal/interface/interpreter"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder_CountsOutcomes(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.Observe(ctx, interpreter.Outcome{Sport: "nfl", Type: "add", Status: interpreter.StatusSucceeded, Duration: time.Millisecond})
	r.Observe(ctx, interpreter.Outcome{Sport: "nfl", Type: "add", Status: interpreter.StatusSucceeded, Duration: time.Millisecond})
	r.Observe(ctx, interpreter.Outcome{Sport: "nfl", Type: "add", Status: interpreter.StatusFailed})
	r.Observe(ctx, interpreter.Outcome{Sport: "mlb", Status: interpreter.StatusIgnored})

	body := scrape(t, r)
	assert.Contains(t, body, `depthchart_commands_total{sport="nfl",status="succeeded",type="add"} 2`)
	assert.Contains(t, body, `depthchart_commands_total{sport="nfl",status="failed",type="add"} 1`)
	assert.Contains(t, body, `depthchart_commands_total{sport="mlb",status="ignored",type="none"} 1`)
	assert.Contains(t, body, `depthchart_command_duration_seconds_count{sport="nfl",type="add"} 3`)
	assert.NotContains(t, body, `depthchart_command_duration_seconds_count{sport="mlb"`)
}

func TestRecorder_TransportAndBreaker(t *testing.T) {
	r := NewRecorder()
	r.RecordTransportError("nfl_depth_chart_queue", errors.New("dial tcp: refused"))
	r.SetBreakerState("command-journal", 1)

	body := scrape(t, r)
	assert.Contains(t, body, `depthchart_transport_errors_total{queue="nfl_depth_chart_queue"} 1`)
	assert.Contains(t, body, `depthchart_journal_circuit_state{breaker="command-journal"} 1`)
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Observe(context.Background(), interpreter.Outcome{})
		r.RecordTransportError("q", nil)
		r.SetBreakerState("b", 0)
		r.SetQueueDepth("nfl", "q", 1)
		r.RecordJobRun("j", true)
	})
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecorder_QueueDepthAndJobs(t *testing.T) {
	r := NewRecorder()
	r.SetQueueDepth("nfl", "nfl_depth_chart_queue", 4)
	r.SetQueueDepth("nfl", "nfl_depth_chart_queue", 2)
	r.RecordJobRun("queue_depth", true)
	r.RecordJobRun("prune_journal", false)

	body := scrape(t, r)
	assert.Contains(t, body, `depthchart_queue_depth{queue="nfl_depth_chart_queue",sport="nfl"} 2`)
	assert.Contains(t, body, `depthchart_scheduler_job_runs_total{job="queue_depth",result="success"} 1`)
	assert.Contains(t, body, `depthchart_scheduler_job_runs_total{job="prune_journal",result="failure"} 1`)
}
