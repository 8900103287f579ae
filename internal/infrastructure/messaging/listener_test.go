package messaging

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/depthchart"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
	"github.com/depthchart-hub/depth-chart-hub/internal/interface/interpreter"
	"github.com/depthchart-hub/depth-chart-hub/pkg/retry"
)

// memorySource is an in-process Source. Pop fails while failing > 0.
type memorySource struct {
	mu      sync.Mutex
	queues  map[string][][]byte
	failing int
	pops    int
}

func newMemorySource() *memorySource {
	return &memorySource{queues: make(map[string][][]byte)}
}

func (s *memorySource) push(queue string, payloads ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range payloads {
		s.queues[queue] = append(s.queues[queue], []byte(p))
	}
}

func (s *memorySource) Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, bool, error) {
	s.mu.Lock()
	s.pops++
	if s.failing > 0 {
		s.failing--
		s.mu.Unlock()
		return nil, false, errors.New("connection refused")
	}
	if q := s.queues[queue]; len(q) > 0 {
		s.queues[queue] = q[1:]
		s.mu.Unlock()
		return q[0], true, nil
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-time.After(time.Millisecond):
		return nil, false, nil
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type recordingProcessor struct {
	mu       sync.Mutex
	payloads []string
}

func (p *recordingProcessor) Process(_ context.Context, payload []byte) interpreter.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, string(payload))
	return interpreter.Outcome{Status: interpreter.StatusSucceeded}
}

func (p *recordingProcessor) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.payloads...)
}

func fastBackoff() *retry.Retrier {
	return retry.New(retry.WithInitialDelay(time.Millisecond), retry.WithMaxDelay(2*time.Millisecond), retry.WithJitter(0))
}

func TestListener_DeliversInOrderPerQueue(t *testing.T) {
	src := newMemorySource()
	src.push("nfl_depth_chart_queue", `{"type":"add_player","name":"Bob"}`, `{"type":"get_full"}`)
	src.push("mlb_depth_chart_queue", `{"type":"add_player","name":"Alice"}`)

	nfl, mlb := &recordingProcessor{}, &recordingProcessor{}
	l := NewListener(src, []Binding{
		{Queue: "nfl_depth_chart_queue", Processor: nfl},
		{Queue: "mlb_depth_chart_queue", Processor: mlb},
	}, WithPollTimeout(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(nfl.seen()) == 2 && len(mlb.seen()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{`{"type":"add_player","name":"Bob"}`, `{"type":"get_full"}`}, nfl.seen())
	assert.Equal(t, []string{`{"type":"add_player","name":"Alice"}`}, mlb.seen())
}

func TestListener_BacksOffOnTransportErrors(t *testing.T) {
	src := newMemorySource()
	src.failing = 3
	src.push("q", `{"type":"get_full"}`)

	var mu sync.Mutex
	var hookCalls int
	proc := &recordingProcessor{}
	l := NewListener(src, []Binding{{Queue: "q", Processor: proc}},
		WithPollTimeout(time.Millisecond),
		WithBackoff(fastBackoff()),
		WithTransportErrorHook(func(queue string, err error) {
			mu.Lock()
			defer mu.Unlock()
			hookCalls++
			assert.Equal(t, "q", queue)
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	require.Eventually(t, func() bool { return len(proc.seen()) == 1 }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, hookCalls)
}

func TestListener_RejectsInvalidBindings(t *testing.T) {
	ctx := context.Background()

	err := NewListener(newMemorySource(), nil).Run(ctx)
	assert.Error(t, err)

	err = NewListener(newMemorySource(), []Binding{{Queue: "", Processor: &recordingProcessor{}}}).Run(ctx)
	assert.ErrorIs(t, err, ErrQueueNameEmpty)

	err = NewListener(newMemorySource(), []Binding{{Queue: "q"}}).Run(ctx)
	assert.Error(t, err)
}

func TestListener_DrivesInterpreter(t *testing.T) {
	src := newMemorySource()
	src.push("nfl_depth_chart_queue",
		`{"type":"add_player","name":"Bob"}`,
		`{"type":"add","name":"Bob","position":"QB","depth":0}`,
		`{"type":"get_full"}`,
	)

	out := &lockedBuffer{}
	engine := depthchart.NewEngine(position.NFL(), nil)
	interp := interpreter.New("nfl", engine, out)

	l := NewListener(src, []Binding{{Queue: "nfl_depth_chart_queue", Processor: interp}}, WithPollTimeout(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	want := "Added Player Bob with Id: 1\n" +
		"Added Player Bob with position 'QB' to depth: 0\n" +
		"Depth Chart:\nQB: [1]\n"
	require.Eventually(t, func() bool { return out.String() == want }, time.Second, 5*time.Millisecond)
}
