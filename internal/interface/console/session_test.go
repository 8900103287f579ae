package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
)

type fakePublisher struct {
	err    error
	pushed map[string][]string
}

func (f *fakePublisher) Push(_ context.Context, queue string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.pushed == nil {
		f.pushed = make(map[string][]string)
	}
	f.pushed[queue] = append(f.pushed[queue], string(payload))
	return nil
}

func TestSession_PublishesValidJSON(t *testing.T) {
	pub := &fakePublisher{}
	in := strings.NewReader(strings.Join([]string{
		`{"type":"add_player","name":"Bob"}`,
		"",
		"{not json",
		`{"type":"get_full"}`,
		"EXIT",
		`{"type":"get_full"}`,
	}, "\n"))
	var out bytes.Buffer

	s := NewSession(pub, "nfl_depth_chart_queue", position.NFL(), in, &out)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{`{"type":"add_player","name":"Bob"}`, `{"type":"get_full"}`}, pub.pushed["nfl_depth_chart_queue"])

	text := out.String()
	assert.Contains(t, text, "Sent to nfl_depth_chart_queue: {\"type\":\"add_player\",\"name\":\"Bob\"}\n")
	assert.Contains(t, text, "Please enter a valid JSON message.\n")
	assert.Contains(t, text, "Error sending message: input is not valid JSON\n")
	assert.Contains(t, text, "Use NFL positions: QB, WR, RB, TE, K, P, KR, PR\n")
	assert.True(t, strings.HasSuffix(text, "Exiting interactive mode...\n"))
}

func TestSession_ReportsPublishErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	var out bytes.Buffer

	s := NewSession(pub, "mlb_depth_chart_queue", nil, strings.NewReader(`{"type":"get_full"}`), &out)
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Error sending message: connection refused\n")
	assert.NotContains(t, out.String(), "Sent to")
	assert.NotContains(t, out.String(), "positions:")
}

func TestSession_SendAllStopsAtFirstFailure(t *testing.T) {
	pub := &fakePublisher{}
	var out bytes.Buffer
	s := NewSession(pub, "nfl_depth_chart_queue", nil, nil, &out)

	err := s.SendAll(context.Background(), []string{
		`{"type":"add_player","name":"Bob"}`,
		`{"type":"add","name":`,
		`{"type":"get_full"}`,
	})

	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.ErrorContains(t, err, "message 2")
	assert.Equal(t, []string{`{"type":"add_player","name":"Bob"}`}, pub.pushed["nfl_depth_chart_queue"])
	assert.Equal(t, "Sent to nfl_depth_chart_queue: {\"type\":\"add_player\",\"name\":\"Bob\"}\n", out.String())
}

func TestSession_SendAllPublishesEverything(t *testing.T) {
	pub := &fakePublisher{}
	var out bytes.Buffer
	s := NewSession(pub, "mlb_depth_chart_queue", nil, nil, &out)

	require.NoError(t, s.SendAll(context.Background(), []string{`{"type":"get_full"}`, `{"type":"get_full"}`}))

	assert.Len(t, pub.pushed["mlb_depth_chart_queue"], 2)
	assert.Equal(t, 2, strings.Count(out.String(), "Sent to mlb_depth_chart_queue"))
}
