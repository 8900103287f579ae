// Package console implements the interactive sender used to push JSON
// commands onto a sport queue by hand.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
	"github.com/depthchart-hub/depth-chart-hub/internal/infrastructure/messaging"
)

// ErrInvalidJSON is reported for input that is not valid JSON.
var ErrInvalidJSON = errors.New("input is not valid JSON")

// Session reads one JSON message per line from in and publishes it to the
// queue. It stops at "exit", end of input, or context cancellation.
type Session struct {
	publisher messaging.Publisher
	queue     string
	taxonomy  *position.Taxonomy
	in        io.Reader
	out       io.Writer
}

// NewSession creates a Session. The taxonomy is only used for the help text
// and may be nil.
func NewSession(publisher messaging.Publisher, queue string, taxonomy *position.Taxonomy, in io.Reader, out io.Writer) *Session {
	return &Session{
		publisher: publisher,
		queue:     queue,
		taxonomy:  taxonomy,
		in:        in,
		out:       out,
	}
}

// Run drives the read-publish loop.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "Connected to Redis. Enter JSON messages to send to %s (or type 'exit' to quit):\n", s.queue)
	s.printOptions()

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			break
		}

		input := scanner.Text()
		if strings.TrimSpace(input) == "" {
			fmt.Fprintln(s.out, "Please enter a valid JSON message.")
			continue
		}
		if strings.ToLower(strings.TrimSpace(input)) == "exit" {
			break
		}

		if err := s.Send(ctx, input); err != nil {
			fmt.Fprintf(s.out, "Error sending message: %v\n", err)
			continue
		}
		fmt.Fprintf(s.out, "Sent to %s: %s\n", s.queue, input)
	}

	fmt.Fprintln(s.out, "Exiting interactive mode...")
	return nil
}

// Send validates input as JSON and publishes it unchanged.
func (s *Session) Send(ctx context.Context, input string) error {
	if !json.Valid([]byte(input)) {
		return ErrInvalidJSON
	}
	return s.publisher.Push(ctx, s.queue, []byte(input))
}

// SendAll publishes messages in order and confirms each one. It stops at the
// first message that fails; later messages are not sent.
func (s *Session) SendAll(ctx context.Context, messages []string) error {
	for n, msg := range messages {
		if err := s.Send(ctx, msg); err != nil {
			return fmt.Errorf("message %d (%s): %w", n+1, msg, err)
		}
		fmt.Fprintf(s.out, "Sent to %s: %s\n", s.queue, msg)
	}
	return nil
}

func (s *Session) printOptions() {
	lines := []string{
		"",
		"Available message types (use camelCase JSON):",
		"1. Add Player: Registers a new player.",
		`   Example: {"type":"add_player","playerId":1,"name":"Bob"}`,
		"2. Add to Depth Chart: Adds/updates a player's position with depth.",
		`   Example: {"type":"add","name":"Bob","position":"WR","depth":0}`,
		`   Optional depth: {"type":"add","playerId":1,"name":"Bob","position":"KR"}`,
		"3. Remove from Depth Chart: Removes a player from a position.",
		`   Example: {"type":"remove","name":"Bob","position":"WR"}`,
		"4. Get Full Depth Chart: Displays the entire chart.",
		`   Example: {"type":"get_full"}`,
		"5. Get Players Under: Lists players below a specific player.",
		`   Example: {"type":"get_under","name":"Alice","position":"WR"}`,
	}
	for _, l := range lines {
		fmt.Fprintln(s.out, l)
	}
	if s.taxonomy != nil {
		tags := s.taxonomy.Tags()
		names := make([]string, len(tags))
		for i, t := range tags {
			names[i] = t.String()
		}
		fmt.Fprintf(s.out, "Use %s positions: %s\n\n", strings.ToUpper(s.taxonomy.Sport()), strings.Join(names, ", "))
	}
}
