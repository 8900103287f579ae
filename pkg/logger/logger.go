// Package logger writes structured logs as one flat JSON object per line:
//
//	{"time":"...","level":"info","msg":"sport ready","sport":"nfl","queue":"nfl_depth_chart_queue"}
//
// Fields sit next to time, level and msg so log shippers can index them
// without unnesting.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError

	levelOff
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "level(" + strconv.Itoa(int(l)) + ")"
}

// ParseLevel reads LOG_LEVEL values. Unknown input means info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// Field is one key/value pair of a log line.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field      { return Field{key, value} }
func Int(key string, value int) Field     { return Field{key, value} }
func Int64(key string, value int64) Field { return Field{key, value} }
func Any(key string, value any) Field     { return Field{key, value} }

// Err records err under "error". A nil error is logged as null.
func Err(err error) Field {
	if err == nil {
		return Field{"error", nil}
	}
	return Field{"error", err.Error()}
}

// Duration records d in its String form, e.g. "1.5s".
func Duration(key string, d time.Duration) Field { return Field{key, d.String()} }

// Time records t as RFC 3339 in UTC.
func Time(key string, t time.Time) Field { return Field{key, t.UTC().Format(time.RFC3339)} }

// Depth chart fields.
func Sport(id string) Field         { return String("sport", id) }
func Queue(name string) Field       { return String("queue", name) }
func PlayerID(id int) Field         { return Int("player_id", id) }
func CommandType(t string) Field    { return String("command_type", t) }
func Component(name string) Field   { return String("component", name) }
func Job(name string) Field         { return String("job", name) }
func RequestID(id string) Field     { return String("request_id", id) }
func Latency(d time.Duration) Field { return Duration("latency", d) }

// Options configures New.
type Options struct {
	Output    io.Writer // default os.Stderr
	Level     Level
	AddCaller bool
}

// sink is shared by a logger and every logger derived from it with With, so
// lines from different components never interleave.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// Logger is safe for concurrent use.
type Logger struct {
	out    *sink
	level  Level
	caller bool
	fields []Field
}

// New creates a Logger.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return &Logger{
		out:    &sink{w: opts.Output},
		level:  opts.Level,
		caller: opts.AddCaller,
	}
}

// Nop returns a Logger that writes nothing.
func Nop() *Logger {
	return &Logger{out: &sink{w: io.Discard}, level: levelOff}
}

// With returns a child logger that adds fields to every line. A field
// whose key is already set replaces the earlier value.
func (l *Logger) With(fields ...Field) *Logger {
	child := *l
	child.fields = merge(l.fields, fields)
	return &child
}

// WithLevel returns a child logger with a different threshold.
func (l *Logger) WithLevel(level Level) *Logger {
	child := *l
	child.level = level
	return &child
}

// Enabled reports whether a line at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level && l.level < levelOff
}

func (l *Logger) Debug(msg string, fields ...Field) { l.write(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.write(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.write(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.write(LevelError, msg, fields) }

func (l *Logger) write(level Level, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}

	buf := make([]byte, 0, 256)
	buf = append(buf, `{"time":`...)
	buf = appendJSON(buf, time.Now().UTC().Format(time.RFC3339Nano))
	buf = append(buf, `,"level":`...)
	buf = appendJSON(buf, level.String())
	buf = append(buf, `,"msg":`...)
	buf = appendJSON(buf, msg)

	if l.caller {
		// 0: write, 1: Info and friends, 2: the caller.
		if _, file, line, ok := runtime.Caller(2); ok {
			if i := strings.LastIndexByte(file, '/'); i >= 0 {
				file = file[i+1:]
			}
			buf = append(buf, `,"caller":`...)
			buf = appendJSON(buf, file+":"+strconv.Itoa(line))
		}
	}

	for _, f := range merge(l.fields, fields) {
		buf = append(buf, ',')
		buf = appendJSON(buf, f.Key)
		buf = append(buf, ':')
		buf = appendJSON(buf, f.Value)
	}
	buf = append(buf, "}\n"...)

	l.out.mu.Lock()
	_, _ = l.out.w.Write(buf)
	l.out.mu.Unlock()
}

func appendJSON(buf []byte, v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprint(v))
	}
	return append(buf, b...)
}

// merge appends extra to base, keeping the first position of each key and
// the last value.
func merge(base, extra []Field) []Field {
	if len(extra) == 0 {
		return base
	}
	out := make([]Field, 0, len(base)+len(extra))
	pos := make(map[string]int, len(base)+len(extra))
	for _, list := range [2][]Field{base, extra} {
		for _, f := range list {
			if i, ok := pos[f.Key]; ok {
				out[i] = f
				continue
			}
			pos[f.Key] = len(out)
			out = append(out, f)
		}
	}
	return out
}

type ctxKey struct{}

// WithContext attaches l to ctx.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached by WithContext, or fallback when
// there is none.
func FromContext(ctx context.Context, fallback *Logger) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return fallback
}
