// Package messaging implements the Redis list transport that carries depth
// chart commands to their sport interpreters.
//
// Each sport owns one list (e.g. "nfl_depth_chart_queue"). Producers RPUSH
// JSON payloads; the worker BLPOPs them. A popped payload is gone from Redis,
// so delivery is at-most-once and a failed command is never redelivered.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections. Every listener
	// holds one connection while blocked in BLPOP.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads. Blocking pops extend it by
	// their own timeout.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrQueueConnection is returned when Redis cannot be reached.
	ErrQueueConnection = errors.New("queue: connection failed")

	// ErrQueueNameEmpty is returned when an empty queue name is provided.
	ErrQueueNameEmpty = errors.New("queue: name cannot be empty")

	// ErrEmptyMessage is returned when publishing an empty payload.
	ErrEmptyMessage = errors.New("queue: message cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Source yields payloads from a named queue.
type Source interface {
	// Pop waits up to timeout for the next payload. ok is false when the
	// timeout elapsed with nothing to read.
	Pop(ctx context.Context, queue string, timeout time.Duration) (payload []byte, ok bool, err error)
}

// Publisher appends payloads to a named queue.
type Publisher interface {
	Push(ctx context.Context, queue string, payload []byte) error
}

// ══════════════════════════════════════════════════════════════════════════════
// REDIS QUEUE
// ══════════════════════════════════════════════════════════════════════════════

// RedisQueue is a Source and Publisher backed by Redis lists.
type RedisQueue struct {
	client *redis.Client
}

var (
	_ Source    = (*RedisQueue)(nil)
	_ Publisher = (*RedisQueue)(nil)
)

// NewRedisQueue connects to Redis and verifies the connection with PING.
func NewRedisQueue(ctx context.Context, cfg Config) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQueueConnection, err)
	}

	return &RedisQueue{client: client}, nil
}

// NewRedisQueueFromClient wraps an existing client without pinging it.
func NewRedisQueueFromClient(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

// Pop blocks on BLPOP for up to timeout.
func (q *RedisQueue) Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, bool, error) {
	if queue == "" {
		return nil, false, ErrQueueNameEmpty
	}

	res, err := q.client.BLPop(ctx, timeout, queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("blpop %s: %w", queue, err)
	}
	// BLPOP replies with [key, value].
	if len(res) != 2 {
		return nil, false, fmt.Errorf("blpop %s: unexpected reply length %d", queue, len(res))
	}
	return []byte(res[1]), true, nil
}

// Push appends payload to the tail of queue.
func (q *RedisQueue) Push(ctx context.Context, queue string, payload []byte) error {
	if queue == "" {
		return ErrQueueNameEmpty
	}
	if len(payload) == 0 {
		return ErrEmptyMessage
	}
	if err := q.client.RPush(ctx, queue, payload).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", queue, err)
	}
	return nil
}

// Len returns the number of payloads waiting in queue.
func (q *RedisQueue) Len(ctx context.Context, queue string) (int64, error) {
	if queue == "" {
		return 0, ErrQueueNameEmpty
	}
	n, err := q.client.LLen(ctx, queue).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", queue, err)
	}
	return n, nil
}

// Ping checks if Redis is reachable.
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Client returns the underlying Redis client.
func (q *RedisQueue) Client() *redis.Client {
	return q.client
}

// Close closes the Redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
