package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "depth-chart-hub", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 30*time.Second, cfg.App.ShutdownTimeout)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 5*time.Second, cfg.Redis.PollTimeout)

	assert.Equal(t, []string{"nfl", "mlb"}, cfg.Sports.Enabled)
	assert.Empty(t, cfg.Sports.QueuePrefix)
	assert.Empty(t, cfg.Sports.SeedPlayers)
	assert.Equal(t, "nfl", cfg.Sports.ConsoleSport)

	assert.False(t, cfg.Database.JournalEnabled)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Address())
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.Observability.QueueDepthInterval)
	assert.Zero(t, cfg.Database.JournalRetention)
	assert.Equal(t, time.Hour, cfg.Database.JournalPruneInterval)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DEPTHCHART_SPORTS", " NFL, nhl ,")
	t.Setenv("DEPTHCHART_QUEUE_PREFIX", "staging:")
	t.Setenv("DEPTHCHART_SEED_PLAYERS", "Bob, Alice ,Charlie")
	t.Setenv("REDIS_POLL_TIMEOUT", "250ms")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"nfl", "nhl"}, cfg.Sports.Enabled)
	assert.Equal(t, "staging:", cfg.Sports.QueuePrefix)
	assert.Equal(t, []string{"Bob", "Alice", "Charlie"}, cfg.Sports.SeedPlayers)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.PollTimeout)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_RedisURL(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://:s3cret@cache.internal:6380/2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", cfg.Redis.Addr())
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_RejectsBadRedisURL(t *testing.T) {
	t.Setenv("REDIS_URL", "http://cache.internal:6380")

	_, err := Load()
	assert.ErrorContains(t, err, "scheme")
}

func TestLoad_ValidationAggregatesErrors(t *testing.T) {
	t.Setenv("DEPTHCHART_SPORTS", "nfl,cricket,nfl")
	t.Setenv("JOURNAL_ENABLED", "true")
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `unknown sport "cricket"`)
	assert.Contains(t, msg, `lists "nfl" twice`)
	assert.Contains(t, msg, "DATABASE_URL is required when JOURNAL_ENABLED is set")
	assert.Contains(t, msg, "HTTP_PORT must be 1-65535")
}

func TestLoad_RejectsEmptySportList(t *testing.T) {
	t.Setenv("DEPTHCHART_SPORTS", " , ")

	_, err := Load()
	assert.ErrorContains(t, err, "at least one sport")
}

func TestLoad_ParseErrors(t *testing.T) {
	t.Setenv("REDIS_PORT", "not-a-number")

	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestLoad_JournalRetention(t *testing.T) {
	t.Setenv("JOURNAL_RETENTION", "168h")
	t.Setenv("JOURNAL_PRUNE_INTERVAL", "0s")

	_, err := Load()
	assert.ErrorContains(t, err, "JOURNAL_PRUNE_INTERVAL must be positive")

	t.Setenv("JOURNAL_PRUNE_INTERVAL", "30m")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.Database.JournalRetention)
	assert.Equal(t, 30*time.Minute, cfg.Database.JournalPruneInterval)
}
