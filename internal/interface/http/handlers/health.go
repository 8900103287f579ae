// Package handlers holds the dependency checks behind /health and /ready.
package handlers

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Check tests one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// Pinger is implemented by the Redis queue.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck wraps a Pinger.
func PingCheck(p Pinger) Check {
	return p.Ping
}

// Result is the outcome of one check.
type Result struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Report is the outcome of every registered check.
type Report struct {
	Healthy bool     `json:"healthy"`
	Version string   `json:"version,omitempty"`
	Uptime  string   `json:"uptime"`
	Checks  []Result `json:"checks"`
}

// Failing returns the names of the checks that failed, sorted.
func (r Report) Failing() []string {
	var names []string
	for _, c := range r.Checks {
		if !c.OK {
			names = append(names, c.Name)
		}
	}
	return names
}

// Checker runs named checks concurrently, each under its own timeout.
type Checker struct {
	version string
	timeout time.Duration
	started time.Time

	mu     sync.RWMutex
	checks map[string]Check
}

// NewChecker creates a Checker. A timeout of zero or less means 2s.
func NewChecker(version string, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{
		version: version,
		timeout: timeout,
		started: time.Now(),
		checks:  make(map[string]Check),
	}
}

// Add registers or replaces a check.
func (c *Checker) Add(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run executes every check. With no checks registered the report is
// healthy.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make([]Check, len(names))
	sort.Strings(names)
	for i, name := range names {
		checks[i] = c.checks[name]
	}
	c.mu.RUnlock()

	results := make([]Result, len(names))
	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.run(ctx, names[i], checks[i])
		}(i)
	}
	wg.Wait()

	report := Report{
		Healthy: true,
		Version: c.version,
		Uptime:  time.Since(c.started).Round(time.Second).String(),
		Checks:  results,
	}
	for _, r := range results {
		if !r.OK {
			report.Healthy = false
		}
	}
	return report
}

func (c *Checker) run(ctx context.Context, name string, check Check) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	r := Result{
		Name:    name,
		OK:      err == nil,
		Latency: time.Since(start).Round(time.Microsecond).String(),
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
