// Package monitor watches the mend process itself: heap and goroutine
// samples on a fixed interval, threshold alerts, and redaction helpers for
// anything that leaves the process in logs or notifications.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Report is one health sample
type Report struct {
	Timestamp   time.Time `json:"timestamp"`
	HeapMB      uint64    `json:"heap_mb"`
	SysMB       uint64    `json:"sys_mb"`
	Goroutines  int       `json:"goroutines"`
	NumGC       uint32    `json:"num_gc"`
	Alerts      []string  `json:"alerts,omitempty"`
	CheckNumber uint64    `json:"check_number"`
}

// Healthy reports whether the sample raised no alerts
func (r Report) Healthy() bool { return len(r.Alerts) == 0 }

// Callback receives every sample the agent takes
type Callback func(Report)

// Config holds monitor agent configuration
type Config struct {
	// CheckInterval is how often to sample process health
	// Default: 30 seconds
	CheckInterval time.Duration

	// MaxHeapMB raises an alert when heap allocation exceeds it
	// Default: 1024
	MaxHeapMB uint64

	// MaxGoroutines raises an alert when the goroutine count exceeds it
	// Default: 5000
	MaxGoroutines int

	Logger *slog.Logger
}

// DefaultConfig returns default monitor configuration
func DefaultConfig() *Config {
	return &Config{
		CheckInterval: 30 * time.Second,
		MaxHeapMB:     1024,
		MaxGoroutines: 5000,
	}
}

// Agent samples process health on an interval and fans samples out to
// registered callbacks. Start/Stop are idempotent in the usual direction:
// Start on a running agent and Stop on a stopped one are errors.
type Agent struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	callbacks []Callback
	last      *Report
	checks    uint64
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewAgent creates a monitor agent
func NewAgent(cfg *Config) *Agent {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	resolved := *cfg
	if resolved.CheckInterval <= 0 {
		resolved.CheckInterval = 30 * time.Second
	}
	if resolved.MaxHeapMB == 0 {
		resolved.MaxHeapMB = 1024
	}
	if resolved.MaxGoroutines <= 0 {
		resolved.MaxGoroutines = 5000
	}
	logger := resolved.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{cfg: resolved, logger: logger}
}

// RegisterCallback adds a callback invoked with every sample. Callbacks run
// on the sampling goroutine and must return quickly.
func (a *Agent) RegisterCallback(cb Callback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

// Start begins the sampling loop. It returns immediately; sampling runs in
// the background until Stop is called or ctx is cancelled.
func (a *Agent) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return fmt.Errorf("monitor agent already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.run(loopCtx, a.done)
	a.logger.Info("monitor agent started", "interval", a.cfg.CheckInterval)
	return nil
}

// Stop halts the sampling loop and waits for it to exit
func (a *Agent) Stop() error {
	a.mu.Lock()
	if a.cancel == nil {
		a.mu.Unlock()
		return fmt.Errorf("monitor agent not running")
	}
	cancel := a.cancel
	done := a.done
	a.cancel = nil
	a.done = nil
	a.mu.Unlock()

	cancel()
	<-done
	a.logger.Info("monitor agent stopped")
	return nil
}

// Status returns the most recent sample, or false if none has been taken
func (a *Agent) Status() (Report, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return Report{}, false
	}
	return *a.last, true
}

func (a *Agent) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.cfg.CheckInterval)
	defer ticker.Stop()

	// Take one sample immediately so Status works right after Start
	a.sample()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sample()
		}
	}
}

// sample takes one health reading and notifies callbacks
func (a *Agent) sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	report := Report{
		Timestamp:  time.Now(),
		HeapMB:     ms.HeapAlloc / (1024 * 1024),
		SysMB:      ms.Sys / (1024 * 1024),
		Goroutines: runtime.NumGoroutine(),
		NumGC:      ms.NumGC,
	}

	if report.HeapMB > a.cfg.MaxHeapMB {
		report.Alerts = append(report.Alerts,
			fmt.Sprintf("heap %dMB exceeds limit %dMB", report.HeapMB, a.cfg.MaxHeapMB))
	}
	if report.Goroutines > a.cfg.MaxGoroutines {
		report.Alerts = append(report.Alerts,
			fmt.Sprintf("%d goroutines exceeds limit %d", report.Goroutines, a.cfg.MaxGoroutines))
	}

	a.mu.Lock()
	a.checks++
	report.CheckNumber = a.checks
	a.last = &report
	callbacks := append([]Callback(nil), a.callbacks...)
	a.mu.Unlock()

	if !report.Healthy() {
		a.logger.Warn("monitor alert", "alerts", report.Alerts,
			"heap_mb", report.HeapMB, "goroutines", report.Goroutines)
	}

	for _, cb := range callbacks {
		cb(report)
	}
}
