// Package notify fans approval requests out to delivery channels. Channels
// are pluggable: a Sender is registered under a channel name and the
// Dispatcher resolves names at dispatch time, so new transports never touch
// workflow logic. Delivery is best-effort by contract: every failure is
// logged and counted, never escalated.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mendhq/mend/internal/types"
)

// Sender delivers one approval request over one transport. Implementations
// must honor ctx cancellation; the dispatcher bounds every call with a
// per-channel timeout.
type Sender interface {
	// Name returns the channel name this sender serves
	Name() string
	// Send attempts delivery of the request to its recipients
	Send(ctx context.Context, req *types.ApprovalRequest) error
}

// Registry maps channel names to senders
type Registry struct {
	mu      sync.RWMutex
	senders map[string]Sender
}

// NewRegistry creates an empty sender registry
func NewRegistry() *Registry {
	return &Registry{senders: make(map[string]Sender)}
}

// Register installs a sender under its channel name, replacing any previous
// sender for that name.
func (r *Registry) Register(s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[s.Name()] = s
}

// Lookup resolves a channel name to its sender
func (r *Registry) Lookup(channel string) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senders[channel]
	return s, ok
}

// Channels returns the registered channel names
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.senders))
	for name := range r.senders {
		names = append(names, name)
	}
	return names
}

// Dispatcher fans one request out to every channel it names. Channels are
// attempted independently and concurrently: a slow or failing channel cannot
// stall the others, and each attempt is bounded by PerChannelTimeout. A
// per-channel rate limiter keeps a burst of approvals from flooding any single
// transport.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	timeout  time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
	burst    int
}

// DispatcherConfig holds dispatcher configuration
type DispatcherConfig struct {
	Registry          *Registry
	Logger            *slog.Logger  // Optional: defaults to slog.Default()
	PerChannelTimeout time.Duration // Optional: default 10s
	RateEvery         time.Duration // Optional: min interval between sends per channel, default 1s
	RateBurst         int           // Optional: default 5
}

// NewDispatcher creates a notification dispatcher
func NewDispatcher(cfg *DispatcherConfig) (*Dispatcher, error) {
	if cfg == nil || cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.PerChannelTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	every := cfg.RateEvery
	if every <= 0 {
		every = time.Second
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 5
	}
	return &Dispatcher{
		registry: cfg.Registry,
		logger:   logger,
		timeout:  timeout,
		limiters: make(map[string]*rate.Limiter),
		every:    every,
		burst:    burst,
	}, nil
}

// Dispatch attempts delivery on every channel the request names. Unknown
// channels are skipped with a logged fault. Returns how many channels
// succeeded and how many failed or were skipped; it never returns an error,
// since notification failure is not the workflow's failure.
func (d *Dispatcher) Dispatch(ctx context.Context, req *types.ApprovalRequest) (sent, failed int) {
	var mu sync.Mutex
	g := new(errgroup.Group)

	for _, channel := range req.Channels {
		sender, ok := d.registry.Lookup(channel)
		if !ok {
			d.logger.Warn("no sender registered for channel, skipping",
				"channel", channel, "request", req.ID)
			mu.Lock()
			failed++
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			err := d.sendOne(ctx, sender, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				d.logger.Error("notification delivery failed",
					"channel", sender.Name(), "request", req.ID, "error", err)
			} else {
				sent++
			}
			return nil // failures are isolated per channel, never group-fatal
		})
	}

	_ = g.Wait()
	return sent, failed
}

// sendOne bounds a single delivery with the rate limiter and timeout
func (d *Dispatcher) sendOne(ctx context.Context, sender Sender, req *types.ApprovalRequest) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.limiter(sender.Name()).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return sender.Send(ctx, req)
}

func (d *Dispatcher) limiter(channel string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[channel]
	if !ok {
		l = rate.NewLimiter(rate.Every(d.every), d.burst)
		d.limiters[channel] = l
	}
	return l
}
