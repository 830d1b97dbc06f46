// Package approval implements the human-authorization workflow that gates
// automated code repairs. A proposed repair becomes a time-bounded approval
// request; recipients are notified over configured channels and the request
// moves from pending to exactly one terminal state (approved, rejected,
// expired, or cancelled).
package approval

import (
	"context"
	"log/slog"
	"time"

	"github.com/mendhq/mend/internal/types"
)

// DefaultTimeoutHours bounds how long a request stays answerable when the
// caller does not say otherwise.
const DefaultTimeoutHours = 24

// DefaultChannel is used when the caller supplies no channels
const DefaultChannel = "email"

// Notifier fans an approval request out to its channels. Implementations must
// treat every channel independently: a failure on one channel is logged by the
// implementation and never prevents attempts on the rest. The returned counts
// are informational only.
type Notifier interface {
	Dispatch(ctx context.Context, req *types.ApprovalRequest) (sent, failed int)
}

// Workflow orchestrates request creation, expiry, and response processing on
// top of the Store and a Notifier. Notification is best-effort: once a record
// is persisted, creation has succeeded regardless of delivery outcome.
type Workflow struct {
	store    *Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Config holds workflow configuration
type Config struct {
	Notifier Notifier         // Optional: nil disables notification fan-out
	Logger   *slog.Logger     // Optional: defaults to slog.Default()
	Clock    func() time.Time // Optional: defaults to time.Now (tests inject a fake)
}

// NewWorkflow creates a new approval workflow with its own empty store
func NewWorkflow(cfg *Config) *Workflow {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Workflow{
		store:    NewStore(),
		notifier: cfg.Notifier,
		logger:   logger,
		now:      now,
	}
}

// RequestApproval creates a pending approval request for the repair and asks
// the notifier to deliver it. Channels defaults to [DefaultChannel] and
// timeoutHours to DefaultTimeoutHours when zero or negative. The id is
// returned once the record is persisted; notification failures (or an empty
// recipient list) degrade to log entries, never to errors.
func (w *Workflow) RequestApproval(ctx context.Context, repair types.RepairDescriptor, recipients []string, channels []string, timeoutHours int) string {
	if len(channels) == 0 {
		channels = []string{DefaultChannel}
	}
	if timeoutHours <= 0 {
		timeoutHours = DefaultTimeoutHours
	}

	now := w.now()
	req := &types.ApprovalRequest{
		ID:           types.NewApprovalID(),
		Repair:       repair,
		Recipients:   append([]string(nil), recipients...),
		Channels:     append([]string(nil), channels...),
		Status:       types.StatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Duration(timeoutHours) * time.Hour),
		TimeoutHours: timeoutHours,
	}
	w.store.Insert(req)

	if len(recipients) == 0 {
		w.logger.Warn("approval request created with no recipients, delivery degraded", "id", req.ID)
	}

	if w.notifier != nil {
		sent, failed := w.notifier.Dispatch(ctx, req.Clone())
		if failed > 0 {
			w.logger.Warn("approval notification partially failed",
				"id", req.ID, "sent", sent, "failed", failed)
		}
	}

	w.logger.Info("approval request created",
		"id", req.ID, "repair_type", repair.Type, "file", repair.File,
		"recipients", len(recipients), "expires_at", req.ExpiresAt)
	return req.ID
}

// CheckStatus returns a copy of the request, or (nil, false) when the id is
// unknown. Reading a pending request past its deadline flips it to expired and
// persists that change before returning.
func (w *Workflow) CheckStatus(id string) (*types.ApprovalRequest, bool) {
	return w.store.Get(id, w.now())
}

// ProcessResponse records a decision against a pending request. The decision
// "approve" (case-insensitive) approves; any other string rejects. Returns
// false without side effects when the id is unknown or the request already
// reached a terminal state. Decisions are final; a second call after the
// first response always returns false.
func (w *Workflow) ProcessResponse(id, responder, decision, comments string) bool {
	resp := types.ApprovalResponse{
		Responder: responder,
		Decision:  decision,
		Comments:  comments,
		Timestamp: w.now(),
	}
	ok := w.store.Respond(id, resp, w.now())
	if ok {
		if resp.Approved() {
			w.logger.Info("approval granted", "id", id, "responder", responder)
		} else {
			w.logger.Info("approval rejected", "id", id, "responder", responder)
		}
	}
	return ok
}

// Cancel withdraws a pending request. Returns false if the request is unknown
// or already terminal.
func (w *Workflow) Cancel(id string) bool {
	ok := w.store.Cancel(id, w.now())
	if ok {
		w.logger.Info("approval request cancelled", "id", id)
	}
	return ok
}

// CleanupExpired proactively sweeps all pending requests past their deadline
// and returns the ids it transitioned to expired. Safe to run on a schedule;
// an already-expired record is never reported twice.
func (w *Workflow) CleanupExpired() []string {
	expired := w.store.SweepExpired(w.now())
	for _, id := range expired {
		w.logger.Info("approval request expired", "id", id)
	}
	return expired
}

// ListPending returns all requests still awaiting a decision
func (w *Workflow) ListPending() []*types.ApprovalRequest {
	return w.store.ListPending(w.now())
}

// Store exposes the underlying store for callers that manage their own
// scheduling of sweeps.
func (w *Workflow) Store() *Store {
	return w.store
}
