package notify

import (
	"context"
	"sync"

	"github.com/mendhq/mend/internal/types"
)

// RecordingSender captures every request it receives instead of delivering it.
// Used in tests and as a no-op stand-in for channels that are configured but
// not yet wired to a real transport.
type RecordingSender struct {
	name string

	mu   sync.Mutex
	sent []*types.ApprovalRequest
	err  error
}

// NewRecordingSender creates a recording sender for the given channel name
func NewRecordingSender(name string) *RecordingSender {
	return &RecordingSender{name: name}
}

// Name returns the channel name this sender serves
func (s *RecordingSender) Name() string { return s.name }

// Send records the request and returns the configured error, if any
func (s *RecordingSender) Send(ctx context.Context, req *types.ApprovalRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, req)
	return nil
}

// Fail makes every subsequent Send return err (nil restores success)
func (s *RecordingSender) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Sent returns the requests delivered so far
func (s *RecordingSender) Sent() []*types.ApprovalRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*types.ApprovalRequest(nil), s.sent...)
}
