package approval

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mendhq/mend/internal/types"
)

// Store is the in-memory registry of approval requests. It owns all mutable
// workflow state: every transition (create, respond, expire, cancel) happens
// under the store mutex, including the lazy expiry performed by reads, so two
// concurrent responders can never both observe pending and both win.
//
// Records are retained indefinitely; cleanup only changes status, it never
// evicts.
type Store struct {
	mu       sync.Mutex
	requests map[string]*types.ApprovalRequest
}

// NewStore creates an empty approval store
func NewStore() *Store {
	return &Store{requests: make(map[string]*types.ApprovalRequest)}
}

// Insert registers a new pending request. The caller hands over ownership of
// req; subsequent reads return clones.
func (s *Store) Insert(req *types.ApprovalRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
}

// Get returns a copy of the request, applying lazy expiry as a side effect of
// the read: a pending record past its deadline is flipped to expired before it
// is returned. The second return is false when the id is unknown.
func (s *Store) Get(id string, now time.Time) (*types.ApprovalRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, false
	}
	s.expireLocked(req, now)
	return req.Clone(), true
}

// Respond appends a decision to a pending request and moves it to its terminal
// state. Returns false if the id is unknown, the record already reached a
// terminal state, or the deadline has passed (the record is flipped to expired
// in that case). Exactly one concurrent responder can succeed.
func (s *Store) Respond(id string, resp types.ApprovalResponse, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return false
	}
	if s.expireLocked(req, now) {
		return false
	}
	if req.Status != types.StatusPending {
		return false
	}

	resp.Decision = strings.ToLower(resp.Decision)
	req.Responses = append(req.Responses, resp)
	if resp.Approved() {
		s.transitionLocked(req, types.StatusApproved)
	} else {
		s.transitionLocked(req, types.StatusRejected)
	}
	return true
}

// Cancel withdraws a pending request. Returns false if the id is unknown or
// the request already reached a terminal state (including lazy expiry).
func (s *Store) Cancel(id string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return false
	}
	if s.expireLocked(req, now) {
		return false
	}
	if req.Status != types.StatusPending {
		return false
	}
	s.transitionLocked(req, types.StatusCancelled)
	return true
}

// SweepExpired transitions every pending request past its deadline to expired
// and returns the ids changed. Idempotent: a record already expired is left
// untouched and never reported twice.
func (s *Store) SweepExpired(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for id, req := range s.requests {
		if s.expireLocked(req, now) {
			expired = append(expired, id)
		}
	}
	return expired
}

// ListPending returns copies of all requests still pending at the given
// instant. Lazy expiry applies here too.
func (s *Store) ListPending(now time.Time) []*types.ApprovalRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*types.ApprovalRequest
	for _, req := range s.requests {
		s.expireLocked(req, now)
		if req.Status == types.StatusPending {
			pending = append(pending, req.Clone())
		}
	}
	return pending
}

// Len returns the total number of retained records
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// expireLocked applies the shared expiry predicate to one record. Returns true
// only when this call performed the pending→expired transition. Must be called
// with s.mu held.
func (s *Store) expireLocked(req *types.ApprovalRequest, now time.Time) bool {
	if req.Status == types.StatusPending && req.Expired(now) {
		s.transitionLocked(req, types.StatusExpired)
		return true
	}
	return false
}

// transitionLocked moves a record out of pending. A transition attempted on a
// record that is not pending means the store invariant was violated; that is
// unreachable through the public API and treated as fatal rather than
// tolerated. Must be called with s.mu held.
func (s *Store) transitionLocked(req *types.ApprovalRequest, to types.ApprovalStatus) {
	if req.Status != types.StatusPending {
		panic(fmt.Sprintf("approval store corrupted: %s transition %s -> %s", req.ID, req.Status, to))
	}
	req.Status = to
}
