// Package events provides the persistent audit trail for the repair pipeline:
// classifications, approval lifecycle transitions, notification faults, and
// repair attempts are recorded as typed events in SQLite so an operator can
// reconstruct who approved what, when, and why.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened
type EventType string

const (
	// EventErrorClassified records a ProcessedError produced by the classifier
	EventErrorClassified EventType = "error_classified"
	// EventApprovalRequested records the creation of an approval request
	EventApprovalRequested EventType = "approval_requested"
	// EventApprovalResponded records a decision landing on a request
	EventApprovalResponded EventType = "approval_responded"
	// EventApprovalExpired records a pending request passing its deadline
	EventApprovalExpired EventType = "approval_expired"
	// EventApprovalCancelled records a caller-initiated withdrawal
	EventApprovalCancelled EventType = "approval_cancelled"
	// EventNotificationFailed records a per-channel delivery fault
	EventNotificationFailed EventType = "notification_failed"
	// EventRepairAttempted records the outcome of an executed repair
	EventRepairAttempted EventType = "repair_attempted"
	// EventAnalysisCompleted records an AI code-analysis run
	EventAnalysisCompleted EventType = "analysis_completed"
	// EventMonitorAlert records a threshold breach reported by the monitor agent
	EventMonitorAlert EventType = "monitor_alert"
)

// IsValid checks if the event type value is valid
func (t EventType) IsValid() bool {
	switch t {
	case EventErrorClassified, EventApprovalRequested, EventApprovalResponded,
		EventApprovalExpired, EventApprovalCancelled, EventNotificationFailed,
		EventRepairAttempted, EventAnalysisCompleted, EventMonitorAlert:
		return true
	}
	return false
}

// Event is one audit trail entry. Subject carries the id of the thing the
// event is about (error id, approval id, repair id); Data is free-form detail.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Subject   string                 `json:"subject"`
	Actor     string                 `json:"actor,omitempty"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// New creates an event with a fresh id and the current time
func New(eventType EventType, subject, actor, message string, data map[string]interface{}) *Event {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Subject:   subject,
		Actor:     actor,
		Message:   message,
		Data:      data,
	}
}

// Filter narrows event queries; zero fields match everything
type Filter struct {
	Type    EventType
	Subject string
	After   time.Time
	Limit   int
}
