package types

import (
	"fmt"
	"strings"
	"time"
)

// Severity ranks how urgent a classified error is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// IsValid checks if the severity value is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// Rank returns the severity as an ordinal for threshold comparisons.
// Higher is more severe: info=0 ... critical=4.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	case SeverityInfo:
		return 0
	}
	return -1
}

// Category groups classified errors by the subsystem they implicate
type Category string

const (
	CategorySyntax        Category = "syntax"
	CategoryRuntime       Category = "runtime"
	CategoryLogic         Category = "logic"
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
	CategoryResource      Category = "resource"
	CategoryNetwork       Category = "network"
	CategoryDatabase      Category = "database"
	CategoryIntegration   Category = "integration"
	CategoryConfiguration Category = "configuration"
)

// IsValid checks if the category value is valid
func (c Category) IsValid() bool {
	switch c {
	case CategorySyntax, CategoryRuntime, CategoryLogic, CategorySecurity,
		CategoryPerformance, CategoryResource, CategoryNetwork,
		CategoryDatabase, CategoryIntegration, CategoryConfiguration:
		return true
	}
	return false
}

// ProcessedError is the structured classification of one raw diagnostic message.
// It is immutable once produced: the classifier returns a fresh value per call
// and nothing downstream mutates it.
type ProcessedError struct {
	ID               string                 `json:"id"`
	RawMessage       string                 `json:"raw_message"`
	Language         string                 `json:"language"`
	Type             string                 `json:"type"` // matched pattern name, or "unknown"
	Message          string                 `json:"message"`
	Severity         Severity               `json:"severity"`
	Category         Category               `json:"category"`
	Timestamp        time.Time              `json:"timestamp"`
	Context          map[string]interface{} `json:"context,omitempty"` // opaque caller passthrough
	SuggestedActions []string               `json:"suggested_actions"`
	PatternsFound    []string               `json:"patterns_found,omitempty"`
}

// Validate checks the classifier's output invariants: severity, category, and
// at least one suggested action are always populated.
func (e *ProcessedError) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !e.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", e.Severity)
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("invalid category: %s", e.Category)
	}
	if len(e.SuggestedActions) == 0 {
		return fmt.Errorf("suggested_actions must not be empty")
	}
	return nil
}

// ApprovalStatus represents the lifecycle state of an approval request
type ApprovalStatus string

const (
	StatusPending   ApprovalStatus = "pending"
	StatusApproved  ApprovalStatus = "approved"
	StatusRejected  ApprovalStatus = "rejected"
	StatusExpired   ApprovalStatus = "expired"
	StatusCancelled ApprovalStatus = "cancelled"
)

// IsValid checks if the approval status value is valid
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
// Every status except pending is terminal.
func (s ApprovalStatus) IsTerminal() bool {
	return s != StatusPending
}

// RepairDescriptor describes a candidate automated repair awaiting sign-off.
// The workflow treats it as an opaque payload: fields here are the conventional
// shape notification rendering expects, none are validated by the workflow.
type RepairDescriptor struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type,omitempty"`
	File        string `json:"file,omitempty"`
	Line        int    `json:"line,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Description string `json:"description,omitempty"`
	Solution    string `json:"solution,omitempty"` // proposed diff or replacement code
}

// ApprovalResponse is a single decision event recorded against a request
type ApprovalResponse struct {
	Responder string    `json:"responder"`
	Decision  string    `json:"decision"` // normalized to lowercase on record
	Comments  string    `json:"comments,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Approved reports whether this response approves the repair.
// "approve" (any case) approves; anything else rejects.
func (r *ApprovalResponse) Approved() bool {
	return strings.EqualFold(r.Decision, "approve")
}

// ApprovalRequest is one time-bounded authorization request for a repair.
// Status starts at pending and moves to exactly one terminal state; ExpiresAt
// is fixed at creation and never extended.
type ApprovalRequest struct {
	ID           string             `json:"id"`
	Repair       RepairDescriptor   `json:"repair"`
	Recipients   []string           `json:"recipients"`
	Channels     []string           `json:"channels"`
	Status       ApprovalStatus     `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	ExpiresAt    time.Time          `json:"expires_at"`
	Responses    []ApprovalResponse `json:"responses"`
	TimeoutHours int                `json:"timeout_hours"`
}

// Expired reports whether the request's deadline has passed at the given
// instant. This is the single expiry predicate: the lazy read-side check and
// the proactive sweep both go through it, so concurrent callers cannot observe
// divergent status for the same clock reading.
func (a *ApprovalRequest) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// Validate checks if the request has valid field values
func (a *ApprovalRequest) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	if a.TimeoutHours <= 0 {
		return fmt.Errorf("timeout_hours must be positive (got %d)", a.TimeoutHours)
	}
	if a.ExpiresAt.Before(a.CreatedAt) {
		return fmt.Errorf("expires_at precedes created_at")
	}
	return nil
}

// Clone returns a deep copy so callers can inspect a request without racing
// against workflow transitions.
func (a *ApprovalRequest) Clone() *ApprovalRequest {
	dup := *a
	dup.Recipients = append([]string(nil), a.Recipients...)
	dup.Channels = append([]string(nil), a.Channels...)
	dup.Responses = append([]ApprovalResponse(nil), a.Responses...)
	return &dup
}
