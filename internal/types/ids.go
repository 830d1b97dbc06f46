package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// newID builds an identifier of the form "<prefix>_<hex8>_<unix>".
// The uuid fragment guarantees uniqueness; the timestamp keeps ids roughly
// sortable by creation time when eyeballing logs.
func newID(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s_%x_%d", prefix, u[:4], time.Now().Unix())
}

// NewErrorID returns a fresh identifier for a ProcessedError
func NewErrorID() string { return newID("err") }

// NewApprovalID returns a fresh identifier for an ApprovalRequest
func NewApprovalID() string { return newID("apr") }

// NewIssueID returns a fresh identifier for an AI analysis issue
func NewIssueID() string { return newID("issue") }

// NewAnalysisID returns a fresh identifier for an AI analysis run
func NewAnalysisID() string { return newID("ana") }
