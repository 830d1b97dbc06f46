package approval

import (
	"github.com/mendhq/mend/internal/types"
)

// Policy decides which classified errors gate their repair behind human
// sign-off. The zero value requires approval for everything; DefaultPolicy
// matches the shipped configuration.
type Policy struct {
	// MinSeverity is the lowest severity that still requires sign-off.
	// Anything at or above this rank gates; below it auto-proceeds.
	MinSeverity types.Severity `json:"min_severity"`

	// AlwaysGateCategories require sign-off regardless of severity
	AlwaysGateCategories []types.Category `json:"always_gate_categories"`
}

// DefaultPolicy gates high and critical severity repairs, plus anything
// touching security or the database.
func DefaultPolicy() Policy {
	return Policy{
		MinSeverity: types.SeverityHigh,
		AlwaysGateCategories: []types.Category{
			types.CategorySecurity,
			types.CategoryDatabase,
		},
	}
}

// RequiresApproval reports whether a repair for the classified error must be
// held for human sign-off.
func (p Policy) RequiresApproval(pe *types.ProcessedError) bool {
	if pe == nil {
		return true
	}
	for _, cat := range p.AlwaysGateCategories {
		if pe.Category == cat {
			return true
		}
	}
	if p.MinSeverity == "" {
		return true
	}
	return pe.Severity.Rank() >= p.MinSeverity.Rank()
}
