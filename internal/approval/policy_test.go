package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mendhq/mend/internal/types"
)

func TestDefaultPolicyGating(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name     string
		severity types.Severity
		category types.Category
		gated    bool
	}{
		{"critical runtime", types.SeverityCritical, types.CategoryRuntime, true},
		{"high runtime", types.SeverityHigh, types.CategoryRuntime, true},
		{"medium runtime", types.SeverityMedium, types.CategoryRuntime, false},
		{"low runtime", types.SeverityLow, types.CategoryRuntime, false},
		{"low security always gates", types.SeverityLow, types.CategorySecurity, true},
		{"info database always gates", types.SeverityInfo, types.CategoryDatabase, true},
		{"medium network", types.SeverityMedium, types.CategoryNetwork, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pe := &types.ProcessedError{Severity: tc.severity, Category: tc.category}
			assert.Equal(t, tc.gated, policy.RequiresApproval(pe))
		})
	}
}

func TestZeroPolicyGatesEverything(t *testing.T) {
	var policy Policy
	pe := &types.ProcessedError{Severity: types.SeverityInfo, Category: types.CategoryRuntime}
	assert.True(t, policy.RequiresApproval(pe))
}

func TestPolicyNilErrorGates(t *testing.T) {
	assert.True(t, DefaultPolicy().RequiresApproval(nil))
}
