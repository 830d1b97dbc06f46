package classifier

import (
	"testing"

	"github.com/mendhq/mend/internal/types"
)

func newTestClassifier() *Classifier {
	return New(nil)
}

func TestClassifyPythonTypeError(t *testing.T) {
	c := newTestClassifier()
	pe := c.Classify("TypeError: unsupported operand", "python", nil)

	if pe.Type != "type_error" {
		t.Errorf("Expected type_error, got %s", pe.Type)
	}
	if pe.Severity != types.SeverityHigh {
		t.Errorf("Expected high severity, got %s", pe.Severity)
	}
	if pe.Category != types.CategoryRuntime {
		t.Errorf("Expected runtime category, got %s", pe.Category)
	}
	if pe.Message != "unsupported operand" {
		t.Errorf("Expected captured message, got %q", pe.Message)
	}
	if !containsAction(pe.SuggestedActions, "validate_data_types") {
		t.Errorf("Expected validate_data_types in actions, got %v", pe.SuggestedActions)
	}
	if err := pe.Validate(); err != nil {
		t.Errorf("Classified record failed validation: %v", err)
	}
}

func TestClassifyGeneralConnectionRefused(t *testing.T) {
	c := newTestClassifier()
	pe := c.Classify("Connection refused", "general", nil)

	if pe.Type != "connection" {
		t.Errorf("Expected connection, got %s", pe.Type)
	}
	if pe.Severity != types.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", pe.Severity)
	}
	if pe.Category != types.CategoryNetwork {
		t.Errorf("Expected network category, got %s", pe.Category)
	}
}

func TestClassifyUnknownLanguageFallsToGeneral(t *testing.T) {
	c := newTestClassifier()
	pe := c.Classify("operation timed out after 30s", "haskell", nil)

	if pe.Type != "timeout" {
		t.Errorf("Expected general timeout rule, got %s", pe.Type)
	}
	// Type name "timeout" hits the critical bucket even though the raw text
	// says "timed out".
	if pe.Severity != types.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", pe.Severity)
	}
}

func TestClassifyEmptyMessage(t *testing.T) {
	c := newTestClassifier()
	pe := c.Classify("", "python", nil)

	if pe.Type != "unknown" {
		t.Errorf("Expected unknown type, got %s", pe.Type)
	}
	if pe.Severity != types.SeverityMedium {
		t.Errorf("Expected default medium severity, got %s", pe.Severity)
	}
	if pe.Category != types.CategoryRuntime {
		t.Errorf("Expected default runtime category, got %s", pe.Category)
	}
	if len(pe.SuggestedActions) != 1 || pe.SuggestedActions[0] != "review_manually" {
		t.Errorf("Expected fallback action, got %v", pe.SuggestedActions)
	}
}

// Rule tables are first-match-wins in declaration order, not in order of
// appearance in the message text.
func TestClassifyRuleTableOrder(t *testing.T) {
	c := newTestClassifier()
	pe := c.Classify("ValueError: bad input; TypeError: worse input", "python", nil)

	if pe.Type != "type_error" {
		t.Errorf("Expected type_error (declared before value_error), got %s", pe.Type)
	}
	if pe.Message != "worse input" {
		t.Errorf("Expected capture from type_error rule, got %q", pe.Message)
	}
}

func TestSeverityBucketOrder(t *testing.T) {
	// Both "warning" (low) and "out of memory" (critical) appear; the critical
	// bucket is checked first so it must win.
	sev := determineSeverity("warning: out of memory", "unknown")
	if sev != types.SeverityCritical {
		t.Errorf("Expected critical, got %s", sev)
	}

	sev = determineSeverity("deprecated API warning", "unknown")
	if sev != types.SeverityLow {
		t.Errorf("Expected low, got %s", sev)
	}
}

func TestCategoryTypeFallback(t *testing.T) {
	cases := []struct {
		typeName string
		want     types.Category
	}{
		{"syntax_error", types.CategorySyntax},
		{"timeout", types.CategoryPerformance},
		{"connection", types.CategoryNetwork},
		{"memory", types.CategoryResource},
		{"disk", types.CategoryResource},
		{"permission", types.CategorySecurity},
		{"sql_exception", types.CategoryDatabase},
		{"unknown", types.CategoryRuntime},
	}
	for _, tc := range cases {
		// Raw message chosen to miss every category keyword so the
		// type-substring fallback decides.
		got := determineCategory("zzz", tc.typeName)
		if got != tc.want {
			t.Errorf("determineCategory(type=%s) = %s, want %s", tc.typeName, got, tc.want)
		}
	}
}

func TestClassifyDeterminism(t *testing.T) {
	c := newTestClassifier()
	first := c.Classify("KeyError: 'user_id'", "python", nil)
	second := c.Classify("KeyError: 'user_id'", "python", nil)

	if first.Type != second.Type || first.Severity != second.Severity || first.Category != second.Category {
		t.Errorf("Classification not deterministic: %+v vs %+v", first, second)
	}
	if first.ID == second.ID {
		t.Error("Expected distinct ids per classification")
	}
}

func TestClassifyJavaNullPointer(t *testing.T) {
	c := newTestClassifier()
	pe := c.Classify("Exception in thread \"main\" java.lang.NullPointerException", "java", nil)

	if pe.Type != "null_pointer" {
		t.Errorf("Expected null_pointer, got %s", pe.Type)
	}
	if pe.Severity != types.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", pe.Severity)
	}
	// No capture group on java rules: message stays the raw text
	if pe.Message != pe.RawMessage {
		t.Errorf("Expected raw message preserved, got %q", pe.Message)
	}
	if !containsAction(pe.SuggestedActions, "add_null_checks") {
		t.Errorf("Expected add_null_checks in actions, got %v", pe.SuggestedActions)
	}
}

func TestClassifyContextPassthrough(t *testing.T) {
	c := newTestClassifier()
	ctx := map[string]interface{}{"service": "billing", "pid": 4321}
	pe := c.Classify("ValueError: negative amount", "python", ctx)

	if pe.Context["service"] != "billing" {
		t.Errorf("Expected context passthrough, got %v", pe.Context)
	}
}

func TestClassifyBatchOrderPreserved(t *testing.T) {
	c := newTestClassifier()
	msgs := []string{
		"SyntaxError: invalid syntax",
		"Connection refused",
		"",
	}
	results := c.ClassifyBatch(msgs, "python")

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Type != "syntax_error" {
		t.Errorf("Expected syntax_error first, got %s", results[0].Type)
	}
	if results[1].Type != "connection" {
		t.Errorf("Expected connection second, got %s", results[1].Type)
	}
	if results[2].Type != "unknown" {
		t.Errorf("Expected unknown third, got %s", results[2].Type)
	}
	for _, pe := range results {
		if pe.RawMessage != msgs[indexOf(results, pe)] {
			t.Errorf("Result order does not match input order")
		}
	}
}

func TestSuggestActionsSingleTypeRule(t *testing.T) {
	// type_error contains "type"; only one type-driven pair should apply
	actions := suggestActions("type_error", types.SeverityMedium)
	want := []string{"validate_data_types", "check_variable_assignment"}
	if len(actions) != len(want) {
		t.Fatalf("Expected %v, got %v", want, actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("actions[%d] = %s, want %s", i, actions[i], want[i])
		}
	}
}

func TestSuggestActionsCriticalAddsEscalation(t *testing.T) {
	actions := suggestActions("timeout", types.SeverityCritical)
	if !containsAction(actions, "immediate_attention") || !containsAction(actions, "notify_team") {
		t.Errorf("Expected escalation actions for critical, got %v", actions)
	}
	if !containsAction(actions, "increase_timeout") {
		t.Errorf("Expected timeout actions, got %v", actions)
	}
}

func containsAction(actions []string, want string) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}

func indexOf(results []*types.ProcessedError, pe *types.ProcessedError) int {
	for i, r := range results {
		if r == pe {
			return i
		}
	}
	return -1
}
