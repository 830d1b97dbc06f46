// Package classifier turns raw diagnostic messages into structured
// ProcessedError records: matched type, severity, category, and suggested
// repair actions. Classification is deterministic and never fails: an internal
// fault degrades to a processing_error record instead of propagating.
package classifier

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mendhq/mend/internal/types"
)

// Classifier applies the ordered rule tables to raw error messages. The rule
// tables are immutable after construction, so a single Classifier is safe for
// concurrent use.
type Classifier struct {
	logger *slog.Logger
}

// Config holds classifier configuration
type Config struct {
	Logger *slog.Logger // Optional: defaults to slog.Default()
}

// New creates a new error classifier
func New(cfg *Config) *Classifier {
	logger := slog.Default()
	if cfg != nil && cfg.Logger != nil {
		logger = cfg.Logger
	}
	return &Classifier{logger: logger}
}

// matchResult carries what the rule tables extracted from a raw message
type matchResult struct {
	typeName string // matched rule name, or "unknown"
	message  string // captured group if the rule had one, else the raw message
	patterns []string
}

// Classify processes one raw error message and returns its structured
// classification. It never returns an error: an internal fault yields a
// degraded record with type "processing_error" that preserves the raw message.
func (c *Classifier) Classify(rawMessage, language string, context map[string]interface{}) (result *types.ProcessedError) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("classification fault, returning degraded record",
				"language", language, "panic", fmt.Sprint(r))
			result = c.degradedRecord(rawMessage, language, context, r)
		}
	}()

	match := extractErrorInfo(rawMessage, language)
	severity := determineSeverity(rawMessage, match.typeName)
	category := determineCategory(rawMessage, match.typeName)

	result = &types.ProcessedError{
		ID:               types.NewErrorID(),
		RawMessage:       rawMessage,
		Language:         language,
		Type:             match.typeName,
		Message:          match.message,
		Severity:         severity,
		Category:         category,
		Timestamp:        time.Now(),
		Context:          context,
		SuggestedActions: suggestActions(match.typeName, severity),
		PatternsFound:    match.patterns,
	}

	c.logger.Info("error classified",
		"id", result.ID, "type", result.Type,
		"severity", result.Severity, "category", result.Category)
	return result
}

// ClassifyBatch classifies each message independently, preserving input order.
func (c *Classifier) ClassifyBatch(messages []string, language string) []*types.ProcessedError {
	results := make([]*types.ProcessedError, 0, len(messages))
	for _, msg := range messages {
		results = append(results, c.Classify(msg, language, nil))
	}
	return results
}

// degradedRecord is the recovery path for internal classification faults
func (c *Classifier) degradedRecord(rawMessage, language string, context map[string]interface{}, cause interface{}) *types.ProcessedError {
	return &types.ProcessedError{
		ID:               types.NewErrorID(),
		RawMessage:       rawMessage,
		Language:         language,
		Type:             "processing_error",
		Message:          fmt.Sprintf("error processing original error: %v", cause),
		Severity:         types.SeverityHigh,
		Category:         types.CategoryRuntime,
		Timestamp:        time.Now(),
		Context:          context,
		SuggestedActions: []string{fallbackAction},
	}
}

// extractErrorInfo runs the language rule table, then the general fallback
// table. First match wins in each; unknown language goes straight to general.
func extractErrorInfo(rawMessage, language string) matchResult {
	result := matchResult{typeName: "unknown", message: rawMessage}

	if rules, ok := languageRules[language]; ok {
		for _, r := range rules {
			if m := r.pattern.FindStringSubmatch(rawMessage); m != nil {
				result.typeName = r.name
				if len(m) > 1 {
					result.message = m[1]
				}
				result.patterns = append(result.patterns, r.name)
				return result
			}
		}
	}

	for _, r := range generalRules {
		if r.pattern.MatchString(rawMessage) {
			result.typeName = r.name
			result.patterns = append(result.patterns, r.name)
			return result
		}
	}

	return result
}

// determineSeverity walks the keyword buckets in strict order against both the
// lowercased raw message and the matched type name; defaults to medium.
func determineSeverity(rawMessage, typeName string) types.Severity {
	msgLower := strings.ToLower(rawMessage)
	typeLower := strings.ToLower(typeName)

	for _, bucket := range severityBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(msgLower, kw) || strings.Contains(typeLower, kw) {
				return bucket.severity
			}
		}
	}
	return types.SeverityMedium
}

// determineCategory scans the category keyword table in order against the
// lowercased raw message; if nothing hits, a secondary fallback inspects
// substrings of the matched type name before defaulting to runtime.
func determineCategory(rawMessage, typeName string) types.Category {
	msgLower := strings.ToLower(rawMessage)

	for _, cr := range categoryRules {
		for _, kw := range cr.keywords {
			if strings.Contains(msgLower, kw) {
				return cr.category
			}
		}
	}

	switch {
	case strings.Contains(typeName, "syntax"):
		return types.CategorySyntax
	case strings.Contains(typeName, "timeout"), strings.Contains(typeName, "performance"):
		return types.CategoryPerformance
	case strings.Contains(typeName, "connection"), strings.Contains(typeName, "network"):
		return types.CategoryNetwork
	case strings.Contains(typeName, "memory"), strings.Contains(typeName, "disk"):
		return types.CategoryResource
	case strings.Contains(typeName, "permission"), strings.Contains(typeName, "security"):
		return types.CategorySecurity
	case strings.Contains(typeName, "sql"), strings.Contains(typeName, "database"):
		return types.CategoryDatabase
	default:
		return types.CategoryRuntime
	}
}

// suggestActions accumulates severity-driven actions, then the first matching
// type-driven action pair. Falls back to review_manually when nothing applies,
// so the result is never empty.
func suggestActions(typeName string, severity types.Severity) []string {
	var actions []string

	switch severity {
	case types.SeverityCritical:
		actions = append(actions, criticalActions...)
	case types.SeverityHigh:
		actions = append(actions, highActions...)
	}

	for _, tr := range typeActionRules {
		if strings.Contains(typeName, tr.keyword) {
			actions = append(actions, tr.actions...)
			break
		}
	}

	if len(actions) == 0 {
		actions = append(actions, fallbackAction)
	}
	return actions
}
