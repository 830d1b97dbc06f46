package monitor

import "strings"

// redactedValue replaces values whose keys look secret-bearing
const redactedValue = "***REDACTED***"

// sensitiveMarkers are substrings that mark a field name as secret-bearing
var sensitiveMarkers = []string{
	"password",
	"secret",
	"key",
	"token",
	"auth",
	"credential",
	"api_key",
	"access_key",
}

// SanitizeFields returns a copy of fields with secret-bearing values masked.
// Nested maps are sanitized recursively; everything else passes through.
func SanitizeFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if isSensitiveKey(k) {
			out[k] = redactedValue
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = SanitizeFields(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// isSensitiveKey checks the field name against the marker list
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
