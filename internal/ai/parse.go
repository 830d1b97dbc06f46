package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mendhq/mend/internal/types"
)

// Pre-compiled patterns for cleaning model output.
var (
	// Matches ```json ... ``` and bare ``` ... ``` fences
	codeFenceRegex = regexp.MustCompile("(?s)```(?:json|" + languageAlternates + ")?\\s*\\n?([\\s\\S]*?)\\n?```")

	// Greedy object match to capture nested structures in mixed content
	objectRegex = regexp.MustCompile(`(?s)\{[\s\S]*\}`)

	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
)

const languageAlternates = "python|javascript|js|java|go"

type issuesEnvelope struct {
	Issues []Issue `json:"issues"`
}

// parseIssues extracts the issue list from raw model output. Strategies are
// tried in order: direct parse, fence stripping, trailing-comma repair, and
// finally extracting the first JSON object from mixed prose.
func parseIssues(text string) ([]Issue, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty response")
	}

	candidates := []string{trimmed}
	if m := codeFenceRegex.FindStringSubmatch(trimmed); len(m) == 2 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if m := objectRegex.FindString(trimmed); m != "" && m != trimmed {
		candidates = append(candidates, m)
	}

	var lastErr error
	for _, candidate := range candidates {
		for _, attempt := range []string{candidate, trailingCommaRegex.ReplaceAllString(candidate, "$1")} {
			var env issuesEnvelope
			if err := json.Unmarshal([]byte(attempt), &env); err == nil {
				return env.Issues, nil
			} else {
				lastErr = err
			}
		}
	}
	return nil, fmt.Errorf("no parseable JSON object in response: %w", lastErr)
}

// normalizeIssues fills defaults for fields the model is allowed to omit
// and strips code fences the model sometimes wraps solutions in.
func normalizeIssues(issues []Issue) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.ID == "" {
			issue.ID = types.NewIssueID()
		}
		if issue.Confidence == 0 {
			issue.Confidence = 0.8
		}
		if issue.Category == "" {
			issue.Category = "unknown"
		}
		if issue.Severity == "" {
			issue.Severity = "medium"
		}
		issue.Solution = stripSolutionFences(issue.Solution)
		out = append(out, issue)
	}
	return out
}

// stripSolutionFences removes a surrounding markdown code fence from a fix
func stripSolutionFences(solution string) string {
	trimmed := strings.TrimSpace(solution)
	if m := codeFenceRegex.FindStringSubmatch(trimmed); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// summarizeIssues computes headline metrics for an issue list. The time
// estimate weights severities at 30, 15, 5, and 2 minutes.
func summarizeIssues(issues []Issue) map[string]interface{} {
	dist := map[string]int{}
	for _, issue := range issues {
		dist[strings.ToLower(issue.Severity)]++
	}

	estimate := dist["critical"]*30 + dist["high"]*15 + dist["medium"]*5 + dist["low"]*2

	risk := "low"
	switch {
	case dist["critical"] > 0:
		risk = "critical"
	case dist["high"] > 0:
		risk = "high"
	case dist["medium"] > 0:
		risk = "medium"
	}

	return map[string]interface{}{
		"total_issues":                 len(issues),
		"severity_distribution":        dist,
		"estimated_time_to_fix":        estimate,
		"overall_risk":                 risk,
		"requires_immediate_attention": dist["critical"] > 0,
	}
}
