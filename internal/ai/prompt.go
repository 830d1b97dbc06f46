package ai

import (
	"fmt"
	"sort"
	"strings"
)

// buildAnalysisPrompt renders the analysis request sent to the model.
// The response contract is a JSON object with an "issues" array so parsing
// stays uniform across models.
func buildAnalysisPrompt(code, language string, analysisContext map[string]interface{}) string {
	var sb strings.Builder

	sb.WriteString("You are a code analysis engine. Find bugs, security problems, and performance issues in the code below.\n\n")
	sb.WriteString(fmt.Sprintf("Language: %s\n", language))

	if len(analysisContext) > 0 {
		sb.WriteString("Context:\n")
		keys := make([]string, 0, len(analysisContext))
		for k := range analysisContext {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- %s: %v\n", k, analysisContext[k]))
		}
	}

	sb.WriteString("\nCode:\n```")
	sb.WriteString(language)
	sb.WriteString("\n")
	sb.WriteString(code)
	sb.WriteString("\n```\n\n")

	sb.WriteString(`Respond with ONLY a JSON object in this exact format:
{
  "issues": [
    {
      "type": "bug|security|performance|style",
      "severity": "critical|high|medium|low",
      "line": 0,
      "description": "what is wrong",
      "solution": "corrected code or fix description",
      "confidence": 0.0,
      "category": "short category name"
    }
  ]
}

Return {"issues": []} if the code has no issues. Do not include any text outside the JSON object.`)

	return sb.String()
}
