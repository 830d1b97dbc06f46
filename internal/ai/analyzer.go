// Package ai provides AI-powered code analysis for repair candidates.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"

	"github.com/mendhq/mend/internal/types"
)

// DefaultModel is used when no model is configured
const DefaultModel = "claude-sonnet-4-20250514"

// Issue is one problem the model found in the analyzed code
type Issue struct {
	ID          string  `json:"issue_id"`
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Line        int     `json:"line,omitempty"`
	Description string  `json:"description"`
	Solution    string  `json:"solution,omitempty"`
	Confidence  float64 `json:"confidence"`
	Category    string  `json:"category"`
}

// AnalysisResult is the outcome of one analysis run. Success is false when
// the API call or response parsing failed; Error carries the reason.
type AnalysisResult struct {
	AnalysisID string                 `json:"analysis_id"`
	Success    bool                   `json:"success"`
	Issues     []Issue                `json:"issues"`
	Summary    map[string]interface{} `json:"summary"`
	Model      string                 `json:"model"`
	Duration   time.Duration          `json:"duration"`
	Error      string                 `json:"error,omitempty"`
}

// Analyzer runs code analysis against the Anthropic API
type Analyzer struct {
	client *anthropic.Client
	model  string
	sem    *semaphore.Weighted
	logger *slog.Logger
}

// Config holds analyzer configuration
type Config struct {
	APIKey        string // Anthropic API key (if empty, reads from ANTHROPIC_API_KEY env var)
	Model         string // Model to use (default: DefaultModel)
	MaxConcurrent int    // Limits concurrent API calls (default: 2)
	Logger        *slog.Logger
}

// NewAnalyzer creates a new code analyzer
func NewAnalyzer(cfg *Config) (*Analyzer, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Analyzer{
		client: &client,
		model:  model,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
		logger: logger,
	}, nil
}

// AnalyzeCode asks the model to find issues in the given code. It never
// returns an error: failures produce a result with Success=false so callers
// can log and move on without special-casing the AI boundary.
func (a *Analyzer) AnalyzeCode(ctx context.Context, code, language string, analysisContext map[string]interface{}) *AnalysisResult {
	start := time.Now()
	result := &AnalysisResult{
		AnalysisID: types.NewAnalysisID(),
		Model:      a.model,
		Issues:     []Issue{},
		Summary:    map[string]interface{}{},
	}

	if code == "" {
		result.Error = "no code provided"
		result.Duration = time.Since(start)
		return result
	}

	if err := a.sem.Acquire(ctx, 1); err != nil {
		result.Error = fmt.Sprintf("analysis cancelled: %v", err)
		result.Duration = time.Since(start)
		return result
	}
	defer a.sem.Release(1)

	prompt := buildAnalysisPrompt(code, language, analysisContext)

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		a.logger.Error("analysis API call failed", "analysis_id", result.AnalysisID, "error", err)
		result.Error = fmt.Sprintf("anthropic API call failed: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	var responseText string
	for _, block := range resp.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	issues, err := parseIssues(responseText)
	if err != nil {
		a.logger.Error("failed to parse analysis response", "analysis_id", result.AnalysisID, "error", err)
		result.Error = fmt.Sprintf("failed to parse analysis response: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Issues = normalizeIssues(issues)
	result.Summary = summarizeIssues(result.Issues)
	result.Success = true
	result.Duration = time.Since(start)

	a.logger.Info("analysis completed",
		"analysis_id", result.AnalysisID,
		"language", language,
		"issues", len(result.Issues),
		"duration", result.Duration)
	return result
}
