package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mendhq/mend/internal/events"
)

var analyzeLanguage string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run AI analysis on a source file",
	Long: `Send a source file to the analysis model and print the issues it finds.
Requires ANTHROPIC_API_KEY. The analysis outcome is recorded in the audit trail.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		code, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		language := analyzeLanguage
		if language == "" {
			language = languageFromExtension(path)
		}

		analyzer, err := newAnalyzer()
		if err != nil {
			return err
		}

		result := analyzer.AnalyzeCode(cmd.Context(), string(code), language,
			map[string]interface{}{"file": path})

		if err := eventLog.Append(events.New(events.EventAnalysisCompleted, result.AnalysisID, "cli",
			"analysis completed", map[string]interface{}{
				"file":    path,
				"success": result.Success,
				"issues":  len(result.Issues),
			})); err != nil {
			logger.Warn("failed to record analysis event", "error", err)
		}

		if !result.Success {
			return fmt.Errorf("analysis failed: %s", result.Error)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Analysis %s ===", result.AnalysisID)))
		if len(result.Issues) == 0 {
			fmt.Printf("  %s\n\n", gray("No issues found"))
			return nil
		}

		for _, issue := range result.Issues {
			fmt.Printf("  %s [%s] %s", severityColor(issue.Severity), issue.Type, issue.Description)
			if issue.Line > 0 {
				fmt.Printf(" %s", gray(fmt.Sprintf("(line %d)", issue.Line)))
			}
			fmt.Println()
			if issue.Solution != "" {
				fmt.Printf("    %s %s\n", yellow("fix:"), issue.Solution)
			}
		}

		fmt.Printf("\n  %s %v\n", yellow("Risk:"), result.Summary["overall_risk"])
		fmt.Printf("  %s %v minutes\n\n", yellow("Estimated time to fix:"), result.Summary["estimated_time_to_fix"])
		return nil
	},
}

// languageFromExtension guesses the language flag value from the file name
func languageFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return "python"
	case ".js", ".ts", ".jsx", ".tsx":
		return "javascript"
	case ".java":
		return "java"
	case ".go":
		return "go"
	default:
		return "general"
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "", "Language of the file (detected from extension when empty)")
	rootCmd.AddCommand(analyzeCmd)
}
