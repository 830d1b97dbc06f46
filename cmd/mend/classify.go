package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mendhq/mend/internal/events"
)

var classifyLanguage string

var classifyCmd = &cobra.Command{
	Use:   "classify <error message>",
	Short: "Classify a raw error message",
	Long: `Classify a raw error message into a structured record: matched error type,
severity, category, and suggested repair actions. The classification is
recorded in the audit trail.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.Join(args, " ")
		record := engine.Classify(raw, classifyLanguage, nil)

		if err := eventLog.Append(events.New(events.EventErrorClassified, record.ID, "cli",
			"error classified", map[string]interface{}{
				"type":     record.Type,
				"severity": string(record.Severity),
				"category": string(record.Category),
				"language": record.Language,
			})); err != nil {
			logger.Warn("failed to record classification event", "error", err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan("=== Classification ==="))
		fmt.Printf("  %s %s\n", yellow("ID:"), record.ID)
		fmt.Printf("  %s %s\n", yellow("Type:"), record.Type)
		fmt.Printf("  %s %s\n", yellow("Severity:"), severityColor(string(record.Severity)))
		fmt.Printf("  %s %s\n", yellow("Category:"), record.Category)
		fmt.Printf("  %s %s\n", yellow("Message:"), record.Message)
		if len(record.PatternsFound) > 0 {
			fmt.Printf("  %s %s\n", yellow("Patterns:"), strings.Join(record.PatternsFound, ", "))
		}
		fmt.Printf("  %s %s\n\n", yellow("Actions:"), strings.Join(record.SuggestedActions, ", "))
		return nil
	},
}

// severityColor renders a severity value in its conventional color
func severityColor(severity string) string {
	switch severity {
	case "critical":
		return color.New(color.FgRed, color.Bold).Sprint(severity)
	case "high":
		return color.New(color.FgRed).Sprint(severity)
	case "medium":
		return color.New(color.FgYellow).Sprint(severity)
	case "low":
		return color.New(color.FgGreen).Sprint(severity)
	default:
		return severity
	}
}

func init() {
	classifyCmd.Flags().StringVar(&classifyLanguage, "language", "general", "Source language of the error (python, javascript, java, general)")
	rootCmd.AddCommand(classifyCmd)
}
