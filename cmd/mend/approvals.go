package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mendhq/mend/internal/events"
	"github.com/mendhq/mend/internal/types"
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Manage repair approval requests",
}

var (
	requestFile     string
	requestLine     int
	requestType     string
	requestSeverity string
	requestSolution string
	requestTimeout  int
)

var approvalsRequestCmd = &cobra.Command{
	Use:   "request <description>",
	Short: "Request approval for a repair",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repair := types.RepairDescriptor{
			Type:        requestType,
			File:        requestFile,
			Line:        requestLine,
			Severity:    requestSeverity,
			Description: strings.Join(args, " "),
			Solution:    requestSolution,
		}

		timeout := requestTimeout
		if timeout <= 0 {
			timeout = cfg.Approval.TimeoutHours
		}
		id := workflow.RequestApproval(cmd.Context(), repair,
			cfg.Approval.Recipients, cfg.Approval.Channels, timeout)

		if err := eventLog.Append(events.New(events.EventApprovalRequested, id, "cli",
			"approval requested", map[string]interface{}{
				"file":     repair.File,
				"type":     repair.Type,
				"channels": cfg.Approval.Channels,
			})); err != nil {
			logger.Warn("failed to record approval event", "error", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s approval request created: %s\n", green("✓"), id)
		return nil
	},
}

var approvalsStatusCmd = &cobra.Command{
	Use:   "status <request-id>",
	Short: "Show the status of an approval request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, ok := workflow.CheckStatus(args[0])
		if !ok {
			return fmt.Errorf("no approval request with id %s", args[0])
		}
		printRequest(req)
		return nil
	},
}

var (
	respondDecision string
	respondComments string
	respondName     string
)

var approvalsRespondCmd = &cobra.Command{
	Use:   "respond <request-id>",
	Short: "Record a decision on a pending approval request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if !workflow.ProcessResponse(id, respondName, respondDecision, respondComments) {
			return fmt.Errorf("request %s is unknown or no longer pending", id)
		}

		if err := eventLog.Append(events.New(events.EventApprovalResponded, id, respondName,
			"approval decision recorded", map[string]interface{}{
				"decision": respondDecision,
			})); err != nil {
			logger.Warn("failed to record response event", "error", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s decision %q recorded for %s\n", green("✓"), respondDecision, id)
		return nil
	},
}

var approvalsCancelCmd = &cobra.Command{
	Use:   "cancel <request-id>",
	Short: "Withdraw a pending approval request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if !workflow.Cancel(id) {
			return fmt.Errorf("request %s is unknown or no longer pending", id)
		}

		if err := eventLog.Append(events.New(events.EventApprovalCancelled, id, "cli",
			"approval request cancelled", nil)); err != nil {
			logger.Warn("failed to record cancel event", "error", err)
		}

		fmt.Printf("request %s cancelled\n", id)
		return nil
	},
}

var approvalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending approval requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		pending := workflow.ListPending()
		if len(pending) == 0 {
			gray := color.New(color.FgHiBlack).SprintFunc()
			fmt.Printf("%s\n", gray("No pending approval requests"))
			return nil
		}
		for _, req := range pending {
			printRequest(req)
		}
		return nil
	},
}

var approvalsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Expire pending requests past their deadline",
	RunE: func(cmd *cobra.Command, args []string) error {
		expired := workflow.CleanupExpired()
		for _, id := range expired {
			if err := eventLog.Append(events.New(events.EventApprovalExpired, id, "cli",
				"approval request expired", nil)); err != nil {
				logger.Warn("failed to record expiry event", "error", err)
			}
		}
		fmt.Printf("expired %d request(s)\n", len(expired))
		return nil
	},
}

func printRequest(req *types.ApprovalRequest) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("\n  %s %s\n", yellow("Request:"), req.ID)
	fmt.Printf("  %s %s\n", yellow("Status:"), statusColor(req.Status))
	fmt.Printf("  %s %s:%d (%s)\n", yellow("Repair:"), req.Repair.File, req.Repair.Line, req.Repair.Type)
	fmt.Printf("  %s %s\n", yellow("Expires:"), req.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	for _, resp := range req.Responses {
		fmt.Printf("  %s %s by %s at %s\n", yellow("Decision:"),
			resp.Decision, resp.Responder, resp.Timestamp.Format("2006-01-02 15:04:05"))
	}
	fmt.Println()
}

func statusColor(status types.ApprovalStatus) string {
	switch status {
	case types.StatusApproved:
		return color.New(color.FgGreen).Sprint(string(status))
	case types.StatusRejected, types.StatusExpired:
		return color.New(color.FgRed).Sprint(string(status))
	case types.StatusPending:
		return color.New(color.FgYellow).Sprint(string(status))
	default:
		return string(status)
	}
}

func init() {
	approvalsRequestCmd.Flags().StringVar(&requestFile, "file", "", "File the repair touches")
	approvalsRequestCmd.Flags().IntVar(&requestLine, "line", 0, "Line number of the repair")
	approvalsRequestCmd.Flags().StringVar(&requestType, "type", "unknown", "Error type behind the repair")
	approvalsRequestCmd.Flags().StringVar(&requestSeverity, "severity", "medium", "Severity of the underlying error")
	approvalsRequestCmd.Flags().StringVar(&requestSolution, "solution", "", "Proposed fix")
	approvalsRequestCmd.Flags().IntVar(&requestTimeout, "timeout-hours", 0, "Hours before the request expires (default from config)")

	approvalsRespondCmd.Flags().StringVar(&respondDecision, "decision", "", "approve or reject")
	approvalsRespondCmd.Flags().StringVar(&respondComments, "comments", "", "Reviewer comments")
	approvalsRespondCmd.Flags().StringVar(&respondName, "responder", "", "Who is deciding")
	_ = approvalsRespondCmd.MarkFlagRequired("decision")
	_ = approvalsRespondCmd.MarkFlagRequired("responder")

	approvalsCmd.AddCommand(approvalsRequestCmd)
	approvalsCmd.AddCommand(approvalsStatusCmd)
	approvalsCmd.AddCommand(approvalsRespondCmd)
	approvalsCmd.AddCommand(approvalsCancelCmd)
	approvalsCmd.AddCommand(approvalsListCmd)
	approvalsCmd.AddCommand(approvalsCleanupCmd)
	rootCmd.AddCommand(approvalsCmd)
}
