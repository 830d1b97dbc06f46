package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mendhq/mend/internal/types"
)

// WebhookSender posts approval requests to a chat webhook (Slack-compatible
// block payload with approve/reject action buttons).
type WebhookSender struct {
	url    string
	client *http.Client
}

// WebhookConfig holds webhook sender configuration
type WebhookConfig struct {
	URL    string
	Client *http.Client // Optional: defaults to a client with a 10s timeout
}

// NewWebhookSender creates a webhook channel sender
func NewWebhookSender(cfg *WebhookConfig) (*WebhookSender, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSender{url: cfg.URL, client: client}, nil
}

// Name returns the channel name this sender serves
func (s *WebhookSender) Name() string { return "webhook" }

// Send posts the request payload; any non-2xx response is a delivery failure
func (s *WebhookSender) Send(ctx context.Context, req *types.ApprovalRequest) error {
	body, err := json.Marshal(webhookPayload(req))
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// webhookPayload builds a Slack-style block message for the request
func webhookPayload(req *types.ApprovalRequest) map[string]interface{} {
	return map[string]interface{}{
		"text": Subject(req),
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]interface{}{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Repair approval required*\n*Request:* %s\n*Type:* %s\n*File:* %s:%d\n*Severity:* %s",
						req.ID, req.Repair.Type, req.Repair.File, req.Repair.Line, req.Repair.Severity),
				},
			},
			{
				"type": "actions",
				"elements": []map[string]interface{}{
					{
						"type":      "button",
						"text":      map[string]interface{}{"type": "plain_text", "text": "Approve"},
						"value":     fmt.Sprintf("approve_%s", req.ID),
						"action_id": "approval_approve",
					},
					{
						"type":      "button",
						"text":      map[string]interface{}{"type": "plain_text", "text": "Reject"},
						"value":     fmt.Sprintf("reject_%s", req.ID),
						"action_id": "approval_reject",
					},
				},
			},
		},
	}
}
