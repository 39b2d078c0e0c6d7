package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs-quantt/checklist-api/internal/logger"
)

// CompletionEvent is the payload posted to the configured webhook when a
// submission pipeline finishes successfully.
type CompletionEvent struct {
	SubmissionID      string `json:"submission_id"`
	UserID            string `json:"user_id"`
	ChecklistID       string `json:"checklist_id"`
	CategoryID        string `json:"category_id"`
	TaskCode          string `json:"task_code"`
	TotalItems        int    `json:"total_items"`
	PassedItems       int    `json:"passed_items"`
	SummaryID         string `json:"summary_id"`
	CategorySummaryID string `json:"category_summary_id"`
	CompletedAt       string `json:"completed_at"`
}

// WebhookNotifier posts completion events to an external endpoint. Delivery
// is best-effort: failures are logged, never surfaced to the submitter.
type WebhookNotifier struct {
	client  *resty.Client
	url     string
	enabled bool
}

// WebhookConfig holds configuration for the webhook notifier.
type WebhookConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

// NewWebhookNotifier creates a new webhook notifier.
func NewWebhookNotifier(cfg *WebhookConfig) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{
		client:  client,
		url:     cfg.URL,
		enabled: cfg.Enabled && cfg.URL != "",
	}
}

// IsEnabled reports whether the notifier will deliver events.
func (n *WebhookNotifier) IsEnabled() bool {
	return n.enabled
}

// SubmissionCompleted delivers a completion event. Returns an error for
// callers that want to log it; the pipeline treats delivery as best-effort.
func (n *WebhookNotifier) SubmissionCompleted(ctx context.Context, event *CompletionEvent) error {
	if !n.enabled {
		return nil
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	logger.CtxDebug(ctx, "Webhook delivered: submission=%s status=%d", event.SubmissionID, resp.StatusCode())
	return nil
}
