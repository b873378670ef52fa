package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RunSummary is the payload posted when a scoring run completes.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	StayCount    int       `json:"stay_count"`
	SkippedStays int       `json:"skipped_stays"`
	RowCount     int       `json:"row_count"`
}

// WebhookNotifier posts run summaries to a configured endpoint.
type WebhookNotifier struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewWebhookNotifier creates a notifier for the given URL.
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{
		httpClient: client,
		url:        url,
		logger:     logger,
	}
}

// NotifyRunCompleted posts the summary. A failed delivery is reported,
// not retried beyond the client policy: the scores are already written.
func (n *WebhookNotifier) NotifyRunCompleted(ctx context.Context, summary RunSummary) error {
	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(summary).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to post run summary: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("run summary rejected: status %d", resp.StatusCode())
	}

	n.logger.Info("Posted run summary",
		zap.String("run_id", summary.RunID),
		zap.Int("row_count", summary.RowCount),
	)
	return nil
}
