package service

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier posts audit-completed events to a configured URL.
// Fire-and-forget: delivery runs on its own goroutine, failures are logged
// and never surfaced to the completing request.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

var _ CompletionNotifier = (*WebhookNotifier)(nil)

func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &WebhookNotifier{
		client: client,
		url:    url,
		logger: logger,
	}
}

func (n *WebhookNotifier) AuditCompleted(event CompletionEvent) {
	if n.url == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := n.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(event).
			Post(n.url)
		if err != nil {
			n.logger.Warn("completion webhook failed",
				zap.String("response_id", event.ResponseID),
				zap.Error(err))
			return
		}
		if resp.IsError() {
			n.logger.Warn("completion webhook rejected",
				zap.String("response_id", event.ResponseID),
				zap.Int("status", resp.StatusCode()))
			return
		}
		n.logger.Debug("completion webhook delivered",
			zap.String("response_id", event.ResponseID))
	}()
}
