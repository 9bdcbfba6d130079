package jobs

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const SendJobStatusJobType = "send_job_status"

type NotificationConfig struct {
	jobStatusWebhookUrl     *url.URL
	jobStatusWebhookTimeout time.Duration
}

func (cfg *NotificationConfig) ShouldSendJobStatus() bool {
	return cfg != nil && cfg.jobStatusWebhookUrl != nil
}

func (cfg *NotificationConfig) SendJobStatus(ctx context.Context, content string) error {
	if cfg.jobStatusWebhookUrl == nil {
		return nil
	}

	client := http.Client{
		Timeout: cfg.jobStatusWebhookTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.jobStatusWebhookUrl.String(), bytes.NewBufferString(content))
	if err != nil {
		return fmt.Errorf("error while creating webhook request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error while sending webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook endpoint responded with an unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
