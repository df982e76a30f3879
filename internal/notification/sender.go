package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// LogSender only writes messages to the log. It is the development default.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmailTemplate(ctx context.Context, template, recipient string, data map[string]interface{}) error {
	s.logger.InfoContext(ctx, "email notification", "template", template, "recipient", recipient, "data", data)
	return nil
}

func (s *LogSender) SendSMSTemplate(ctx context.Context, template, recipient string, data map[string]interface{}) error {
	s.logger.InfoContext(ctx, "sms notification", "template", template, "recipient", recipient, "data", data)
	return nil
}

type WebhookConfig struct {
	EmailURL string
	SMSURL   string
	APIKey   string
	Timeout  time.Duration
}

// WebhookSender posts each message as JSON to an email or SMS gateway.
type WebhookSender struct {
	emailURL string
	smsURL   string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

func NewWebhookSender(config WebhookConfig, logger *slog.Logger) *WebhookSender {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSender{
		emailURL: config.EmailURL,
		smsURL:   config.SMSURL,
		apiKey:   config.APIKey,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (s *WebhookSender) SendEmailTemplate(ctx context.Context, template, recipient string, data map[string]interface{}) error {
	return s.post(ctx, s.emailURL, ChannelEmail, template, recipient, data)
}

func (s *WebhookSender) SendSMSTemplate(ctx context.Context, template, recipient string, data map[string]interface{}) error {
	return s.post(ctx, s.smsURL, ChannelSMS, template, recipient, data)
}

func (s *WebhookSender) post(ctx context.Context, url string, channel Channel, template, recipient string, data map[string]interface{}) error {
	if url == "" {
		return fmt.Errorf("no %s gateway configured", channel)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"template": template,
		"to":       recipient,
		"data":     data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s notification: %w", channel, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s gateway request failed: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s gateway returned status %d", channel, resp.StatusCode)
	}

	s.logger.Debug("notification accepted by gateway", "channel", channel, "template", template, "status_code", resp.StatusCode)
	return nil
}
