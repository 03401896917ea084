package services

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// NotificationSink delivers the post-provisioning welcome email. Delivery is
// best-effort: the saga logs a failure and still reports success, because the
// tenant is already fully provisioned by the time this runs.
type NotificationSink interface {
	SendWelcome(ctx context.Context, email, name string) error
}

type mailNotifier struct {
	client *resty.Client
	from   string
	logger *zap.Logger
}

// NewMailNotifier creates a NotificationSink over an HTTP mail API.
func NewMailNotifier(baseURL, apiKey, from string, logger *zap.Logger) NotificationSink {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &mailNotifier{client: client, from: from, logger: logger}
}

type mailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (m *mailNotifier) SendWelcome(ctx context.Context, email, name string) error {
	msg := mailMessage{
		From:    m.from,
		To:      email,
		Subject: "Welcome to your training platform",
		Text: fmt.Sprintf("Hi %s,\n\nYour account is ready. Sign in with %s to set up your team and locations.\n",
			name, email),
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/messages")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("mail API returned %s", resp.Status())
	}

	m.logger.Debug("welcome email dispatched", zap.String("to", email))
	return nil
}
