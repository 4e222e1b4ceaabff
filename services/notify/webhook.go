// Package notifsvc posts short text notifications to the agency chat channel
// over an incoming webhook.
package notifsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/pkg/errors"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/billing"
	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
)

type WebhookNotifier struct {
	url    string
	client *http.Client
}

var (
	_ maintenance.Notifier = (*WebhookNotifier)(nil)
	_ billing.ChatSender   = (*WebhookNotifier)(nil)
)

func NewWebhookNotifier(conf *core.Config) *WebhookNotifier {
	return &WebhookNotifier{
		url:    conf.Webhook.ChatURL,
		client: &http.Client{Timeout: conf.Webhook.Timeout},
	}
}

type webhookPayload struct {
	Text                   string `json:"text"`
	MaintenanceExecutionID string `json:"maintenance_execution_id,omitempty"`
}

func (n *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	if n.url == "" {
		return errors.New("chat webhook URL is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding webhook payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "posting to chat webhook")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("chat webhook responded %d", res.StatusCode)
	}
	return nil
}

func (n *WebhookNotifier) NotifyExecution(ctx context.Context, executionID, message string) error {
	return n.post(ctx, webhookPayload{Text: message, MaintenanceExecutionID: executionID})
}

func (n *WebhookNotifier) SendMessage(ctx context.Context, text string) error {
	return n.post(ctx, webhookPayload{Text: text})
}

// NotifierMock records notifications instead of sending them. Err, when set,
// is returned from every call.
type NotifierMock struct {
	Err error

	mutex    sync.Mutex
	Messages []string
}

var (
	_ maintenance.Notifier = (*NotifierMock)(nil)
	_ billing.ChatSender   = (*NotifierMock)(nil)
)

func NewNotifierMock() *NotifierMock {
	return &NotifierMock{}
}

func (n *NotifierMock) NotifyExecution(_ context.Context, _, message string) error {
	return n.record(message)
}

func (n *NotifierMock) SendMessage(_ context.Context, text string) error {
	return n.record(text)
}

func (n *NotifierMock) record(text string) error {
	if n.Err != nil {
		return n.Err
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.Messages = append(n.Messages, text)
	return nil
}
