// Package slack posts emergency escalations to Slack via incoming
// webhooks. Payloads carry only the conversation ID and turn number,
// never the patient's message text.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/salus/internal/chat"
)

const httpTimeout = 10 * time.Second

// Notifier sends emergency events to a Slack webhook. It implements
// chat.Notifier.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Notify is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Notify posts an emergency event to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Notify(ctx context.Context, ev *chat.EmergencyEvent) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(ev)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(ev *chat.EmergencyEvent) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(),
			{"type": "divider"},
			fieldsBlock(ev),
			{"type": "divider"},
			contextBlock(ev),
		},
	}
}

func headerBlock() map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": "\U0001f534 Emergency flagged in chat",
		},
	}
}

func fieldsBlock(ev *chat.EmergencyEvent) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Conversation:* %s", ev.ConversationID),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Turn:* %d", ev.Turn),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func contextBlock(ev *chat.EmergencyEvent) map[string]any {
	return map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{
				"type": "mrkdwn",
				"text": fmt.Sprintf("salus • conversation %s • %s", ev.ConversationID, ev.At.UTC().Format("2006-01-02 15:04 UTC")),
			},
		},
	}
}
