package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"yomu/internal/config"
)

type webhookPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
}

// discordPayload carries a plain text notice; Discord does not render HTML.
type discordPayload struct {
	Content string `json:"content"`
}

// discordContentLimit is the maximum message length Discord accepts.
const discordContentLimit = 2000

type WebhookClient struct {
	client *http.Client
	hook   config.Webhook
}

func NewWebhookClient(hook config.Webhook) *WebhookClient {
	return &WebhookClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		hook: hook,
	}
}

func (c *WebhookClient) Deliver(ctx context.Context, msg Message) error {
	var body []byte
	var err error

	if c.hook.Provider == "discord" {
		content := fmt.Sprintf("**%s**\nNewsletter for %s is ready.", msg.Subject, msg.To)
		body, err = json.Marshal(discordPayload{Content: limitRunes(content, discordContentLimit)})
	} else {
		body, err = json.Marshal(webhookPayload{Recipient: msg.To, Subject: msg.Subject, HTML: msg.HTML})
	}
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.hook.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "yomu/0.1")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook responded with status: %d", resp.StatusCode)
	}
	return nil
}

// limitRunes cuts s to at most n characters without splitting a rune.
func limitRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
