// Where: internal/app/webhook.go
// What: Test webhook sender.
// Why: Verify the alert pipeline end to end without waiting for TradingView.
package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tvwb/tradingview-webhooks-bot/internal/config"
	"github.com/tvwb/tradingview-webhooks-bot/internal/settings"
	"github.com/tvwb/tradingview-webhooks-bot/internal/ui"
)

type WebhookCmd struct {
	Send WebhookSendCmd `cmd:"" help:"Send a test webhook to a running server"`
}

type WebhookSendCmd struct {
	Key  string `arg:"" optional:"" help:"Webhook key (default: the first registered event's key)"`
	URL  string `help:"Webhook endpoint (default: http://localhost:<configured port>/webhook)"`
	Data string `help:"JSON body to send; the key is injected into it" default:"{\"test\": \"data\"}"`
}

func runWebhookSend(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)
	cfg := config.LoadGlobalConfigOrDefault()

	key := cli.Webhook.Send.Key
	if key == "" {
		st := settings.LoadOrDefault()
		for _, ev := range st.Events {
			if ev.Key != "" {
				key = ev.Key
				break
			}
		}
	}
	if key == "" {
		creds, err := config.EnsureCredentials()
		if err != nil {
			return exitWithError(out, err)
		}
		key = creds.WebhookKey
	}

	url := cli.Webhook.Send.URL
	if url == "" {
		url = fmt.Sprintf("http://localhost:%d/webhook", cfg.Port)
	}

	payload, err := buildPayload(cli.Webhook.Send.Data, key)
	if err != nil {
		return exitWithError(out, err)
	}

	client := deps.Webhook.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return exitWithError(out, fmt.Errorf("send webhook: %w", err))
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	console.Item("Status", resp.Status)
	if len(body) > 0 {
		console.ItemPlain(string(bytes.TrimSpace(body)))
	}
	if resp.StatusCode >= 300 {
		return 1
	}
	return 0
}

// buildPayload injects the routing key into the user-supplied JSON body.
// The body must be a JSON object; anything else cannot carry a key.
func buildPayload(data, key string) ([]byte, error) {
	var body map[string]any
	if err := json.Unmarshal([]byte(data), &body); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	body["key"] = key
	return json.Marshal(body)
}
