package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wanderlist/wanderlist/internal/config"
)

// WebhookPayload is the generic payload sent to webhooks.
type WebhookPayload struct {
	Event     config.WebhookEvent `json:"event"`
	Timestamp time.Time           `json:"timestamp"`
	Data      interface{}         `json:"data"`
}

// SyncEventData describes a sync code lifecycle event. It carries
// counts only, never destination names, codes, or emails.
type SyncEventData struct {
	Device   string `json:"device,omitempty"`
	Saved    int    `json:"saved"`
	Rejected int    `json:"rejected"`
}

// WebhookDispatcher sends notifications to configured webhooks.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	webhooks []*config.WebhookConfig
	client   *http.Client
	inflight sync.WaitGroup
}

// NewWebhookDispatcher creates a new webhook dispatcher.
func NewWebhookDispatcher() *WebhookDispatcher {
	return &WebhookDispatcher{
		webhooks: config.GetWebhooks(),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ReloadConfig refreshes the webhook configuration.
func (d *WebhookDispatcher) ReloadConfig() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.webhooks = config.GetWebhooks()
}

// Dispatch sends an event to all matching webhooks.
func (d *WebhookDispatcher) Dispatch(event config.WebhookEvent, data interface{}) {
	d.mu.RLock()
	webhooks := d.webhooks
	d.mu.RUnlock()

	payload := WebhookPayload{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	for _, wh := range webhooks {
		if !wh.Enabled {
			continue
		}
		if !d.matchesEvent(wh, event) {
			continue
		}

		d.inflight.Add(1)
		go func(wh *config.WebhookConfig) {
			defer d.inflight.Done()
			d.send(wh, payload)
		}(wh)
	}
}

// Flush blocks until all dispatched sends have completed. Short-lived
// callers (CLI commands) must call this before exiting, or the process
// tears the send goroutines down mid-flight. Each send is bounded by
// the client's 10s timeout.
func (d *WebhookDispatcher) Flush() {
	d.inflight.Wait()
}

func (d *WebhookDispatcher) matchesEvent(wh *config.WebhookConfig, event config.WebhookEvent) bool {
	for _, e := range wh.Events {
		if e == event {
			return true
		}
	}
	return false
}

func (d *WebhookDispatcher) send(wh *config.WebhookConfig, payload WebhookPayload) {
	body := d.encode(wh, payload)

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Wanderlist-Webhook/1.0")

	for k, v := range wh.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}

// encode picks the message shape from the webhook URL. Slack and
// Discord get their native formats, everything else raw JSON.
func (d *WebhookDispatcher) encode(wh *config.WebhookConfig, payload WebhookPayload) []byte {
	switch {
	case strings.Contains(wh.URL, "slack.com"):
		return d.formatSlack(payload)
	case strings.Contains(wh.URL, "discord.com"):
		return d.formatDiscord(payload)
	default:
		data, _ := json.Marshal(payload)
		return data
	}
}

func (d *WebhookDispatcher) formatSlack(payload WebhookPayload) []byte {
	text := d.formatMessage(payload)

	msg := map[string]interface{}{
		"text": text,
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	}

	data, _ := json.Marshal(msg)
	return data
}

func (d *WebhookDispatcher) formatDiscord(payload WebhookPayload) []byte {
	text := d.formatMessage(payload)

	msg := map[string]interface{}{
		"content": text,
		"embeds": []map[string]interface{}{
			{
				"title":       string(payload.Event),
				"description": text,
				"timestamp":   payload.Timestamp.Format(time.RFC3339),
				"color":       d.getColorForEvent(payload.Event),
			},
		},
	}

	data, _ := json.Marshal(msg)
	return data
}

// formatMessage creates a human-readable message for the event.
func (d *WebhookDispatcher) formatMessage(payload WebhookPayload) string {
	switch payload.Event {
	case config.WebhookEventSyncCreated:
		if data, ok := payload.Data.(*SyncEventData); ok {
			return fmt.Sprintf("📤 Sync code created on %s (%d saved, %d rejected destinations)",
				data.Device, data.Saved, data.Rejected)
		}

	case config.WebhookEventSyncApplied:
		if data, ok := payload.Data.(*SyncEventData); ok {
			return fmt.Sprintf("📥 Sync applied on %s (%d saved, %d rejected destinations)",
				data.Device, data.Saved, data.Rejected)
		}

	case config.WebhookEventSyncCleared:
		return "🗑️ All sync codes cleared"
	}

	return fmt.Sprintf("Wanderlist Event: %s", payload.Event)
}

// getColorForEvent returns a Discord embed color for the event type.
func (d *WebhookDispatcher) getColorForEvent(event config.WebhookEvent) int {
	switch event {
	case config.WebhookEventSyncCreated:
		return 0x5EEAD4 // Teal
	case config.WebhookEventSyncApplied:
		return 0x86EFAC // Green
	case config.WebhookEventSyncCleared:
		return 0xFBBF24 // Amber
	default:
		return 0x93C5FD // Blue
	}
}

// TestWebhook sends a test message to a webhook.
func (d *WebhookDispatcher) TestWebhook(wh *config.WebhookConfig) error {
	payload := WebhookPayload{
		Event:     "test",
		Timestamp: time.Now().UTC(),
		Data: map[string]string{
			"message": "This is a test notification from Wanderlist",
		},
	}

	body := d.encode(wh, payload)

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Wanderlist-Webhook/1.0")

	for k, v := range wh.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// --- Global dispatcher ---

var globalDispatcher *WebhookDispatcher
var dispatcherOnce sync.Once

// GetGlobalDispatcher returns the global webhook dispatcher.
func GetGlobalDispatcher() *WebhookDispatcher {
	dispatcherOnce.Do(func() {
		globalDispatcher = NewWebhookDispatcher()
	})
	return globalDispatcher
}

// DispatchEvent is a convenience function to dispatch an event globally.
func DispatchEvent(event config.WebhookEvent, data interface{}) {
	GetGlobalDispatcher().Dispatch(event, data)
}

// Flush waits for the global dispatcher's outstanding sends.
func Flush() {
	GetGlobalDispatcher().Flush()
}

// NotifySyncCreated reports that a sync code was created on this device.
func NotifySyncCreated(device string, saved, rejected int) {
	DispatchEvent(config.WebhookEventSyncCreated, &SyncEventData{
		Device:   device,
		Saved:    saved,
		Rejected: rejected,
	})
}

// NotifySyncApplied reports that a sync code was applied on this device.
func NotifySyncApplied(device string, saved, rejected int) {
	DispatchEvent(config.WebhookEventSyncApplied, &SyncEventData{
		Device:   device,
		Saved:    saved,
		Rejected: rejected,
	})
}

// NotifySyncCleared reports that all sync data was erased.
func NotifySyncCleared() {
	DispatchEvent(config.WebhookEventSyncCleared, nil)
}
