package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
)

type AlertType string

const (
	AlertTypeScannerUnhealthy AlertType = "SCANNER_UNHEALTHY"
	AlertTypeScannerRecovered AlertType = "SCANNER_RECOVERED"
	AlertTypePendingApproval  AlertType = "PAYMENT_PENDING_APPROVAL"
	AlertTypeCursorConflict   AlertType = "CURSOR_CONFLICT"
	AlertTypeLedgerMismatch   AlertType = "LEDGER_MISMATCH"
)

// Alert is one operator notification. Key narrows the cooldown scope below
// type+network; payment alerts set it to the tx hash so each payment is
// announced once.
type Alert struct {
	Type    AlertType
	Network string
	Key     string
	Title   string
	Message string
	Fields  map[string]string
}

type Alerter interface {
	Send(ctx context.Context, alert Alert) error
}

// MultiAlerter fans alerts out to every channel and suppresses repeats of
// the same alert inside the cooldown window.
type MultiAlerter struct {
	alerters []Alerter
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewMultiAlerter(cooldown time.Duration, logger *slog.Logger, alerters ...Alerter) *MultiAlerter {
	return &MultiAlerter{
		alerters: alerters,
		cooldown: cooldown,
		logger:   logger.With("component", "alerter"),
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

func cooldownKey(a Alert) string {
	return fmt.Sprintf("%s:%s:%s", a.Type, a.Network, a.Key)
}

func (m *MultiAlerter) Send(ctx context.Context, alert Alert) error {
	key := cooldownKey(alert)
	now := m.now()

	m.mu.Lock()
	if last, ok := m.lastSent[key]; ok && now.Sub(last) < m.cooldown {
		m.mu.Unlock()
		m.logger.Debug("alert suppressed by cooldown", "key", key)
		for _, a := range m.alerters {
			metrics.AlertsCooldownSkipped.WithLabelValues(alerterName(a), string(alert.Type)).Inc()
		}
		return nil
	}
	m.lastSent[key] = now
	m.mu.Unlock()

	var firstErr error
	for _, a := range m.alerters {
		if err := a.Send(ctx, alert); err != nil {
			m.logger.Warn("alert send failed", "channel", alerterName(a), "type", alert.Type, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.AlertsSentTotal.WithLabelValues(alerterName(a), string(alert.Type)).Inc()
	}
	return firstErr
}

func alerterName(a Alerter) string {
	switch a.(type) {
	case *SlackAlerter:
		return "slack"
	case *WebhookAlerter:
		return "webhook"
	default:
		return "unknown"
	}
}

func sortedFieldKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// SlackAlerter posts to a Slack incoming webhook.
type SlackAlerter struct {
	webhookURL string
	client     *http.Client
}

func NewSlackAlerter(webhookURL string) *SlackAlerter {
	return &SlackAlerter{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackAlerter) Send(ctx context.Context, alert Alert) error {
	emoji := ":warning:"
	switch alert.Type {
	case AlertTypeScannerRecovered:
		emoji = ":white_check_mark:"
	case AlertTypePendingApproval:
		emoji = ":moneybag:"
	case AlertTypeCursorConflict, AlertTypeLedgerMismatch:
		emoji = ":rotating_light:"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *[%s]* %s: %s\n%s", emoji, alert.Type, alert.Network, alert.Title, alert.Message)
	if len(alert.Fields) > 0 {
		b.WriteString("\n")
		for _, k := range sortedFieldKeys(alert.Fields) {
			fmt.Fprintf(&b, "- *%s*: %s\n", k, alert.Fields[k])
		}
	}

	if err := postJSON(ctx, s.client, s.webhookURL, map[string]string{"text": b.String()}); err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	return nil
}

// WebhookAlerter posts a JSON document to a generic endpoint.
type WebhookAlerter struct {
	url    string
	client *http.Client
}

func NewWebhookAlerter(url string) *WebhookAlerter {
	return &WebhookAlerter{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookAlerter) Send(ctx context.Context, alert Alert) error {
	payload := map[string]any{
		"type":    string(alert.Type),
		"network": alert.Network,
		"key":     alert.Key,
		"title":   alert.Title,
		"message": alert.Message,
		"fields":  alert.Fields,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}
	if err := postJSON(ctx, w.client, w.url, payload); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

// NoopAlerter is used when no channel is configured.
type NoopAlerter struct{}

func (n *NoopAlerter) Send(_ context.Context, _ Alert) error { return nil }
