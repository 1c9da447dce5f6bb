package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertStoreDown   AlertType = "store_down"
	AlertBreakerOpen AlertType = "breaker_open"
	AlertNoAdapters  AlertType = "no_adapters"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a Snapshot against configured thresholds and sends
// alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *Snapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	if !snap.Store.Up {
		alerts = append(alerts, Alert{
			Type:     AlertStoreDown,
			Severity: "high",
			Message:  fmt.Sprintf("Record store (%s) is unreachable: %s", snap.Store.Driver, snap.Store.Error),
			Details: map[string]any{
				"driver": snap.Store.Driver,
				"error":  snap.Store.Error,
			},
			Timestamp: now,
		})
	}

	open := snap.OpenBreakers()
	sort.Strings(open)
	if a.cfg.OpenBreakerThreshold > 0 && len(open) >= a.cfg.OpenBreakerThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertBreakerOpen,
			Severity: "medium",
			Message: fmt.Sprintf(
				"%d provider circuit breaker(s) open: %s",
				len(open), strings.Join(open, ", "),
			),
			Details: map[string]any{
				"open":      open,
				"threshold": a.cfg.OpenBreakerThreshold,
			},
			Timestamp: now,
		})
	}

	enabled := 0
	for _, on := range snap.APIs {
		if on {
			enabled++
		}
	}
	if enabled == 0 {
		alerts = append(alerts, Alert{
			Type:      AlertNoAdapters,
			Severity:  "high",
			Message:   "No provider adapters are enabled; every lookup will fail",
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
