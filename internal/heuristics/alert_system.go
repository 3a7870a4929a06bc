package heuristics

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rawblock/dusting-engine/pkg/models"
)

// Alert & Webhook System
//
// Structured alert emission for flagged dusting verdicts. Alerts are:
//   1. Broadcast via WebSocket to connected dashboards
//   2. Pushed to registered webhook endpoints (Slack, Discord, SIEM)
//   3. Stored in memory for recent alert history
//
// Webhook payloads follow a common JSON format compatible with Slack
// incoming webhooks, Discord webhooks, and PagerDuty Events API.

// Alert represents a structured dusting alert.
type Alert struct {
	ID          string                      `json:"id"`
	Timestamp   time.Time                   `json:"timestamp"`
	Severity    string                      `json:"severity"`  // low/medium/high/critical
	AlertType   string                      `json:"alertType"` // dusting_wallet/dusting_transaction/watchlist_hit
	Title       string                      `json:"title"`
	Description string                      `json:"description"`
	Subject     string                      `json:"subject,omitempty"` // wallet address or tx signature
	Wallet      *models.WalletAnalysis      `json:"wallet,omitempty"`
	Transaction *models.TransactionAnalysis `json:"transaction,omitempty"`
	Hits        []WatchlistHit              `json:"hits,omitempty"`
}

// WebhookEndpoint is a registered webhook receiver.
type WebhookEndpoint struct {
	Name        string            `json:"name"`
	URL         string            `json:"url"`
	Enabled     bool              `json:"enabled"`
	Headers     map[string]string `json:"headers,omitempty"`
	MinSeverity string            `json:"minSeverity"` // Only send alerts >= this severity
}

// AlertManager handles alert emission and webhook delivery.
type AlertManager struct {
	mu            sync.RWMutex
	webhooks      []WebhookEndpoint
	recentAlerts  []Alert
	maxHistory    int
	httpClient    *http.Client
	alertCallback func(Alert) // WebSocket broadcast callback
}

// NewAlertManager creates a new alert system.
func NewAlertManager(broadcastFn func(Alert)) *AlertManager {
	return &AlertManager{
		webhooks:      make([]WebhookEndpoint, 0),
		recentAlerts:  make([]Alert, 0),
		maxHistory:    1000,
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		alertCallback: broadcastFn,
	}
}

// RegisterWebhook adds a webhook endpoint.
func (am *AlertManager) RegisterWebhook(name, url, minSeverity string, headers map[string]string) {
	am.mu.Lock()
	defer am.mu.Unlock()

	am.webhooks = append(am.webhooks, WebhookEndpoint{
		Name:        name,
		URL:         url,
		Enabled:     true,
		Headers:     headers,
		MinSeverity: minSeverity,
	})

	log.Printf("[AlertManager] Registered webhook: %s → %s (min: %s)", name, url, minSeverity)
}

// RemoveWebhook removes a webhook by name.
func (am *AlertManager) RemoveWebhook(name string) {
	am.mu.Lock()
	defer am.mu.Unlock()

	for i, wh := range am.webhooks {
		if wh.Name == name {
			am.webhooks = append(am.webhooks[:i], am.webhooks[i+1:]...)
			return
		}
	}
}

// EmitAlert processes and distributes an alert.
func (am *AlertManager) EmitAlert(alert Alert) {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}

	// Store in history
	am.mu.Lock()
	am.recentAlerts = append(am.recentAlerts, alert)
	if len(am.recentAlerts) > am.maxHistory {
		am.recentAlerts = am.recentAlerts[len(am.recentAlerts)-am.maxHistory:]
	}
	webhooks := make([]WebhookEndpoint, len(am.webhooks))
	copy(webhooks, am.webhooks)
	am.mu.Unlock()

	// Broadcast via WebSocket callback
	if am.alertCallback != nil {
		am.alertCallback(alert)
	}

	// Send to webhooks (async, non-blocking)
	for _, wh := range webhooks {
		if !wh.Enabled {
			continue
		}
		if !severityMeetsThreshold(alert.Severity, wh.MinSeverity) {
			continue
		}
		go am.sendWebhook(wh, alert)
	}

	log.Printf("[Alert] [%s] %s: %s (subject: %s)", alert.Severity, alert.AlertType, alert.Title, alert.Subject)
}

// EmitFromWalletAnalysis emits an alert for a flagged wallet verdict or a
// watchlist hit. Clean LOW/MEDIUM verdicts without hits stay silent.
func (am *AlertManager) EmitFromWalletAnalysis(analysis models.WalletAnalysis, hits []WatchlistHit) {
	if !analysis.IsDustingWallet && len(hits) == 0 {
		return
	}

	alertType := "dusting_wallet"
	title := "Dusting wallet flagged: " + string(analysis.RiskLevel)
	if len(hits) > 0 {
		alertType = "watchlist_hit"
		title = "Watchlisted address analyzed"
	}

	am.EmitAlert(Alert{
		Severity:    severityFor(analysis.RiskLevel),
		AlertType:   alertType,
		Title:       title,
		Description: strings.Join(analysis.SuspiciousPatterns, ", "),
		Subject:     analysis.Address,
		Wallet:      &analysis,
		Hits:        hits,
	})
}

// EmitFromTransactionAnalysis emits an alert for a flagged transaction
// verdict or a watchlist hit on either party.
func (am *AlertManager) EmitFromTransactionAnalysis(analysis models.TransactionAnalysis, hits []WatchlistHit) {
	if !analysis.IsDustingTransaction && len(hits) == 0 {
		return
	}

	alertType := "dusting_transaction"
	title := "Dusting transaction flagged: " + string(analysis.RiskLevel)
	if len(hits) > 0 {
		alertType = "watchlist_hit"
		title = "Watchlisted address in transaction"
	}

	am.EmitAlert(Alert{
		Severity:    severityFor(analysis.RiskLevel),
		AlertType:   alertType,
		Title:       title,
		Description: strings.Join(analysis.SuspiciousPatterns, ", "),
		Subject:     analysis.Transaction.Signature,
		Transaction: &analysis,
		Hits:        hits,
	})
}

// GetRecentAlerts returns the most recent alerts, newest first.
func (am *AlertManager) GetRecentAlerts(limit int) []Alert {
	am.mu.RLock()
	defer am.mu.RUnlock()

	if limit <= 0 || limit > len(am.recentAlerts) {
		limit = len(am.recentAlerts)
	}

	start := len(am.recentAlerts) - limit
	result := make([]Alert, limit)
	for i := 0; i < limit; i++ {
		result[i] = am.recentAlerts[start+limit-1-i]
	}
	return result
}

// GetAlertsBySeverity returns alerts matching a minimum severity.
func (am *AlertManager) GetAlertsBySeverity(minSeverity string) []Alert {
	am.mu.RLock()
	defer am.mu.RUnlock()

	var filtered []Alert
	for _, alert := range am.recentAlerts {
		if severityMeetsThreshold(alert.Severity, minSeverity) {
			filtered = append(filtered, alert)
		}
	}
	return filtered
}

// sendWebhook delivers an alert to a webhook endpoint.
func (am *AlertManager) sendWebhook(wh WebhookEndpoint, alert Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		log.Printf("[Webhook] Failed to marshal alert: %v", err)
		return
	}

	req, err := http.NewRequest("POST", wh.URL, bytes.NewBuffer(payload))
	if err != nil {
		log.Printf("[Webhook] Failed to create request for %s: %v", wh.Name, err)
		return
	}

	req.Header.Set("Content-Type", "application/json")
	for key, val := range wh.Headers {
		req.Header.Set(key, val)
	}

	resp, err := am.httpClient.Do(req)
	if err != nil {
		log.Printf("[Webhook] Failed to send to %s: %v", wh.Name, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("[Webhook] %s returned status %d", wh.Name, resp.StatusCode)
	}
}

// severityFor maps a risk tier to the alert severity scale.
func severityFor(level models.RiskLevel) string {
	switch level {
	case models.RiskCritical:
		return "critical"
	case models.RiskHigh:
		return "high"
	case models.RiskMedium:
		return "medium"
	default:
		return "low"
	}
}

// severityMeetsThreshold checks if a severity level meets the minimum.
func severityMeetsThreshold(severity, minimum string) bool {
	levels := map[string]int{
		"low": 0, "medium": 1, "high": 2, "critical": 3,
	}
	return levels[severity] >= levels[minimum]
}
