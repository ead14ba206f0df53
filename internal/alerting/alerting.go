package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bher20/solarquote/internal/currency"
	"github.com/bher20/solarquote/internal/storage"
)

// AlertConfig holds alerting configuration.
type AlertConfig struct {
	// WebhookURL is a generic webhook endpoint (Slack, Discord, or custom)
	WebhookURL string
	// WebhookType determines the payload format: "slack", "discord", or "generic"
	WebhookType string
	// Enabled controls whether alerts are sent
	Enabled bool
	// Timeout for HTTP requests
	Timeout time.Duration
	// Currency used to format money in messages
	Currency string
}

// NewAlertConfig fills in the enabled flag, timeout and, when webhookType
// is empty, detects the payload format from the URL.
func NewAlertConfig(webhookURL, webhookType string) AlertConfig {
	cfg := AlertConfig{
		WebhookURL:  webhookURL,
		WebhookType: webhookType,
		Enabled:     webhookURL != "",
		Timeout:     10 * time.Second,
	}

	if cfg.WebhookType == "" {
		if strings.Contains(cfg.WebhookURL, "slack.com") {
			cfg.WebhookType = "slack"
		} else if strings.Contains(cfg.WebhookURL, "discord.com") {
			cfg.WebhookType = "discord"
		} else {
			cfg.WebhookType = "generic"
		}
	}
	return cfg
}

// Alerter sends alerts to configured webhooks.
type Alerter struct {
	cfg    AlertConfig
	client *http.Client
	log    *zap.Logger
}

func NewAlerter(cfg AlertConfig, log *zap.Logger) *Alerter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Alerter{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log.Named("alerting"),
	}
}

// NotifyLead posts a new-lead alert to the webhook.
func (a *Alerter) NotifyLead(ctx context.Context, lead storage.Lead) error {
	if !a.cfg.Enabled {
		a.log.Debug("alerts disabled, skipping")
		return nil
	}

	var payload []byte
	var err error

	switch a.cfg.WebhookType {
	case "slack":
		payload, err = a.buildSlackPayload(lead)
	case "discord":
		payload, err = a.buildDiscordPayload(lead)
	default:
		payload, err = a.buildGenericPayload(lead)
	}

	if err != nil {
		return fmt.Errorf("build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	a.log.Info("sent lead alert", zap.String("lead_id", lead.ID), zap.String("type", a.cfg.WebhookType))
	return nil
}

func contact(lead storage.Lead) string {
	parts := make([]string, 0, 2)
	if lead.Email != "" {
		parts = append(parts, lead.Email)
	}
	if lead.Phone != "" {
		parts = append(parts, lead.Phone)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " / ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *Alerter) buildSlackPayload(lead storage.Lead) ([]byte, error) {
	payload := map[string]interface{}{
		"blocks": []map[string]interface{}{
			{
				"type": "header",
				"text": map[string]string{
					"type": "plain_text",
					"text": fmt.Sprintf(":sunny: New solar lead: %s", orDash(lead.Name)),
				},
			},
			{
				"type": "section",
				"fields": []map[string]string{
					{"type": "mrkdwn", "text": fmt.Sprintf("*Contact:*\n%s", contact(lead))},
					{"type": "mrkdwn", "text": fmt.Sprintf("*City:*\n%s", orDash(lead.City))},
					{"type": "mrkdwn", "text": fmt.Sprintf("*System:*\n%g kW, %d panels", lead.SystemSizeKW, lead.PanelQuantity)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Investment:*\n%s", a.money(lead.TotalInvestment))},
				},
			},
			{
				"type": "context",
				"elements": []map[string]string{
					{"type": "mrkdwn", "text": fmt.Sprintf("Quote %s at %s", lead.QuoteID, lead.CreatedAt.Format(time.RFC3339))},
				},
			},
		},
	}

	return json.Marshal(payload)
}

func (a *Alerter) buildDiscordPayload(lead storage.Lead) ([]byte, error) {
	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{
			{
				"title":       fmt.Sprintf("New solar lead: %s", orDash(lead.Name)),
				"description": contact(lead),
				"color":       16763904, // Amber
				"fields": []map[string]interface{}{
					{"name": "City", "value": orDash(lead.City), "inline": true},
					{"name": "System", "value": fmt.Sprintf("%g kW", lead.SystemSizeKW), "inline": true},
					{"name": "Panels", "value": fmt.Sprintf("%d", lead.PanelQuantity), "inline": true},
					{"name": "Investment", "value": a.money(lead.TotalInvestment), "inline": true},
					{"name": "Monthly savings", "value": a.money(lead.MonthlySavings), "inline": true},
				},
				"footer":    map[string]string{"text": "Quote " + lead.QuoteID},
				"timestamp": lead.CreatedAt.Format(time.RFC3339),
			},
		},
	}

	return json.Marshal(payload)
}

func (a *Alerter) buildGenericPayload(lead storage.Lead) ([]byte, error) {
	payload := map[string]interface{}{
		"alert_type":       "new_lead",
		"lead_id":          lead.ID,
		"quote_id":         lead.QuoteID,
		"name":             lead.Name,
		"email":            lead.Email,
		"phone":            lead.Phone,
		"city":             lead.City,
		"system_size_kw":   lead.SystemSizeKW,
		"panel_quantity":   lead.PanelQuantity,
		"total_investment": lead.TotalInvestment,
		"monthly_savings":  lead.MonthlySavings,
		"timestamp":        lead.CreatedAt.Format(time.RFC3339),
	}

	return json.Marshal(payload)
}

func (a *Alerter) money(amount float64) string {
	return currency.MustFormat(amount, a.cfg.Currency)
}
