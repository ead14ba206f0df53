package alerting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/solarquote/internal/storage"
)

func testLead() storage.Lead {
	return storage.Lead{
		ID:              "lead-1",
		Name:            "Ayesha Khan",
		Email:           "ayesha@example.com",
		Phone:           "+92 300 0000000",
		City:            "Lahore",
		QuoteID:         "quote-1",
		SystemSizeKW:    10,
		PanelQuantity:   18,
		TotalInvestment: 1150000,
		MonthlySavings:  20000,
		CreatedAt:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewAlertConfig_DetectsType(t *testing.T) {
	assert.Equal(t, "slack", NewAlertConfig("https://hooks.slack.com/services/x", "").WebhookType)
	assert.Equal(t, "discord", NewAlertConfig("https://discord.com/api/webhooks/x", "").WebhookType)
	assert.Equal(t, "generic", NewAlertConfig("https://example.com/hook", "").WebhookType)
	assert.Equal(t, "slack", NewAlertConfig("https://example.com/hook", "slack").WebhookType)
	assert.False(t, NewAlertConfig("", "").Enabled)
}

func TestNotifyLead_Disabled(t *testing.T) {
	a := NewAlerter(NewAlertConfig("", ""), nil)
	assert.NoError(t, a.NotifyLead(context.Background(), testLead()))
}

func TestNotifyLead_Payloads(t *testing.T) {
	for _, typ := range []string{"slack", "discord", "generic"} {
		t.Run(typ, func(t *testing.T) {
			var body map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				raw, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(raw, &body))
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			cfg := NewAlertConfig(srv.URL, typ)
			cfg.Currency = "PKR"
			require.NoError(t, NewAlerter(cfg, nil).NotifyLead(context.Background(), testLead()))

			switch typ {
			case "slack":
				assert.Contains(t, body, "blocks")
			case "discord":
				assert.Contains(t, body, "embeds")
			default:
				assert.Equal(t, "new_lead", body["alert_type"])
				assert.Equal(t, "lead-1", body["lead_id"])
				assert.EqualValues(t, 18, body["panel_quantity"])
			}
		})
	}
}

func TestNotifyLead_WebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewAlerter(NewAlertConfig(srv.URL, "generic"), nil).NotifyLead(context.Background(), testLead())
	assert.EqualError(t, err, "webhook returned status 502")
}

func TestContact(t *testing.T) {
	assert.Equal(t, "-", contact(storage.Lead{}))
	assert.Equal(t, "a@b.c", contact(storage.Lead{Email: "a@b.c"}))
	assert.Equal(t, "a@b.c / 123", contact(storage.Lead{Email: "a@b.c", Phone: "123"}))
}
