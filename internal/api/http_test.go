package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/solarquote/internal/numeric"
	"github.com/bher20/solarquote/internal/quote"
	"github.com/bher20/solarquote/internal/storage"
	"github.com/bher20/solarquote/pkg/appliances"
)

func newTestMux(st storage.Storage) *http.ServeMux {
	return NewMux(Deps{
		Service:  quote.NewServiceWithStorage(st, nil),
		Catalog:  appliances.Default(),
		Storage:  st,
		Currency: "PKR",
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthEndpoints(t *testing.T) {
	mux := newTestMux(storage.NewMemory())
	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready", "/livez": "live"} {
		rec := do(t, mux, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}
}

type downStore struct {
	*storage.MemoryStorage
}

func (downStore) Ping(ctx context.Context) error { return errors.New("down") }

func (downStore) ListLeads(ctx context.Context, limit int) ([]storage.Lead, error) {
	return nil, errors.New("down")
}

func TestReadyz_StorageDown(t *testing.T) {
	mux := newTestMux(downStore{storage.NewMemory()})
	rec := do(t, mux, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetCatalog(t *testing.T) {
	rec := do(t, newTestMux(nil), http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[CatalogResponse](t, rec)
	require.NotEmpty(t, resp.Categories)
	assert.Equal(t, "fans", resp.Categories[0].Key)
	assert.Equal(t, appliances.Placeholder, resp.Categories[0].Options[0].Label)
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(nil)
	rec := do(t, mux, http.MethodPost, "/api/v1/catalog", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method not allowed", decode[ErrorResponse](t, rec).Error)

	rec = do(t, mux, http.MethodGet, "/api/v1/quote", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestComputeLoad(t *testing.T) {
	body := `{
		"selections": [
			{"category": "fans", "selectedOption": "A/C Fan", "quantity": 4},
			{"category": "ledBulbs", "selectedOption": "None", "quantity": "3"},
			{"category": "fans", "selectedOption": "DC Fan", "quantity": -2}
		],
		"extras": [{"name": "Microwave", "watts": 1200, "quantity": 1}]
	}`
	rec := do(t, newTestMux(nil), http.MethodPost, "/api/v1/load", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		TotalWatts int     `json:"totalWatts"`
		TotalKW    float64 `json:"totalKW"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1500, got.TotalWatts)
	assert.Equal(t, 1.5, got.TotalKW)
}

func TestComputeLoad_EmptyBody(t *testing.T) {
	rec := do(t, newTestMux(nil), http.MethodPost, "/api/v1/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalWatts":0`)
}

func TestComputeLoad_MalformedJSON(t *testing.T) {
	rec := do(t, newTestMux(nil), http.MethodPost, "/api/v1/load", `{"selections": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "invalid JSON body")
}

func TestQuote_CachesAndFormats(t *testing.T) {
	st := storage.NewMemory()
	mux := newTestMux(st)
	body := `{"systemSizeKW": 10, "totalCost": 1000000}`

	rec := do(t, mux, http.MethodPost, "/api/v1/quote", body)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[QuoteResponse](t, rec)
	assert.False(t, first.Cached)
	assert.Equal(t, "PKR", first.Currency)
	assert.Equal(t, 1_150_000.0, first.Quote.Cost.TotalInvestment)
	assert.Equal(t, 300.0, first.Quote.Environment.TreesEquivalent)
	assert.Contains(t, first.Display["totalInvestment"], "1,150,000")
	assert.Regexp(t, "^Rs", first.Display["totalInvestment"])

	rec = do(t, mux, http.MethodPost, "/api/v1/quote?currency=usd", body)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[QuoteResponse](t, rec)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "USD", second.Currency)
	assert.Regexp(t, `^\$`, second.Display["monthlySavings"])
}

func TestQuote_UnknownCurrency(t *testing.T) {
	rec := do(t, newTestMux(nil), http.MethodPost, "/api/v1/quote?currency=ZZQ", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuote_GarbageNumbersDefault(t *testing.T) {
	rec := do(t, newTestMux(nil), http.MethodPost, "/api/v1/quote", `{"systemSizeKW": "abc", "totalCost": -5, "panelQuantity": null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[QuoteResponse](t, rec)
	assert.Zero(t, resp.Quote.SystemSizeKW)
	assert.Zero(t, resp.Quote.Cost.TotalInvestment)
	assert.Equal(t, quote.PanelWatts, resp.Quote.PanelWatts)
	assert.Equal(t, quote.DefaultPaybackPeriod, resp.Quote.ROI.PaybackPeriodYears)
}

func TestCalculate_RecordsLead(t *testing.T) {
	st := storage.NewMemory()
	mux := newTestMux(st)
	body := `{
		"selections": [{"category": "fans", "selectedOption": "A/C Fan", "quantity": 4}],
		"extras": [{"name": "Microwave", "watts": 1200, "quantity": 1}],
		"customer": {"name": "Ayesha", "email": "ayesha@example.com", "city": "Lahore"},
		"overrides": {"totalCost": 500000, "panelQuantity": 3}
	}`
	rec := do(t, mux, http.MethodPost, "/api/v1/calculate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[QuoteResponse](t, rec)
	require.NotNil(t, resp.Load)
	assert.Equal(t, 1500, resp.Load.TotalWatts)
	assert.Equal(t, 1.5, resp.Quote.SystemSizeKW)
	assert.Equal(t, 3, resp.Quote.PanelQuantity)
	assert.Equal(t, 1.65, resp.Quote.TotalPanelCapacityKW)
	assert.Equal(t, "Ayesha", resp.Quote.Customer.Name)
	require.NotEmpty(t, resp.LeadID)

	rec = do(t, mux, http.MethodGet, "/api/v1/leads?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	leads := decode[[]storage.Lead](t, rec)
	require.Len(t, leads, 1)
	assert.Equal(t, resp.LeadID, leads[0].ID)
	assert.Equal(t, "ayesha@example.com", leads[0].Email)
}

func TestListLeads(t *testing.T) {
	rec := do(t, newTestMux(nil), http.MethodGet, "/api/v1/leads", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, newTestMux(nil), http.MethodGet, "/api/v1/leads?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, newTestMux(downStore{storage.NewMemory()}), http.MethodGet, "/api/v1/leads", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFormat(t *testing.T) {
	mux := newTestMux(nil)

	rec := do(t, mux, http.MethodGet, "/api/v1/format?amount=1150000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[FormatResponse](t, rec)
	assert.Equal(t, "PKR", resp.Currency)
	assert.Contains(t, resp.Formatted, "1,150,000")

	rec = do(t, mux, http.MethodGet, "/api/v1/format?amount=1234.5&currency=USD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[FormatResponse](t, rec).Formatted, "1,234.50")

	for _, q := range []string{"amount=abc", "amount=NaN", "", "amount=1&currency=ZZQ"} {
		rec = do(t, mux, http.MethodGet, "/api/v1/format?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestSwaggerDoc(t *testing.T) {
	mux := newTestMux(nil)

	rec := do(t, mux, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/quote")

	rec = do(t, mux, http.MethodGet, "/swagger/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swagger-ui")

	rec = do(t, mux, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	mux := newTestMux(nil)
	do(t, mux, http.MethodGet, "/api/v1/catalog", "")

	rec := do(t, mux, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "solarquote_requests_total")
}

func TestQuote_HugeNumbersStillReturnBody(t *testing.T) {
	rec := do(t, newTestMux(nil), http.MethodPost, "/api/v1/quote", `{"totalCost": 1e308, "systemSizeKW": 1e308}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[QuoteResponse](t, rec)
	assert.Equal(t, numeric.Max, resp.Quote.Cost.SystemCost)
	assert.NotEmpty(t, resp.Display["totalInvestment"])
}

func TestWriteJSON_UnencodableIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	err := writeJSON(rec, http.StatusOK, map[string]float64{"x": math.NaN()})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "encode")
}
