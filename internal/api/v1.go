package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/bher20/solarquote/internal/currency"
	"github.com/bher20/solarquote/internal/load"
	"github.com/bher20/solarquote/internal/numeric"
	"github.com/bher20/solarquote/internal/quote"
	"github.com/bher20/solarquote/internal/storage"
	"github.com/bher20/solarquote/pkg/appliances"
)

const (
	maxBodyBytes     = 1 << 20
	defaultLeadLimit = 50
	maxLeadLimit     = 500
)

type CatalogResponse struct {
	Categories []appliances.Category `json:"categories"`
}

type LoadRequest struct {
	Selections []load.ApplianceSelection  `json:"selections"`
	Extras     []load.AdditionalAppliance `json:"extras"`
}

type CalculateRequest struct {
	Selections []load.ApplianceSelection  `json:"selections"`
	Extras     []load.AdditionalAppliance `json:"extras"`
	Customer   quote.Customer             `json:"customer"`
	// Overrides carries optional sizing and cost fields. Its customer and
	// load are ignored.
	Overrides quote.Input `json:"overrides"`
}

type QuoteResponse struct {
	ID       string            `json:"id"`
	Hash     string            `json:"hash"`
	Cached   bool              `json:"cached"`
	LeadID   string            `json:"leadId,omitempty"`
	Currency string            `json:"currency"`
	Quote    quote.Result      `json:"quote"`
	Load     *load.Summary     `json:"load,omitempty"`
	Display  map[string]string `json:"display"`
}

type FormatResponse struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

type V1Handler struct {
	svc      *quote.Service
	catalog  *appliances.Catalog
	st       storage.Storage
	currency string
	log      *zap.Logger
}

func RegisterV1Routes(mux *http.ServeMux, d Deps) {
	h := &V1Handler{
		svc:      d.Service,
		catalog:  d.Catalog,
		st:       d.Storage,
		currency: d.Currency,
		log:      d.Log.Named("api"),
	}

	mux.HandleFunc("/api/v1/catalog", instrument("catalog", "/api/v1/catalog", h.GetCatalog))
	mux.HandleFunc("/api/v1/load", instrument("load", "/api/v1/load", h.ComputeLoad))
	mux.HandleFunc("/api/v1/quote", instrument("quote", "/api/v1/quote", h.Quote))
	mux.HandleFunc("/api/v1/calculate", instrument("calculate", "/api/v1/calculate", h.Calculate))
	mux.HandleFunc("/api/v1/leads", instrument("leads", "/api/v1/leads", h.ListLeads))
	mux.HandleFunc("/api/v1/format", instrument("format", "/api/v1/format", h.Format))
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// displayCurrency resolves the ?currency= parameter against the default.
func (h *V1Handler) displayCurrency(r *http.Request) (string, error) {
	code := r.URL.Query().Get("currency")
	if code == "" {
		code = h.currency
	}
	return currency.Validate(code)
}

func display(res quote.Result, code string) map[string]string {
	amounts := map[string]float64{
		"systemCost":          res.Cost.SystemCost,
		"installationCharge":  res.Cost.InstallationCharge,
		"totalInvestment":     res.Cost.TotalInvestment,
		"monthlySavings":      res.ROI.MonthlySavings,
		"annualSavings":       res.ROI.AnnualSavings,
		"totalSavings25Years": res.ROI.TotalSavings25Years,
	}
	out := make(map[string]string, len(amounts))
	for k, v := range amounts {
		out[k] = currency.MustFormat(v, code)
	}
	return out
}

func (h *V1Handler) respond(w http.ResponseWriter, out quote.Outcome, code string) {
	h.writeJSON(w, http.StatusOK, QuoteResponse{
		ID:       out.ID,
		Hash:     out.Hash,
		Cached:   out.Cached,
		LeadID:   out.LeadID,
		Currency: code,
		Quote:    out.Quote,
		Load:     out.Load,
		Display:  display(out.Quote, code),
	})
}

// GetCatalog lists the appliance catalog
// @Summary List the appliance catalog
// @Tags load
// @Produce json
// @Success 200 {object} CatalogResponse
// @Router /api/v1/catalog [get]
func (h *V1Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, http.StatusOK, CatalogResponse{Categories: h.catalog.Categories()})
}

// ComputeLoad sums the connected load
// @Summary Compute a load summary
// @Tags load
// @Accept json
// @Produce json
// @Param request body LoadRequest true "Appliances"
// @Success 200 {object} load.Summary
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/load [post]
func (h *V1Handler) ComputeLoad(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req LoadRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, load.ComputeSummary(h.catalog, req.Selections, req.Extras))
}

// Quote estimates a quote
// @Summary Estimate a quote
// @Tags quote
// @Accept json
// @Produce json
// @Param request body quote.Input true "Quote input"
// @Param currency query string false "ISO 4217 display currency"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/quote [post]
func (h *V1Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	code, err := h.displayCurrency(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in quote.Input
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	h.respond(w, h.svc.Estimate(r.Context(), in), code)
}

// Calculate runs the load calculator and the estimator together
// @Summary Load calculation and quote in one call
// @Tags quote
// @Accept json
// @Produce json
// @Param request body CalculateRequest true "Appliances, customer and overrides"
// @Param currency query string false "ISO 4217 display currency"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/calculate [post]
func (h *V1Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	code, err := h.displayCurrency(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req CalculateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	in := req.Overrides
	in.Customer = req.Customer
	in.Load = nil
	h.respond(w, h.svc.Calculate(r.Context(), h.catalog, req.Selections, req.Extras, in), code)
}

// ListLeads lists captured leads
// @Summary List captured leads
// @Tags leads
// @Produce json
// @Param limit query int false "Maximum number of leads (default 50)"
// @Success 200 {array} storage.Lead
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/leads [get]
func (h *V1Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	limit := defaultLeadLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = min(n, maxLeadLimit)
	}

	leads := []storage.Lead{}
	if h.st != nil {
		list, err := h.st.ListLeads(r.Context(), limit)
		if err != nil {
			h.log.Error("list leads failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if list != nil {
			leads = list
		}
	}
	h.writeJSON(w, http.StatusOK, leads)
}

// Format renders a money amount
// @Summary Format a money amount
// @Tags currency
// @Produce json
// @Param amount query number true "Amount"
// @Param currency query string false "ISO 4217 currency code"
// @Success 200 {object} FormatResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/format [get]
func (h *V1Handler) Format(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	raw := r.URL.Query().Get("amount")
	amount, ok := numeric.ParseLenient(raw)
	if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid amount %q", raw))
		return
	}
	code, err := h.displayCurrency(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	formatted, err := currency.Format(amount, code)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, FormatResponse{Amount: amount, Currency: code, Formatted: formatted})
}

func (h *V1Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		h.log.Error("write response failed", zap.Error(err))
	}
}
