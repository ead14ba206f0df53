package quote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bher20/solarquote/internal/load"
	"github.com/bher20/solarquote/internal/metrics"
	"github.com/bher20/solarquote/internal/numeric"
	"github.com/bher20/solarquote/internal/storage"
	"github.com/bher20/solarquote/pkg/appliances"
)

// LeadNotifier is told about every captured lead.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, lead storage.Lead) error
}

// Outcome is what the service returns for one quote request.
type Outcome struct {
	ID     string        `json:"id"`
	Hash   string        `json:"hash"`
	Cached bool          `json:"cached"`
	Quote  Result        `json:"quote"`
	Load   *load.Summary `json:"load,omitempty"`
	LeadID string        `json:"leadId,omitempty"`
}

// Service wraps Estimate with a snapshot cache keyed by input hash and
// records leads. Storage failures are logged and never fail a quote.
type Service struct {
	st        storage.Storage
	log       *zap.Logger
	notifiers []LeadNotifier

	// NotifyTimeout bounds each notifier call.
	NotifyTimeout time.Duration

	wg sync.WaitGroup
}

// NewService returns a Service without persistence.
func NewService(log *zap.Logger, notifiers ...LeadNotifier) *Service {
	return NewServiceWithStorage(nil, log, notifiers...)
}

func NewServiceWithStorage(st storage.Storage, log *zap.Logger, notifiers ...LeadNotifier) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		st:            st,
		log:           log.Named("quote"),
		notifiers:     notifiers,
		NotifyTimeout: 15 * time.Second,
	}
}

// Hash returns the cache key for in. The customer is excluded so identical
// sizing requests from different people share a snapshot.
func Hash(in Input) string {
	raw, err := json.Marshal(canonical(in))
	if err != nil {
		raw = []byte(fmt.Sprintf("%#v", canonical(in)))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// canonical drops the customer and clamps every number the way Estimate
// reads it, so literal Inputs with NaN or infinities still marshal.
func canonical(in Input) Input {
	in.Customer = Customer{}
	if in.Load != nil {
		l := *in.Load
		l.TotalKW = numeric.Clamp(l.TotalKW)
		in.Load = &l
	}
	for _, f := range []*numeric.Float{
		&in.SystemSizeKW, &in.DailyEnergyKWh, &in.InverterSizeKW, &in.BatteryCapacityKWh,
		&in.TotalCost, &in.EstimatedCost, &in.TotalSavings25Years, &in.ROIPercentage,
	} {
		if f.Set {
			*f = numeric.F(f.Value)
		}
	}
	return in
}

// Estimate returns a quote for in, from cache when an identical request was
// seen before.
func (s *Service) Estimate(ctx context.Context, in Input) Outcome {
	out := Outcome{Hash: Hash(in)}

	if cached, id, ok := s.lookup(ctx, out.Hash); ok {
		cached.Customer = in.Customer
		out.ID = id
		out.Cached = true
		out.Quote = cached
	} else {
		out.ID = uuid.NewString()
		out.Quote = Estimate(in)
		s.store(ctx, out)
	}
	metrics.ObserveQuote(out.Cached, out.Quote.SystemSizeKW)

	if hasContact(in.Customer) {
		out.LeadID = s.captureLead(ctx, out)
	}
	return out
}

// Calculate aggregates the selected appliances and estimates a quote for the
// resulting load. Sizing overrides in in still apply.
func (s *Service) Calculate(ctx context.Context, cat *appliances.Catalog, selections []load.ApplianceSelection, extras []load.AdditionalAppliance, in Input) Outcome {
	summary := load.ComputeSummary(cat, selections, extras)
	in.Load = &summary
	out := s.Estimate(ctx, in)
	out.Load = &summary
	return out
}

// Wait blocks until in-flight lead notifications finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) lookup(ctx context.Context, hash string) (Result, string, bool) {
	if s.st == nil {
		return Result{}, "", false
	}
	snap, err := s.st.GetQuoteSnapshot(ctx, hash)
	if err != nil {
		s.log.Warn("snapshot lookup failed", zap.String("hash", hash), zap.Error(err))
		return Result{}, "", false
	}
	if snap == nil {
		return Result{}, "", false
	}
	var res Result
	if err := json.Unmarshal(snap.Payload, &res); err != nil {
		s.log.Warn("discarding unreadable snapshot", zap.String("id", snap.ID), zap.Error(err))
		return Result{}, "", false
	}
	return res, snap.ID, true
}

func (s *Service) store(ctx context.Context, out Outcome) {
	if s.st == nil {
		return
	}
	res := out.Quote
	res.Customer = Customer{}
	payload, err := json.Marshal(res)
	if err != nil {
		s.log.Warn("marshal snapshot failed", zap.Error(err))
		return
	}
	snap := storage.QuoteSnapshot{ID: out.ID, Hash: out.Hash, Payload: payload}
	if err := s.st.SaveQuoteSnapshot(ctx, snap); err != nil {
		s.log.Warn("save snapshot failed", zap.String("hash", out.Hash), zap.Error(err))
	}
}

func hasContact(c Customer) bool {
	return c.Email != "" || c.Phone != ""
}

func (s *Service) captureLead(ctx context.Context, out Outcome) string {
	c := out.Quote.Customer
	lead := storage.Lead{
		ID:              uuid.NewString(),
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		Address:         c.Address,
		City:            c.City,
		QuoteID:         out.ID,
		SystemSizeKW:    out.Quote.SystemSizeKW,
		PanelQuantity:   out.Quote.PanelQuantity,
		TotalInvestment: out.Quote.Cost.TotalInvestment,
		MonthlySavings:  out.Quote.ROI.MonthlySavings,
		CreatedAt:       time.Now().UTC(),
	}

	if s.st != nil {
		if err := s.st.CreateLead(ctx, lead); err != nil {
			s.log.Error("record lead failed", zap.String("lead_id", lead.ID), zap.Error(err))
		}
	}
	metrics.LeadsTotal.Inc()
	s.log.Info("lead captured", zap.String("lead_id", lead.ID), zap.String("quote_id", out.ID))

	if len(s.notifiers) == 0 {
		return lead.ID
	}
	bg := context.WithoutCancel(ctx)
	for _, n := range s.notifiers {
		s.wg.Add(1)
		go func(n LeadNotifier) {
			defer s.wg.Done()
			nctx, cancel := context.WithTimeout(bg, s.NotifyTimeout)
			defer cancel()
			if err := n.NotifyLead(nctx, lead); err != nil {
				s.log.Warn("lead notification failed", zap.String("lead_id", lead.ID), zap.Error(err))
			}
		}(n)
	}
	return lead.ID
}
