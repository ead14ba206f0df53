package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bher20/solarquote/internal/api/swagger"
	"github.com/bher20/solarquote/internal/currency"
	"github.com/bher20/solarquote/internal/metrics"
	"github.com/bher20/solarquote/internal/quote"
	"github.com/bher20/solarquote/internal/storage"
	"github.com/bher20/solarquote/pkg/appliances"
)

// Deps are the collaborators the HTTP layer needs. Storage may be nil.
type Deps struct {
	Service  *quote.Service
	Catalog  *appliances.Catalog
	Storage  storage.Storage
	Currency string
	Log      *zap.Logger
}

// NewMux constructs the HTTP mux, wiring in the quote API, metrics, docs and
// health endpoints.
func NewMux(d Deps) *http.ServeMux {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Service == nil {
		d.Service = quote.NewServiceWithStorage(d.Storage, d.Log)
	}
	if d.Catalog == nil {
		d.Catalog = appliances.Default()
	}
	if d.Currency == "" {
		d.Currency = currency.Default
	}

	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Storage != nil {
			if err := d.Storage.Ping(r.Context()); err != nil {
				d.Log.Warn("readyz: db ping failed", zap.Error(err))
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})

	mux.Handle("/swagger/", http.StripPrefix("/swagger", swagger.Handler()))

	RegisterV1Routes(mux, d)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/swagger/", http.StatusFound)
	})

	return mux
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request count, duration and error responses for an
// endpoint.
func instrument(endpoint, path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		metrics.RequestsTotal.WithLabelValues(endpoint).Inc()
		defer func() {
			metrics.RequestDurationSeconds.WithLabelValues(endpoint, path).Observe(time.Since(start).Seconds())
			if rec.status >= 400 {
				metrics.RequestErrorsTotal.WithLabelValues(endpoint, path, strconv.Itoa(rec.status)).Inc()
			}
		}()

		h(rec, r)
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// writeJSON encodes v before committing the status, so an unencodable body
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, ErrorResponse{Error: msg})
}
