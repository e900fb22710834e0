package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kjannette/fng-correlation-backend/internal/config"
	"github.com/kjannette/fng-correlation-backend/internal/external"
	"github.com/kjannette/fng-correlation-backend/internal/models"
	"github.com/kjannette/fng-correlation-backend/internal/service"
)

var coinIDRegexp = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// MarketClient is the CoinGecko surface the API needs.
type MarketClient interface {
	ListCoins(ctx context.Context) ([]models.Coin, error)
	MarketChart(ctx context.Context, coinID string, from, to int64) ([]models.PricePoint, error)
	MarketChartRaw(ctx context.Context, coinID string, from, to int64) ([]byte, error)
}

type Server struct {
	market     MarketClient
	sentiment  service.SentimentSource
	charts     *service.ChartService
	coinNames  map[string]struct{}
	exportDir  string
	httpServer *http.Server
}

func NewServer(cfg *config.Config, market MarketClient, sentiment service.SentimentSource) *Server {
	s := &Server{
		market:    market,
		sentiment: sentiment,
		charts:    service.NewChartService(market, sentiment, cfg.Location),
		coinNames: cfg.CoinNames,
		exportDir: cfg.ExportDir,
	}

	mux := http.NewServeMux()

	// Upstream passthrough routes
	mux.HandleFunc("GET /prices/{coinId}", s.handlePrices)
	mux.HandleFunc("GET /coins", s.handleCoins)
	mux.HandleFunc("GET /fear_greed", s.handleFearGreed)

	// Correlation routes
	mux.HandleFunc("GET /chart_data/{coinId}", s.handleChartData)
	mux.HandleFunc("GET /get_csv/{coinId}", s.handleCSV)

	mux.HandleFunc("GET /health", s.handleHealth)

	handler := requestIDMiddleware(corsMiddleware(mux, cfg.CORSOrigins))

	// Worst case a request waits for every retry of its slowest upstream.
	attempts := max(cfg.UpstreamAttempts, 1)
	writeTimeout := time.Duration(attempts)*cfg.UpstreamTimeout + 15*time.Second

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

type ctxKey int

const requestIDKey ctxKey = iota

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// corsMiddleware echoes the request origin when it is on the allow-list.
// A "*" entry admits every origin.
func corsMiddleware(next http.Handler, allowOrigins []string) http.Handler {
	allowed := make(map[string]struct{}, len(allowOrigins))
	allowAll := false
	for _, o := range allowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Add("Vary", "Origin")
			if _, ok := allowed[origin]; ok || allowAll {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
				w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func validateCoinID(id string) bool {
	return coinIDRegexp.MatchString(id)
}

// parseRange reads the required start and end query parameters (Unix seconds).
func parseRange(r *http.Request) (start, end int64, err error) {
	q := r.URL.Query()
	start, err = parseUnix(q.Get("start"), "start")
	if err != nil {
		return 0, 0, err
	}
	end, err = parseUnix(q.Get("end"), "end")
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, fmt.Errorf("start (%d) must not be after end (%d)", start, end)
	}
	return start, end, nil
}

func parseUnix(v, name string) (int64, error) {
	if v == "" {
		return 0, fmt.Errorf("missing query parameter %q", name)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("query parameter %q must be a non-negative integer", name)
	}
	return n, nil
}

// --- response helpers ---

const (
	kindInvalidRequest    = "invalid_request"
	kindUpstreamShape     = "upstream_shape"
	kindUpstreamTransport = "upstream_transport"
	kindInternal          = "internal"
)

type errorJSON struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorJSON{Kind: kind, Error: msg})
}

// writeFetchError maps a pipeline error onto a response. Upstream error
// responses are forwarded as they were received.
func writeFetchError(w http.ResponseWriter, r *http.Request, what string, err error) {
	var (
		upstream  *external.UpstreamError
		shape     *external.ShapeError
		transport *external.TransportError
	)

	switch {
	case errors.As(err, &upstream):
		fmt.Printf("[API] %s %s: %v\n", requestID(r), what, err)
		writeRaw(w, upstream.StatusCode, upstream.ContentType, upstream.Body)
	case errors.As(err, &shape):
		fmt.Printf("[API] %s %s: %v\n", requestID(r), what, err)
		writeError(w, http.StatusBadGateway, kindUpstreamShape, shape.Error())
	case errors.As(err, &transport):
		fmt.Printf("[API] %s %s: %v\n", requestID(r), what, err)
		status := http.StatusBadGateway
		if transport.Timeout() {
			status = http.StatusGatewayTimeout
		}
		writeError(w, status, kindUpstreamTransport, transport.Error())
	case r.Context().Err() != nil:
		fmt.Printf("[API] %s %s: client went away: %v\n", requestID(r), what, err)
	default:
		fmt.Printf("[API] %s Error fetching %s: %v\n", requestID(r), what, err)
		writeError(w, http.StatusInternalServerError, kindInternal, "failed to fetch "+what)
	}
}
