package server

import (
	"log/slog"
	"net/http"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/internal/rate"
	"github.com/MrEthical07/goToken/metrics/export/prometheus"
	"github.com/MrEthical07/goToken/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const defaultMaxBodyBytes = 1 << 20

// Options wires the router's dependencies.
type Options struct {
	Service *goToken.Service
	// Limiter throttles issue and refresh per client IP. Nil disables throttling.
	Limiter *rate.Limiter
	// IssuerAPIKey guards POST /v1/tokens. Empty disables issuance over HTTP.
	IssuerAPIKey string
	Logger       *slog.Logger
	MaxBodyBytes int64
	// TrustProxyHeaders takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers; otherwise clients
	// pick their own rate limit key.
	TrustProxyHeaders bool
}

// NewRouter builds the HTTP handler for opts.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	h := &handlers{
		svc:          opts.Service,
		limiter:      opts.Limiter,
		issuerAPIKey: []byte(opts.IssuerAPIKey),
		logger:       opts.Logger,
		maxBody:      opts.MaxBodyBytes,
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(requestLogger(opts.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", prometheus.NewExporter(opts.Service).Handler())

	r.Route("/v1", func(vr chi.Router) {
		vr.Route("/tokens", func(tr chi.Router) {
			tr.Post("/", h.issue)
			tr.Post("/verify", h.verify)
			tr.Post("/refresh", h.refresh)
		})
		vr.With(middleware.Guard(opts.Service)).Get("/claims", h.claims)
	})

	return r
}
