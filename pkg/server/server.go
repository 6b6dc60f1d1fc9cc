// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otherjamesbrown/moodsense/pkg/analysis"
	"github.com/otherjamesbrown/moodsense/pkg/billing"
	"github.com/otherjamesbrown/moodsense/pkg/buildinfo"
	"github.com/otherjamesbrown/moodsense/pkg/envelope"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
	"github.com/otherjamesbrown/moodsense/pkg/observability"
)

// APIPrefix is the mount point of the analysis routes.
const APIPrefix = "/api/v1"

// Defaults for Config zero values.
const (
	DefaultMaxUploadBytes  = 32 << 20
	DefaultRequestTimeout  = 5 * time.Minute
	DefaultShutdownTimeout = 15 * time.Second
)

// Analyzer runs one analysis.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*analysis.Report, error)
}

// Config tunes the HTTP layer.
type Config struct {
	Addr            string
	MaxUploadBytes  int64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Deployment prices each request for the cost headers. Zero CPUs means
	// the host CPU count.
	Deployment billing.Deployment
}

// Deps are the collaborators the handlers need. Keys may be nil, in which
// case the encryption routes answer 503.
type Deps struct {
	Analyzer Analyzer
	Keys     envelope.KeyProvider
	Logger   logging.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

func (c Config) withDefaults() Config {
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}

type handlers struct {
	cfg       Config
	analyzer  Analyzer
	decrypter *lazyDecrypter
	logger    logging.Logger
}

// NewRouter wires the HTTP routes.
func NewRouter(deps Deps, cfg Config) http.Handler {
	cfg = cfg.withDefaults()
	if deps.Logger == nil {
		deps.Logger = logging.MustGlobal()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	logger := deps.Logger.With(logging.F("component", "http"))

	h := &handlers{
		cfg:       cfg,
		analyzer:  deps.Analyzer,
		decrypter: newLazyDecrypter(deps.Keys),
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics(deps.Metrics, logger, cfg.Deployment))

	r.Get("/", h.root)
	r.Get("/healthz", h.healthz)
	r.Get("/version", buildinfo.Handler(buildinfo.ServiceName))
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route(APIPrefix, func(api chi.Router) {
		api.Get("/public-key", h.publicKey)
		api.Post("/analyze-conversation", h.analyzeUpload)
		api.Post("/analyze-conversation-encrypted", h.analyzeEncrypted)
	})

	return r
}

// Run serves handler on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, cfg Config, handler http.Handler, logger logging.Logger) error {
	cfg = cfg.withDefaults()
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logging.F("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
