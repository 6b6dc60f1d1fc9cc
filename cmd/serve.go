package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/moodsense/pkg/envelope"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
	"github.com/otherjamesbrown/moodsense/pkg/observability"
	"github.com/otherjamesbrown/moodsense/pkg/server"
)

// NewServeCommand creates the 'serve' command.
func NewServeCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var addr, keySource string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP server",
		Long: `Serve the analysis API over HTTP until interrupted.

Routes:
  GET  /                                     service banner
  GET  /healthz                              liveness
  GET  /version                              build information
  GET  /metrics                              Prometheus metrics
  GET  /api/v1/public-key                    X25519 public key for encrypted uploads
  POST /api/v1/analyze-conversation          multipart upload, field "file" (.txt)
  POST /api/v1/analyze-conversation-encrypted JSON envelope {client_public_key, nonce, ciphertext}

Every response carries X-Response-Time, X-Memory-Usage and X-Request-Cost-EUR
headers. The private key is read from SERVER_PRIVATE_KEY or the system
keyring (see 'moodsense keygen'); without one the encrypted route answers 503.
The PORT environment variable sets the listen port.`,
		Example: `  # Listen on the default address
  moodsense serve

  # Listen on localhost only, key from the keyring
  moodsense serve --addr 127.0.0.1:9000 --key-source keyring`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if keySource != "" {
				cfg.Server.KeySource = keySource
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := deps.logger().With(logging.F("component", "serve"))

			keys, err := envelope.ProviderFor(cfg.Server.KeySource)
			if err != nil {
				return err
			}
			if d, err := envelope.LoadDecrypter(keys); err != nil {
				logger.Warn("Server private key unavailable, encrypted uploads disabled",
					logging.F("key_source", keys.Description()), logging.Err(err))
			} else {
				logger.Info("Server private key loaded",
					logging.F("key_source", keys.Description()),
					logging.F("public_key", d.PublicKeyB64()))
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics := observability.NewMetrics(reg)

			c, closeCache := deps.openCache(ctx, cfg)
			defer func() { _ = closeCache() }()

			scfg := server.Config{
				Addr:           cfg.Server.Addr,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
				RequestTimeout: cfg.Server.RequestTimeout,
				Deployment:     cfg.Deployment(),
			}
			handler := server.NewRouter(server.Deps{
				Analyzer: newAnalyzer(cfg, deps.logger(), c, metrics),
				Keys:     keys,
				Logger:   deps.logger(),
				Metrics:  metrics,
				Gatherer: reg,
			}, scfg)

			return server.Run(ctx, scfg, handler, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, PORT or :8080)")
	cmd.Flags().StringVar(&keySource, "key-source", "", "Private key source: auto, env, keyring")

	return cmd
}
