// Package cmd provides CLI commands for the moodsense tool.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/otherjamesbrown/moodsense/config"
	"github.com/otherjamesbrown/moodsense/pkg/analysis"
	"github.com/otherjamesbrown/moodsense/pkg/cache"
	"github.com/otherjamesbrown/moodsense/pkg/envelope"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
	"github.com/otherjamesbrown/moodsense/pkg/observability"
)

// cachePingTimeout bounds the startup check of the report cache.
const cachePingTimeout = 3 * time.Second

// KeyStore persists a server private key.
type KeyStore interface {
	Store(privateKeyB64 string) error
	Description() string
}

// Deps holds the dependencies shared by the moodsense commands. The root
// command fills Config and Logger before any RunE runs.
type Deps struct {
	Config     *config.Config
	Logger     logging.Logger
	LoadConfig func() (*config.Config, error)

	// OpenCache returns the report cache for cfg and a func releasing it.
	OpenCache func(ctx context.Context, cfg *config.Config, logger logging.Logger) (cache.Cache, func() error)

	// Keyring receives keys from 'keygen --store-keyring'.
	Keyring KeyStore

	// IsTerminal reports whether a file descriptor is a terminal.
	IsTerminal func(fd int) bool
}

// DefaultDeps returns the default dependencies for production use.
func DefaultDeps() *Deps {
	return &Deps{
		LoadConfig: config.LoadConfig,
		OpenCache:  openCache,
		Keyring:    envelope.NewKeyringKeyProvider(),
		IsTerminal: term.IsTerminal,
	}
}

// config returns the loaded configuration, loading it on first use.
func (d *Deps) config() (*config.Config, error) {
	if d.Config != nil {
		return d.Config, nil
	}
	if d.LoadConfig == nil {
		d.LoadConfig = config.LoadConfig
	}
	cfg, err := d.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	d.Config = cfg
	return cfg, nil
}

func (d *Deps) logger() logging.Logger {
	if d.Logger == nil {
		return logging.MustGlobal()
	}
	return d.Logger
}

func (d *Deps) openCache(ctx context.Context, cfg *config.Config) (cache.Cache, func() error) {
	if d.OpenCache == nil {
		return openCache(ctx, cfg, d.logger())
	}
	return d.OpenCache(ctx, cfg, d.logger())
}

func (d *Deps) isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	isTerm := d.IsTerminal
	if isTerm == nil {
		isTerm = term.IsTerminal
	}
	return isTerm(int(f.Fd()))
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none
// are given) into the process environment. Variables already set win, and
// missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// openCache connects the Redis report cache when one is configured. An
// unreachable server degrades to no caching.
func openCache(ctx context.Context, cfg *config.Config, logger logging.Logger) (cache.Cache, func() error) {
	noClose := func() error { return nil }
	if !cfg.RedisEnabled() {
		return cache.Nop{}, noClose
	}

	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("Report cache unavailable, continuing without it",
			logging.F("addr", cfg.Redis.Addr), logging.Err(err))
		_ = rc.Close()
		return cache.Nop{}, noClose
	}

	logger.Debug("Report cache connected", logging.F("addr", cfg.Redis.Addr))
	return rc, rc.Close
}

// newAnalyzer builds an analyzer from cfg. metrics may be nil.
func newAnalyzer(cfg *config.Config, logger logging.Logger, c cache.Cache, metrics *observability.Metrics) *analysis.Analyzer {
	opts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithCache(c),
		analysis.WithParseOptions(cfg.ParseOptions()),
		analysis.WithConcurrency(cfg.Analysis.Concurrency),
		analysis.WithTopN(cfg.Analysis.TopEmojis, cfg.Analysis.TopWords),
		analysis.WithMessages(cfg.Analysis.IncludeMessages),
	}
	if metrics != nil {
		opts = append(opts, analysis.WithMetrics(metrics))
	}
	return analysis.New(opts...)
}

// readExport reads a chat export from path, or from in when path is "-".
func readExport(path string, in io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	return data, nil
}
