// Package analysis orchestrates one chat analysis: parse, metadata,
// enrichment and statistics, with caching, metrics and tracing around the
// stages.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/otherjamesbrown/moodsense/pkg/cache"
	"github.com/otherjamesbrown/moodsense/pkg/chat"
	"github.com/otherjamesbrown/moodsense/pkg/enrichment"
	apperrors "github.com/otherjamesbrown/moodsense/pkg/errors"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
	"github.com/otherjamesbrown/moodsense/pkg/observability"
	"github.com/otherjamesbrown/moodsense/pkg/stats"
	"github.com/otherjamesbrown/moodsense/pkg/textnorm"
)

// Stage names used in spans, metrics and errors.
const (
	StageParse    = "parse"
	StageMetadata = "metadata"
	StageEnrich   = "enrich"
	StageStats    = "stats"
)

// fingerprintVersion changes whenever the cached Report layout changes.
const fingerprintVersion = "report-v1"

// Report is the result of one analysis.
type Report struct {
	ID     string `json:"analysis_id" yaml:"analysis_id"`
	Cached bool   `json:"cached" yaml:"cached"`

	stats.Report `yaml:",inline"`

	ParseStats chat.ParseStats      `json:"parse_stats" yaml:"parse_stats"`
	Messages   []enrichment.Message `json:"messages_analyzed,omitempty" yaml:"messages_analyzed,omitempty"`
}

// Analyzer runs analyses. It is safe for concurrent use once built.
type Analyzer struct {
	scorer          enrichment.Scorer
	normalizer      textnorm.Normalizer
	logger          logging.Logger
	metrics         *observability.Metrics
	tracer          *observability.Tracer
	cache           cache.Cache
	parseOpts       chat.Options
	enrichOpts      enrichment.Options
	statsOpts       stats.Options
	includeMessages bool
	newID           func() string
}

// Option configures the analyzer.
type Option func(*Analyzer)

// WithScorer sets the enrichment scorer.
func WithScorer(s enrichment.Scorer) Option {
	return func(a *Analyzer) {
		a.scorer = s
	}
}

// WithNormalizer sets the word normalizer used for top-word rankings.
func WithNormalizer(n textnorm.Normalizer) Option {
	return func(a *Analyzer) {
		a.normalizer = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithMetrics records stage metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

// WithTracer sets the span tracer.
func WithTracer(t *observability.Tracer) Option {
	return func(a *Analyzer) {
		a.tracer = t
	}
}

// WithCache caches reports in c.
func WithCache(c cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithParseOptions overrides the parser filters.
func WithParseOptions(o chat.Options) Option {
	return func(a *Analyzer) {
		a.parseOpts = o
	}
}

// WithConcurrency bounds parallel scoring.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		a.enrichOpts.Concurrency = n
	}
}

// WithTopN sets the emoji and word ranking sizes. Non-positive values keep
// the defaults.
func WithTopN(emojis, words int) Option {
	return func(a *Analyzer) {
		if emojis > 0 {
			a.statsOpts.TopEmojis = emojis
		}
		if words > 0 {
			a.statsOpts.TopWords = words
		}
	}
}

// WithMessages includes the enriched messages in every report.
func WithMessages(include bool) Option {
	return func(a *Analyzer) {
		a.includeMessages = include
	}
}

// New builds an Analyzer with the lexicon scorer, the dictionary
// lemmatizer and no cache unless overridden.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		scorer:     enrichment.NewLexiconScorer(),
		logger:     logging.MustGlobal(),
		tracer:     observability.NewTracer(),
		cache:      cache.Nop{},
		parseOpts:  chat.DefaultOptions(),
		enrichOpts: enrichment.DefaultOptions(),
		statsOpts:  stats.DefaultOptions(),
		newID:      uuid.NewString,
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.normalizer != nil {
		a.statsOpts.Normalizer = a.normalizer
	}

	a.logger = a.logger.With(logging.F("component", "analyzer"))
	return a
}

// Analyze runs the full pipeline on the text of one export. Malformed input
// never fails; only cancellation and scorer failures return an error, always
// as an *apperrors.AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Report, error) {
	id := a.newID()
	ctx = logging.ContextWithAnalysisID(ctx, id)
	log := a.logger.WithContext(ctx)

	ctx, span := a.tracer.StartAnalysisSpan(ctx, id, len(text))
	start := time.Now()

	report, err := a.analyze(ctx, id, text, log)

	var code string
	if err != nil {
		code = string(err.Code)
	}
	observability.EndSpan(span, errOrNil(err), code)

	switch {
	case err != nil:
		a.recordAnalysis("error")
		log.Error("Analysis failed", logging.Err(err), logging.F("stage", err.Stage))
		return nil, err
	case report.Cached:
		a.recordAnalysis("cached")
	default:
		a.recordAnalysis("ok")
	}

	log.Info("Analysis completed",
		logging.F("messages", report.Metadata.TotalMessages),
		logging.F("users", report.Metadata.NumUsers()),
		logging.F("cached", report.Cached),
		logging.F("duration", time.Since(start)))
	return report, nil
}

func (a *Analyzer) analyze(ctx context.Context, id, text string, log logging.Logger) (*Report, *apperrors.AnalysisError) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.ClassifyError(err, StageParse)
	}

	key := cache.Key(text, a.fingerprint())
	if r := a.lookup(ctx, key, log); r != nil {
		r.ID = id
		r.Cached = true
		return r, nil
	}

	var parsed *chat.Result
	_ = a.stage(ctx, StageParse, func(context.Context) error {
		parsed = chat.Parse(text, a.parseOpts)
		return nil
	})
	a.recordParse(parsed)
	log.Debug("Parsed export",
		logging.F("lines", parsed.Stats.Lines),
		logging.F("messages", len(parsed.Messages)),
		logging.F("unresolved_timestamps", parsed.Stats.UnresolvedTimestamps))

	var meta chat.Metadata
	_ = a.stage(ctx, StageMetadata, func(context.Context) error {
		meta = chat.ExtractMetadata(parsed.Messages)
		return nil
	})

	var enriched []enrichment.Message
	err := a.stage(ctx, StageEnrich, func(sctx context.Context) error {
		var err error
		enriched, err = enrichment.Enrich(sctx, parsed.Messages, a.scorer, a.enrichOpts)
		return err
	})
	if err != nil {
		return nil, apperrors.ClassifyError(err, StageEnrich)
	}

	report := &Report{ID: id, ParseStats: parsed.Stats}
	_ = a.stage(ctx, StageStats, func(context.Context) error {
		report.Report = stats.Compute(enriched, meta, a.statsOpts)
		return nil
	})
	if a.includeMessages {
		report.Messages = enriched
	}

	a.store(ctx, key, report, log)
	return report, nil
}

// stage runs fn inside a span and records its latency.
func (a *Analyzer) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	sctx, span := a.tracer.StartStageSpan(ctx, name)
	start := time.Now()
	err := fn(sctx)
	if a.metrics != nil {
		a.metrics.RecordStage(name, time.Since(start).Seconds())
	}
	observability.EndSpan(span, err, string(apperrors.CodeOf(err)))
	return err
}

// fingerprint captures every option that changes the report.
func (a *Analyzer) fingerprint() string {
	scorer := fmt.Sprintf("%T", a.scorer)
	if n, ok := a.scorer.(interface{ Name() string }); ok {
		scorer = n.Name()
	}
	return fmt.Sprintf("%s|scorer=%s|norm=%T|skip_system=%t|keep_media=%t|top=%d/%d|neutral=%g|messages=%t",
		fingerprintVersion, scorer, a.statsOpts.Normalizer,
		a.parseOpts.SkipSystemMessages, a.parseOpts.PreserveMediaMessages,
		a.statsOpts.TopEmojis, a.statsOpts.TopWords,
		a.enrichOpts.NeutralThreshold, a.includeMessages)
}

func (a *Analyzer) lookup(ctx context.Context, key string, log logging.Logger) *Report {
	b, ok, err := a.cache.Get(ctx, key)
	switch {
	case err != nil:
		a.recordCache("error")
		log.Warn("Cache lookup failed", logging.Err(err))
		return nil
	case !ok:
		a.recordCache("miss")
		return nil
	}

	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		a.recordCache("error")
		log.Warn("Discarding undecodable cache entry", logging.Err(err))
		return nil
	}
	a.recordCache("hit")
	return &r
}

func (a *Analyzer) store(ctx context.Context, key string, r *Report, log logging.Logger) {
	b, err := json.Marshal(r)
	if err != nil {
		log.Warn("Encoding report for cache failed", logging.Err(err))
		return
	}
	if err := a.cache.Set(ctx, key, b); err != nil {
		log.Warn("Cache store failed", logging.Err(err))
	}
}

func (a *Analyzer) recordAnalysis(status string) {
	if a.metrics != nil {
		a.metrics.RecordAnalysis(status)
	}
}

func (a *Analyzer) recordCache(result string) {
	if a.metrics != nil {
		a.metrics.RecordCacheLookup(result)
	}
}

func (a *Analyzer) recordParse(r *chat.Result) {
	if a.metrics == nil {
		return
	}
	media := make(map[string]int)
	for _, m := range r.Messages {
		if m.IsMedia {
			media[string(m.MediaType)]++
		}
	}
	a.metrics.RecordParse(len(r.Messages), r.Stats.UnresolvedTimestamps, media)
}

// errOrNil keeps a nil *AnalysisError from becoming a non-nil error.
func errOrNil(err *apperrors.AnalysisError) error {
	if err == nil {
		return nil
	}
	return err
}
