package enrichment

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/otherjamesbrown/moodsense/pkg/chat"
)

// DefaultConcurrency is the number of bodies scored in parallel.
const DefaultConcurrency = 4

// ErrScoreCount is returned when a scorer yields a different number of
// results than it was given bodies.
var ErrScoreCount = errors.New("score count does not match scored messages")

// Scorer assigns emotion and sentiment scores to one body of text.
// Implementations must be safe for concurrent use.
type Scorer interface {
	Score(ctx context.Context, text string) (Scores, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, text string) (Scores, error)

// Score implements Scorer.
func (f ScorerFunc) Score(ctx context.Context, text string) (Scores, error) {
	return f(ctx, text)
}

// Options tune Enrich.
type Options struct {
	Concurrency      int
	NeutralThreshold float64
}

// DefaultOptions returns the default enrichment options.
func DefaultOptions() Options {
	return Options{
		Concurrency:      DefaultConcurrency,
		NeutralThreshold: DefaultNeutralThreshold,
	}
}

// Enrich scores the body of every non-media message and returns all
// messages, in input order, with their scores attached. The first scorer
// error cancels the remaining work and is returned.
func Enrich(ctx context.Context, msgs []chat.Message, scorer Scorer, opts Options) ([]Message, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	bodies := ScorableBodies(msgs)
	results := make([]Scores, len(bodies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, body := range bodies {
		i, body := i, body
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := scorer.Score(gctx, body)
			if err != nil {
				return fmt.Errorf("score message %d: %w", i, err)
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Zip(msgs, results, opts.NeutralThreshold)
}

// ScorableBodies returns the bodies of the non-media messages, in order.
func ScorableBodies(msgs []chat.Message) []string {
	bodies := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if !msg.IsMedia {
			bodies = append(bodies, msg.Body)
		}
	}
	return bodies
}

// Zip attaches results to the non-media messages by position. Media
// messages are passed through without scores.
func Zip(msgs []chat.Message, results []Scores, neutralThreshold float64) ([]Message, error) {
	out := make([]Message, len(msgs))
	next := 0
	for i, msg := range msgs {
		out[i] = Message{Message: msg}
		if msg.IsMedia {
			continue
		}
		if next >= len(results) {
			return nil, fmt.Errorf("%w: got %d", ErrScoreCount, len(results))
		}
		s := results[next]
		next++

		sentiment := s.Sentiment
		out[i].Emotions = s.Emotions
		if out[i].Emotions == nil {
			out[i].Emotions = make(map[Label]float64)
		}
		out[i].DominantEmotion = DominantEmotion(out[i].Emotions, neutralThreshold)
		out[i].Sentiment = &sentiment
	}
	if next != len(results) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrScoreCount, len(results), next)
	}
	return out, nil
}
