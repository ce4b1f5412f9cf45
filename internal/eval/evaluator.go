// Package eval applies a fixed-order n-gram model to token sequences:
// corpus perplexity and per-position next-token predictions.
package eval

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/lmeval/internal/logger"
	"github.com/samcharles93/lmeval/internal/ngram"
)

var (
	ErrDegenerateOrder = errors.New("eval: model order must be positive")
	ErrPaddingMismatch = errors.New("eval: model padding does not match evaluator padding")
	ErrEmptyCorpus     = errors.New("eval: no sequences to evaluate")
)

const (
	ProbabilityPlaces = 4
	PerplexityPlaces  = 2
)

// Prediction is the model's greedy guess at one position of a sequence.
type Prediction struct {
	Context              []string
	PredictedToken       string
	PredictedProbability float64
	GroundTruthToken     string
}

type MethodResult struct {
	ID                string
	RenderedTokens    string
	ContextWindowSize int
	Predictions       []Prediction
}

type Result struct {
	TestSetName string
	Perplexity  float64
	PerMethod   []MethodResult
}

type Evaluator struct {
	model   Model
	order   int
	workers int
	log     logger.Logger
}

type Option func(*Evaluator)

// WithWorkers bounds how many sequences Evaluate predicts concurrently.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.log = l
		}
	}
}

// New checks the model preconditions and returns an Evaluator bound to it.
func New(m Model, opts ...Option) (*Evaluator, error) {
	if m == nil {
		return nil, errors.New("eval: model is required")
	}
	order := m.Order()
	if order <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateOrder, order)
	}
	if p, ok := m.(Padder); ok {
		start, end := p.PaddingSymbols()
		if start != ngram.StartSymbol || end != ngram.EndSymbol {
			return nil, fmt.Errorf("%w: model %q/%q, evaluator %q/%q",
				ErrPaddingMismatch, start, end, ngram.StartSymbol, ngram.EndSymbol)
		}
	}

	e := &Evaluator{
		model:   m,
		order:   order,
		workers: runtime.GOMAXPROCS(0),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Evaluator) Order() int { return e.order }

// CorpusPerplexity computes the model perplexity over the n-grams of every
// sequence, concatenated in input order.
func (e *Evaluator) CorpusPerplexity(seqs [][]string) float64 {
	var all [][]string
	for _, seq := range seqs {
		all = append(all, ngram.NGrams(Normalize(e.model, seq), e.order)...)
	}
	return e.model.Perplexity(all)
}

// PredictSequence returns one prediction per token of seq. Contexts are
// drawn from the sequence padded on the left with order-1 start symbols.
func (e *Evaluator) PredictSequence(seq []string) []Prediction {
	padded := ngram.PadLeft(Normalize(e.model, seq), e.order)
	width := e.order - 1

	out := make([]Prediction, 0, len(seq))
	for i := width; i < len(padded); i++ {
		ctx := make([]string, width)
		copy(ctx, padded[i-width:i])

		var pred string
		if gen := e.model.Generate(1, ctx); len(gen) > 0 {
			pred = gen[0]
		}
		out = append(out, Prediction{
			Context:              ctx,
			PredictedToken:       pred,
			PredictedProbability: Round(e.model.Score(pred, ctx), ProbabilityPlaces),
			GroundTruthToken:     padded[i],
		})
	}
	return out
}

// Evaluate computes the corpus perplexity and the predictions for every
// sequence. Sequences are predicted concurrently; results keep input order.
// Cancellation is observed between sequences.
func (e *Evaluator) Evaluate(ctx context.Context, name string, seqs [][]string) (*Result, error) {
	if len(seqs) == 0 {
		return nil, ErrEmptyCorpus
	}
	log := e.log.With("test_set", name, "order", e.order)

	start := time.Now()
	perplexity := Round(e.CorpusPerplexity(seqs), PerplexityPlaces)
	log.Debug("computed corpus perplexity", "perplexity", perplexity, "elapsed", time.Since(start))

	methods := make([]MethodResult, len(seqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, seq := range seqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			methods[i] = MethodResult{
				ID:                fmt.Sprintf("ID%d", i+1),
				RenderedTokens:    strings.Join(seq, " "),
				ContextWindowSize: e.order,
				Predictions:       e.PredictSequence(seq),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", name, err)
	}

	log.Info("evaluation complete", "methods", len(methods), "perplexity", perplexity, "elapsed", time.Since(start))
	return &Result{
		TestSetName: name,
		Perplexity:  perplexity,
		PerMethod:   methods,
	}, nil
}
