// Package lm implements a count-based n-gram language model: scoring with
// MLE or additive smoothing, greedy generation, and perplexity.
package lm

import (
	"errors"
	"fmt"
	"math"

	"github.com/samcharles93/lmeval/internal/ngram"
	"github.com/samcharles93/lmeval/internal/vocab"
)

var (
	ErrMissingModel    = errors.New("lm: model file not found")
	ErrInvalidModel    = errors.New("lm: invalid model")
	ErrPaddingMismatch = errors.New("lm: padding symbols do not match")
)

// Config carries the estimation parameters of a trained model.
type Config struct {
	Order     int
	Estimator Estimator
	// Gamma is the additive constant for Lidstone smoothing. Laplace forces 1.
	Gamma float64
}

// Model is a trained n-gram model. It is immutable once built and safe for
// concurrent use.
type Model struct {
	order     int
	estimator Estimator
	gamma     float64
	vocab     *vocab.Vocabulary
	counts    *Counter
}

// Info summarises a loaded model.
type Info struct {
	Order          int       `json:"order"`
	Estimator      Estimator `json:"estimator"`
	Gamma          float64   `json:"gamma,omitempty"`
	VocabularySize int       `json:"vocabularySize"`
	UnknownLabel   string    `json:"unknownLabel"`
	NGrams         []int     `json:"ngrams"`
}

func New(cfg Config, v *vocab.Vocabulary, counts *Counter) (*Model, error) {
	if cfg.Order <= 0 {
		return nil, fmt.Errorf("%w: order must be positive, got %d", ErrInvalidModel, cfg.Order)
	}
	if v == nil || counts == nil {
		return nil, fmt.Errorf("%w: vocabulary and counts are required", ErrInvalidModel)
	}
	if counts.Order() != cfg.Order {
		return nil, fmt.Errorf("%w: counter order %d does not match model order %d", ErrInvalidModel, counts.Order(), cfg.Order)
	}
	if cfg.Estimator == "" {
		cfg.Estimator = MLE
	}
	switch cfg.Estimator {
	case MLE:
		cfg.Gamma = 0
	case Laplace:
		cfg.Gamma = 1
	case Lidstone:
		if cfg.Gamma <= 0 {
			return nil, fmt.Errorf("%w: lidstone gamma must be positive, got %g", ErrInvalidModel, cfg.Gamma)
		}
	default:
		return nil, fmt.Errorf("%w: unknown estimator %q", ErrInvalidModel, cfg.Estimator)
	}
	return &Model{
		order:     cfg.Order,
		estimator: cfg.Estimator,
		gamma:     cfg.Gamma,
		vocab:     v,
		counts:    counts,
	}, nil
}

func (m *Model) Order() int { return m.order }

func (m *Model) Vocabulary() *vocab.Vocabulary { return m.vocab }

func (m *Model) Lookup(token string) string { return m.vocab.Lookup(token) }

// PaddingSymbols reports the start and end symbols the model was trained with.
func (m *Model) PaddingSymbols() (start, end string) {
	return ngram.StartSymbol, ngram.EndSymbol
}

// Score returns P(word | context). Both are mapped through the vocabulary and
// the context is truncated to its last order-1 symbols.
func (m *Model) Score(word string, context []string) float64 {
	return m.score(m.vocab.Lookup(word), m.truncate(m.vocab.LookupAll(context)))
}

func (m *Model) score(word string, context []string) float64 {
	return m.estimate(m.counts.Count(context, word), m.counts.ContextTotal(context))
}

// LogScore returns the base-2 log of Score.
func (m *Model) LogScore(word string, context []string) float64 {
	return math.Log2(m.Score(word, context))
}

// Generate greedily extends seed by n symbols. At each step the context is
// backed off, dropping its leftmost symbol, until it has observed
// continuations; the highest scoring continuation wins and ties go to the
// lexicographically smallest symbol.
func (m *Model) Generate(n int, seed []string) []string {
	if n <= 0 {
		return nil
	}
	text := m.vocab.LookupAll(seed)
	out := make([]string, 0, n)
	for range n {
		w := m.next(m.truncate(text))
		out = append(out, w)
		text = append(text, w)
	}
	return out
}

func (m *Model) next(context []string) string {
	candidates := m.counts.Continuations(context)
	for len(candidates) == 0 && len(context) > 0 {
		context = context[1:]
		candidates = m.counts.Continuations(context)
	}
	if len(candidates) == 0 {
		return m.vocab.UnknownLabel()
	}

	best, bestScore := candidates[0], math.Inf(-1)
	for _, w := range candidates {
		if s := m.score(w, context); s > bestScore {
			best, bestScore = w, s
		}
	}
	return best
}

// Entropy is the average negative base-2 log probability of the last symbol
// of each n-gram given the symbols before it.
func (m *Model) Entropy(ngrams [][]string) float64 {
	if len(ngrams) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, g := range ngrams {
		if len(g) == 0 {
			return math.Inf(1)
		}
		sum += m.LogScore(g[len(g)-1], g[:len(g)-1])
	}
	return -sum / float64(len(ngrams))
}

// Perplexity returns 2 raised to the entropy of ngrams. Any n-gram with zero
// probability makes the result +Inf.
func (m *Model) Perplexity(ngrams [][]string) float64 {
	return math.Pow(2, m.Entropy(ngrams))
}

func (m *Model) Info() Info {
	return Info{
		Order:          m.order,
		Estimator:      m.estimator,
		Gamma:          m.gamma,
		VocabularySize: m.vocab.Len(),
		UnknownLabel:   m.vocab.UnknownLabel(),
		NGrams:         m.counts.Distinct(),
	}
}

func (m *Model) truncate(context []string) []string {
	keep := m.order - 1
	if len(context) <= keep {
		return context
	}
	return context[len(context)-keep:]
}
