package lm

import (
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/samcharles93/lmeval/internal/ngram"
	"github.com/samcharles93/lmeval/internal/vocab"
)

// countCorpus builds a model the way the upstream trainer does: every
// n-gram of order 1..order over both-padded sentences, and a vocabulary over
// the padded tokens.
func countCorpus(t *testing.T, cfg Config, sents [][]string) *Model {
	t.Helper()
	counts := NewCounter(cfg.Order)
	tokens := make(map[string]int)
	for _, s := range sents {
		for _, g := range ngram.Everygrams(s, cfg.Order) {
			if err := counts.Add(g, 1); err != nil {
				t.Fatalf("Add(%v): %v", g, err)
			}
		}
		for _, tok := range ngram.PadBoth(s, cfg.Order) {
			tokens[tok]++
		}
	}
	m, err := New(cfg, vocab.New(tokens), counts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

var bigramCorpus = [][]string{{"a", "b"}, {"a", "c"}}

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestScoreMLE(t *testing.T) {
	t.Parallel()

	m := countCorpus(t, Config{Order: 2, Estimator: MLE}, bigramCorpus)
	assertClose(t, "P(a|<s>)", m.Score("a", []string{"<s>"}), 1)
	assertClose(t, "P(b|a)", m.Score("b", []string{"a"}), 0.5)
	assertClose(t, "P(zzz|a)", m.Score("zzz", []string{"a"}), 0)
	assertClose(t, "P(a|zzz)", m.Score("a", []string{"zzz"}), 0)
	// Only the last order-1 symbols of the context matter.
	assertClose(t, "P(b|x a)", m.Score("b", []string{"x", "a"}), 0.5)
}

func TestScoreLaplace(t *testing.T) {
	t.Parallel()

	m := countCorpus(t, Config{Order: 2, Estimator: Laplace}, bigramCorpus)
	if m.Vocabulary().Len() != 6 {
		t.Fatalf("vocabulary size = %d, want 6", m.Vocabulary().Len())
	}
	assertClose(t, "P(b|a)", m.Score("b", []string{"a"}), 2.0/8.0)
	assertClose(t, "P(a|<s>)", m.Score("a", []string{"<s>"}), 3.0/8.0)
	assertClose(t, "P(zzz|zzz)", m.Score("zzz", []string{"zzz"}), 1.0/6.0)
}

func TestScoreLidstone(t *testing.T) {
	t.Parallel()

	m := countCorpus(t, Config{Order: 2, Estimator: Lidstone, Gamma: 0.5}, bigramCorpus)
	assertClose(t, "P(b|a)", m.Score("b", []string{"a"}), 1.5/5.0)
}

func TestGenerateGreedy(t *testing.T) {
	t.Parallel()

	m := countCorpus(t, Config{Order: 2, Estimator: MLE}, bigramCorpus)

	tests := []struct {
		name string
		n    int
		seed []string
		want []string
	}{
		{"single", 1, []string{"<s>"}, []string{"a"}},
		{"tie breaks lexicographically", 1, []string{"a"}, []string{"b"}},
		{"continues own output", 3, []string{"<s>"}, []string{"a", "b", "</s>"}},
		{"backs off unseen context", 1, []string{"zzz"}, []string{"</s>"}},
		{"zero", 0, []string{"<s>"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := m.Generate(tt.n, tt.seed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Generate(%d, %v) = %v, want %v", tt.n, tt.seed, got, tt.want)
			}
		})
	}
}

func TestGenerateDoesNotMutateSeed(t *testing.T) {
	t.Parallel()

	m := countCorpus(t, Config{Order: 3, Estimator: Laplace}, bigramCorpus)
	seed := []string{"<s>", "<s>"}
	_ = m.Generate(2, seed)
	if !reflect.DeepEqual(seed, []string{"<s>", "<s>"}) {
		t.Fatalf("seed mutated: %v", seed)
	}
}

func TestPerplexity(t *testing.T) {
	t.Parallel()

	m := countCorpus(t, Config{Order: 2, Estimator: MLE}, bigramCorpus)
	got := m.Perplexity(ngram.NGrams([]string{"a", "b"}, 2))
	assertClose(t, "Perplexity", got, math.Pow(2, 1.0/3.0))

	if pp := m.Perplexity(ngram.NGrams([]string{"a", "a"}, 2)); !math.IsInf(pp, 1) {
		t.Fatalf("Perplexity with unseen bigram = %v, want +Inf", pp)
	}
	if pp := m.Perplexity(nil); !math.IsInf(pp, 1) {
		t.Fatalf("Perplexity(nil) = %v, want +Inf", pp)
	}
}

func TestUnigramModel(t *testing.T) {
	t.Parallel()

	m := countCorpus(t, Config{Order: 1, Estimator: MLE}, [][]string{{"x", "x", "y"}})
	// x:2 y:1 </s>:1
	assertClose(t, "P(x)", m.Score("x", []string{"ignored"}), 0.5)
	if got := m.Generate(1, nil); !reflect.DeepEqual(got, []string{"x"}) {
		t.Fatalf("Generate() = %v, want [x]", got)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	v := vocab.New(map[string]int{"a": 1})
	tests := []struct {
		name string
		cfg  Config
		c    *Counter
	}{
		{"zero order", Config{Order: 0}, NewCounter(0)},
		{"order mismatch", Config{Order: 3}, NewCounter(2)},
		{"lidstone without gamma", Config{Order: 2, Estimator: Lidstone}, NewCounter(2)},
		{"unknown estimator", Config{Order: 2, Estimator: "kneser-ney"}, NewCounter(2)},
	}
	for _, tt := range tests {
		if _, err := New(tt.cfg, v, tt.c); !errors.Is(err, ErrInvalidModel) {
			t.Fatalf("%s: New() error = %v, want ErrInvalidModel", tt.name, err)
		}
	}
}

func TestCounterRejectsBadNGrams(t *testing.T) {
	t.Parallel()

	c := NewCounter(2)
	if err := c.Add([]string{"a", "b", "c"}, 1); err == nil {
		t.Fatal("expected error for ngram longer than order")
	}
	if err := c.Add(nil, 1); err == nil {
		t.Fatal("expected error for empty ngram")
	}
	if err := c.Add([]string{"a"}, 0); err == nil {
		t.Fatal("expected error for zero count")
	}
	if err := c.Add([]string{"a", ""}, 1); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestCounterContinuations(t *testing.T) {
	t.Parallel()

	c := NewCounter(2)
	for _, g := range [][]string{{"b"}, {"a"}, {"a", "c"}, {"a", "b"}} {
		if err := c.Add(g, 1); err != nil {
			t.Fatalf("Add(%v): %v", g, err)
		}
	}
	if got := c.Unigrams(); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("Unigrams() = %v", got)
	}
	if got := c.Continuations([]string{"a"}); !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("Continuations(a) = %v", got)
	}
	if got := c.ContextTotal([]string{"a"}); got != 2 {
		t.Fatalf("ContextTotal(a) = %d, want 2", got)
	}
	if got := c.Continuations([]string{"a", "b"}); got != nil {
		t.Fatalf("context at full order should have no continuations, got %v", got)
	}
}

func TestInfo(t *testing.T) {
	t.Parallel()

	m := countCorpus(t, Config{Order: 2, Estimator: Laplace}, bigramCorpus)
	info := m.Info()
	if info.Order != 2 || info.Estimator != Laplace || info.Gamma != 1 {
		t.Fatalf("unexpected info: %+v", info)
	}
	// unigrams: <s> a b c </s>; bigrams: <s>a ab ac b</s> c</s>
	if !reflect.DeepEqual(info.NGrams, []int{5, 5}) {
		t.Fatalf("NGrams = %v, want [5 5]", info.NGrams)
	}
}
