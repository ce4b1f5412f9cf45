package vocab

import "sort"

// DefaultUnknownLabel is the symbol out-of-vocabulary tokens are mapped to.
const DefaultUnknownLabel = "<UNK>"

// Vocabulary is the set of tokens a model was trained on. Tokens seen fewer
// than cutoff times are treated as unknown.
type Vocabulary struct {
	counts   map[string]int
	unkLabel string
	cutoff   int
	size     int
}

type Option func(*Vocabulary)

// WithUnknownLabel overrides the unknown symbol.
func WithUnknownLabel(label string) Option {
	return func(v *Vocabulary) {
		if label != "" {
			v.unkLabel = label
		}
	}
}

// WithCutoff sets the minimum count for a token to be in the vocabulary.
func WithCutoff(n int) Option {
	return func(v *Vocabulary) {
		if n > 0 {
			v.cutoff = n
		}
	}
}

// New builds a vocabulary from token counts. The counts map is copied.
func New(counts map[string]int, opts ...Option) *Vocabulary {
	v := &Vocabulary{
		counts:   make(map[string]int, len(counts)),
		unkLabel: DefaultUnknownLabel,
		cutoff:   1,
	}
	for _, opt := range opts {
		opt(v)
	}
	for tok, n := range counts {
		v.counts[tok] = n
	}

	v.size = 1
	for tok, n := range v.counts {
		if tok != v.unkLabel && n >= v.cutoff {
			v.size++
		}
	}
	return v
}

func (v *Vocabulary) UnknownLabel() string { return v.unkLabel }

func (v *Vocabulary) Cutoff() int { return v.cutoff }

// Contains reports whether tok is a known symbol. The unknown label is always known.
func (v *Vocabulary) Contains(tok string) bool {
	if tok == v.unkLabel {
		return true
	}
	return v.counts[tok] >= v.cutoff
}

// Lookup returns tok if it is known and the unknown label otherwise.
func (v *Vocabulary) Lookup(tok string) string {
	if v.Contains(tok) {
		return tok
	}
	return v.unkLabel
}

// LookupAll maps every token of seq through Lookup. The result always has
// the same length as seq.
func (v *Vocabulary) LookupAll(seq []string) []string {
	out := make([]string, len(seq))
	for i, tok := range seq {
		out[i] = v.Lookup(tok)
	}
	return out
}

// Len returns the number of known symbols, including the unknown label.
func (v *Vocabulary) Len() int { return v.size }

// Symbols returns the known symbols in lexicographic order.
func (v *Vocabulary) Symbols() []string {
	out := make([]string, 0, v.size)
	out = append(out, v.unkLabel)
	for tok, n := range v.counts {
		if tok != v.unkLabel && n >= v.cutoff {
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}
