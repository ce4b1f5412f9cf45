package eval

// Model is the capability set the evaluator needs from a trained n-gram model.
// Implementations must be safe for concurrent reads.
type Model interface {
	// Order is the n-gram length the model was trained on.
	Order() int
	// Lookup maps a raw token to its vocabulary symbol, or to the unknown symbol.
	Lookup(token string) string
	// Score returns P(word | context).
	Score(word string, context []string) float64
	// Generate returns the n most likely symbols following seed.
	Generate(n int, seed []string) []string
	// Perplexity of the model over a flat sequence of n-grams.
	Perplexity(ngrams [][]string) float64
}

// Padder is implemented by models that report the padding symbols they were
// trained with.
type Padder interface {
	PaddingSymbols() (start, end string)
}

// Normalize maps every token of seq through the model vocabulary. The result
// has the same length as seq; unknown tokens become the unknown symbol.
func Normalize(m Model, seq []string) []string {
	out := make([]string, len(seq))
	for i, tok := range seq {
		out[i] = m.Lookup(tok)
	}
	return out
}
