package lm

import (
	"fmt"
	"sort"
	"strings"
)

// keySep joins context symbols into a map key. Tokens never contain it
// because the dataset splits on whitespace and model files are validated.
const keySep = "\x1f"

// Counter holds n-gram counts for every order from 1 to the model order,
// indexed by context and then by the following word.
type Counter struct {
	order int
	// byOrder[k] holds the counts of n-grams with a context of length k.
	byOrder []map[string]map[string]int
	totals  []map[string]int
}

func NewCounter(order int) *Counter {
	c := &Counter{
		order:   order,
		byOrder: make([]map[string]map[string]int, max(order, 0)),
		totals:  make([]map[string]int, max(order, 0)),
	}
	for i := range c.byOrder {
		c.byOrder[i] = make(map[string]map[string]int)
		c.totals[i] = make(map[string]int)
	}
	return c
}

func (c *Counter) Order() int { return c.order }

// Add records n occurrences of ngram. The ngram length must be between 1
// and the counter order.
func (c *Counter) Add(ngram []string, n int) error {
	if len(ngram) == 0 || len(ngram) > c.order {
		return fmt.Errorf("ngram %v: length %d outside 1..%d", ngram, len(ngram), c.order)
	}
	if n <= 0 {
		return fmt.Errorf("ngram %v: count must be positive, got %d", ngram, n)
	}
	for _, tok := range ngram {
		if tok == "" || strings.Contains(tok, keySep) {
			return fmt.Errorf("ngram %v: invalid token %q", ngram, tok)
		}
	}

	ctx := ngram[:len(ngram)-1]
	word := ngram[len(ngram)-1]
	k := contextKey(ctx)
	level := c.byOrder[len(ctx)]
	words := level[k]
	if words == nil {
		words = make(map[string]int)
		level[k] = words
	}
	words[word] += n
	c.totals[len(ctx)][k] += n
	return nil
}

// Count returns how often word followed context.
func (c *Counter) Count(context []string, word string) int {
	if len(context) >= c.order {
		return 0
	}
	return c.byOrder[len(context)][contextKey(context)][word]
}

// ContextTotal returns the number of n-gram occurrences that start with context.
func (c *Counter) ContextTotal(context []string) int {
	if len(context) >= c.order {
		return 0
	}
	return c.totals[len(context)][contextKey(context)]
}

// Continuations returns the words observed after context, sorted.
func (c *Counter) Continuations(context []string) []string {
	if len(context) >= c.order {
		return nil
	}
	words := c.byOrder[len(context)][contextKey(context)]
	if len(words) == 0 {
		return nil
	}
	out := make([]string, 0, len(words))
	for w := range words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Unigrams returns every word seen at order 1, sorted.
func (c *Counter) Unigrams() []string { return c.Continuations(nil) }

// Distinct returns the number of distinct n-grams per order; index 0 holds unigrams.
func (c *Counter) Distinct() []int {
	out := make([]int, len(c.byOrder))
	for i, level := range c.byOrder {
		for _, words := range level {
			out[i] += len(words)
		}
	}
	return out
}

func contextKey(ctx []string) string {
	return strings.Join(ctx, keySep)
}
