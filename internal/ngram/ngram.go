// Package ngram holds the padding convention shared by model scoring and
// evaluation, plus n-gram extraction over padded sequences.
package ngram

const (
	StartSymbol = "<s>"
	EndSymbol   = "</s>"
)

// PadLeft returns seq prefixed with order-1 start symbols.
func PadLeft(seq []string, order int) []string {
	n := max(order-1, 0)
	out := make([]string, 0, n+len(seq))
	for range n {
		out = append(out, StartSymbol)
	}
	return append(out, seq...)
}

// PadBoth returns seq with order-1 start symbols on the left and one end
// symbol on the right.
func PadBoth(seq []string, order int) []string {
	return append(PadLeft(seq, order), EndSymbol)
}

// Windows returns every contiguous run of n items in seq. Each window is a
// copy and can be retained by the caller.
func Windows(seq []string, n int) [][]string {
	if n <= 0 || len(seq) < n {
		return nil
	}
	out := make([][]string, 0, len(seq)-n+1)
	for i := 0; i+n <= len(seq); i++ {
		w := make([]string, n)
		copy(w, seq[i:i+n])
		out = append(out, w)
	}
	return out
}

// NGrams pads seq on both sides and returns all n-grams of length order.
func NGrams(seq []string, order int) [][]string {
	return Windows(PadBoth(seq, order), order)
}

// Everygrams returns all n-grams of length 1 through order from the padded
// sequence, grouped by position.
func Everygrams(seq []string, order int) [][]string {
	padded := PadBoth(seq, order)
	var out [][]string
	for i := range padded {
		for n := 1; n <= order && i+n <= len(padded); n++ {
			g := make([]string, n)
			copy(g, padded[i:i+n])
			out = append(out, g)
		}
	}
	return out
}
