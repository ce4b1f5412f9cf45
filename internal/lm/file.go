package lm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"golang.org/x/sys/unix"

	"github.com/samcharles93/lmeval/internal/ngram"
	"github.com/samcharles93/lmeval/internal/vocab"
)

type fileModel struct {
	Order     int            `json:"order"`
	Estimator string         `json:"estimator"`
	Gamma     float64        `json:"gamma"`
	UnkLabel  string         `json:"unkLabel"`
	UnkCutoff int            `json:"unkCutoff"`
	Padding   *filePadding   `json:"padding,omitempty"`
	Vocab     map[string]int `json:"vocab"`
	NGrams    []fileNGram    `json:"ngrams"`
}

type filePadding struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type fileNGram struct {
	NGram []string `json:"ngram"`
	Count int      `json:"count"`
}

// Load reads a JSON model file. The file is memory-mapped when possible.
func Load(path string) (*Model, error) {
	data, release, err := readFile(path)
	if err != nil {
		return nil, err
	}
	defer release()

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a JSON model document.
func Parse(data []byte) (*Model, error) {
	var fm fileModel
	if err := json.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return fm.build()
}

func (fm *fileModel) build() (*Model, error) {
	if fm.Order <= 0 {
		return nil, fmt.Errorf("%w: order must be positive, got %d", ErrInvalidModel, fm.Order)
	}
	if fm.Padding != nil {
		if fm.Padding.Start != ngram.StartSymbol || fm.Padding.End != ngram.EndSymbol {
			return nil, fmt.Errorf("%w: model uses %q/%q, evaluator uses %q/%q",
				ErrPaddingMismatch, fm.Padding.Start, fm.Padding.End, ngram.StartSymbol, ngram.EndSymbol)
		}
	}
	est, err := ParseEstimator(fm.Estimator)
	if err != nil {
		return nil, err
	}

	v := vocab.New(fm.Vocab, vocab.WithUnknownLabel(fm.UnkLabel), vocab.WithCutoff(fm.UnkCutoff))
	counts := NewCounter(fm.Order)
	for i, g := range fm.NGrams {
		if err := counts.Add(g.NGram, g.Count); err != nil {
			return nil, fmt.Errorf("%w: ngrams[%d]: %v", ErrInvalidModel, i, err)
		}
		// Scoring maps tokens through the vocabulary, so a count keyed by an
		// unknown token could never be reached.
		for _, tok := range g.NGram {
			if !v.Contains(tok) {
				return nil, fmt.Errorf("%w: ngrams[%d]: token %q is not in the vocabulary", ErrInvalidModel, i, tok)
			}
		}
	}

	// Evaluation pads with these symbols; if the vocabulary maps them to the
	// unknown label every padded context misses its counts.
	if fm.Order > 1 && !v.Contains(ngram.StartSymbol) {
		return nil, fmt.Errorf("%w: vocabulary lacks start symbol %q", ErrPaddingMismatch, ngram.StartSymbol)
	}
	if !v.Contains(ngram.EndSymbol) {
		return nil, fmt.Errorf("%w: vocabulary lacks end symbol %q", ErrPaddingMismatch, ngram.EndSymbol)
	}
	return New(Config{Order: fm.Order, Estimator: est, Gamma: fm.Gamma}, v, counts)
}

// readFile maps path read-only, falling back to a plain read when mmap is
// unavailable. release must be called once the data is no longer used.
func readFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingModel, path)
		}
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size64 := stat.Size()
	if size64 <= 0 {
		return nil, nil, fmt.Errorf("%w: %s is empty", ErrInvalidModel, path)
	}
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, nil, fmt.Errorf("%w: %s is too large", ErrInvalidModel, path)
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return data, func() { _ = unix.Munmap(data) }, nil
	}

	data = make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, func() {}, nil
}
