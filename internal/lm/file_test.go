package lm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testModelJSON = `{
  "order": 2,
  "estimator": "laplace",
  "unkLabel": "<UNK>",
  "unkCutoff": 1,
  "padding": {"start": "<s>", "end": "</s>"},
  "vocab": {"<s>": 2, "a": 2, "b": 1, "c": 1, "</s>": 2},
  "ngrams": [
    {"ngram": ["<s>"], "count": 2},
    {"ngram": ["a"], "count": 2},
    {"ngram": ["b"], "count": 1},
    {"ngram": ["c"], "count": 1},
    {"ngram": ["</s>"], "count": 2},
    {"ngram": ["<s>", "a"], "count": 2},
    {"ngram": ["a", "b"], "count": 1},
    {"ngram": ["a", "c"], "count": 1},
    {"ngram": ["b", "</s>"], "count": 1},
    {"ngram": ["c", "</s>"], "count": 1}
  ]
}`

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	m, err := Load(writeModel(t, testModelJSON))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Order() != 2 {
		t.Fatalf("Order() = %d, want 2", m.Order())
	}
	assertClose(t, "P(b|a)", m.Score("b", []string{"a"}), 2.0/8.0)
	if got := m.Lookup("zzz"); got != "<UNK>" {
		t.Fatalf("Lookup(zzz) = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrMissingModel) {
		t.Fatalf("Load() error = %v, want ErrMissingModel", err)
	}
}

func TestLoadRejectsInvalidModels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty file", "", ErrInvalidModel},
		{"malformed json", "{", ErrInvalidModel},
		{"zero order", `{"order": 0}`, ErrInvalidModel},
		{"bad estimator", `{"order": 2, "estimator": "witten-bell"}`, ErrInvalidModel},
		{"ngram too long", `{"order": 1, "ngrams": [{"ngram": ["a", "b"], "count": 1}]}`, ErrInvalidModel},
		{"padding mismatch", `{"order": 2, "padding": {"start": "<bos>", "end": "</s>"}}`, ErrPaddingMismatch},
		{"vocab lacks start symbol", `{"order": 2, "padding": {"start": "<s>", "end": "</s>"},
			"vocab": {"a": 1, "b": 1, "</s>": 1},
			"ngrams": [{"ngram": ["a", "b"], "count": 1}, {"ngram": ["b", "</s>"], "count": 1}]}`, ErrPaddingMismatch},
		{"vocab lacks end symbol", `{"order": 2,
			"vocab": {"<s>": 1, "a": 1, "b": 1},
			"ngrams": [{"ngram": ["<s>", "a"], "count": 1}, {"ngram": ["a", "b"], "count": 1}]}`, ErrPaddingMismatch},
		{"unigram vocab lacks end symbol", `{"order": 1, "vocab": {"a": 1}, "ngrams": [{"ngram": ["a"], "count": 1}]}`, ErrPaddingMismatch},
		{"ngram token outside vocab", `{"order": 2,
			"vocab": {"<s>": 1, "a": 1, "b": 1, "</s>": 1},
			"ngrams": [{"ngram": ["<s>", "a"], "count": 1}, {"ngram": ["a", "zzz"], "count": 1}]}`, ErrInvalidModel},
		{"padding symbols outside vocab", `{"order": 2, "padding": {"start": "<s>", "end": "</s>"},
			"vocab": {"a": 1, "b": 1},
			"ngrams": [{"ngram": ["<s>", "a"], "count": 1}, {"ngram": ["a", "b"], "count": 1}, {"ngram": ["b", "</s>"], "count": 1}]}`, ErrInvalidModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeModel(t, tt.body))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseDefaultsToMLE(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`{"order": 1, "vocab": {"a": 3, "</s>": 1}, "ngrams": [{"ngram": ["a"], "count": 3}]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.Info().Estimator != MLE {
		t.Fatalf("estimator = %q, want mle", m.Info().Estimator)
	}
	assertClose(t, "P(a)", m.Score("a", nil), 1)
}
