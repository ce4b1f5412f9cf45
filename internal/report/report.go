// Package report defines the persisted shape of an evaluation run and
// writes it as indented JSON.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/samcharles93/lmeval/internal/eval"
)

// Number is a float that encodes as null when it is not finite.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Number(math.Inf(1))
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number(f)
	return nil
}

type Report struct {
	TestSet    string   `json:"testSet"`
	Perplexity Number   `json:"perplexity"`
	Data       []Method `json:"data"`
}

type Method struct {
	Index         string       `json:"index"`
	TokenizedCode string       `json:"tokenizedCode"`
	ContextWindow int          `json:"contextWindow"`
	Predictions   []Prediction `json:"predictions"`
}

type Prediction struct {
	Context         []string `json:"context"`
	PredToken       string   `json:"predToken"`
	PredProbability float64  `json:"predProbability"`
	GroundTruth     string   `json:"groundTruth"`
}

func FromResult(res *eval.Result) Report {
	r := Report{
		TestSet:    res.TestSetName,
		Perplexity: Number(res.Perplexity),
		Data:       make([]Method, len(res.PerMethod)),
	}
	for i, m := range res.PerMethod {
		r.Data[i] = Method{
			Index:         m.ID,
			TokenizedCode: m.RenderedTokens,
			ContextWindow: m.ContextWindowSize,
			Predictions:   FromPredictions(m.Predictions),
		}
	}
	return r
}

func FromPredictions(preds []eval.Prediction) []Prediction {
	out := make([]Prediction, len(preds))
	for i, p := range preds {
		out[i] = Prediction{
			Context:         p.Context,
			PredToken:       p.PredictedToken,
			PredProbability: p.PredictedProbability,
			GroundTruth:     p.GroundTruthToken,
		}
	}
	return out
}

// Encode writes v as JSON indented by four spaces. Angle brackets in padding
// symbols are written as is.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func Write(w io.Writer, r Report) error {
	return Encode(w, r)
}

// OutputName is the file name results for testSet are saved under.
func OutputName(testSet string) string {
	return "results-" + strings.ReplaceAll(filepath.Base(testSet), ".txt", ".json")
}

// WriteFile writes r into dir under OutputName and returns the path.
func WriteFile(dir string, r Report) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, OutputName(r.TestSet))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
