package lm

import (
	"fmt"
	"strings"
)

// Estimator selects how counts are turned into probabilities.
type Estimator string

const (
	MLE      Estimator = "mle"
	Laplace  Estimator = "laplace"
	Lidstone Estimator = "lidstone"
)

func ParseEstimator(s string) (Estimator, error) {
	switch e := Estimator(strings.ToLower(strings.TrimSpace(s))); e {
	case MLE, Laplace, Lidstone:
		return e, nil
	case "":
		return MLE, nil
	default:
		return "", fmt.Errorf("%w: unknown estimator %q", ErrInvalidModel, s)
	}
}

// estimate returns P(word | context) from raw counts.
func (m *Model) estimate(count, total int) float64 {
	switch m.estimator {
	case Laplace, Lidstone:
		return (float64(count) + m.gamma) / (float64(total) + m.gamma*float64(m.vocab.Len()))
	default:
		if total == 0 {
			return 0
		}
		return float64(count) / float64(total)
	}
}
