package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/samcharles93/lmeval/internal/dataset"
	"github.com/samcharles93/lmeval/internal/eval"
	"github.com/samcharles93/lmeval/internal/lm"
	"github.com/samcharles93/lmeval/internal/logger"
)

// checkInputs fails before any loading when a referenced file is absent.
func checkInputs(inputPath, modelPath string) error {
	if inputPath != "" && !fileExists(inputPath) {
		return fmt.Errorf("%w: file '%s' not found", dataset.ErrMissingInput, inputPath)
	}
	if !fileExists(modelPath) {
		return fmt.Errorf("%w: model file '%s' not found", lm.ErrMissingModel, modelPath)
	}
	return nil
}

func loadEvaluator(log logger.Logger, modelPath string, workers int) (*lm.Model, *eval.Evaluator, error) {
	log.Info("loading model", "path", modelPath)
	start := time.Now()
	m, err := lm.Load(modelPath)
	if err != nil {
		return nil, nil, err
	}
	info := m.Info()
	log.Debug("model loaded",
		"order", info.Order,
		"estimator", info.Estimator,
		"vocab", info.VocabularySize,
		"elapsed", time.Since(start),
	)

	ev, err := eval.New(m, eval.WithWorkers(workers), eval.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	return m, ev, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	if err != nil {
		return !errors.Is(err, os.ErrNotExist)
	}
	return !st.IsDir()
}
