package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lmeval/internal/lm"
	"github.com/samcharles93/lmeval/internal/report"
)

func inspectCmd() *cli.Command {
	var (
		modelPath  string
		asJSON     bool
		showVocab  bool
		vocabLimit int
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Summarise a trained n-gram model",
		Flags: []cli.Flag{
			modelFlag(&modelPath),
			&cli.BoolFlag{Name: "json", Usage: "print the summary as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "vocab", Usage: "list vocabulary symbols", Destination: &showVocab},
			&cli.IntFlag{Name: "vocab-limit", Usage: "limit vocab listing (0 = no limit)", Value: 50, Destination: &vocabLimit},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyEvalConfig(cmd, cfg, &modelPath, nil, nil)
			if err := checkInputs("", modelPath); err != nil {
				return err
			}
			m, err := lm.Load(modelPath)
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			if asJSON {
				return report.Encode(w, m.Info())
			}
			printInfo(w, modelPath, m.Info())
			if showVocab {
				printVocab(w, m.Vocabulary().Symbols(), vocabLimit)
			}
			return nil
		},
	}
}

func printInfo(w io.Writer, path string, info lm.Info) {
	section(w, "Model")
	row(w, "path", path)
	row(w, "order", fmt.Sprintf("%d", info.Order))
	row(w, "estimator", string(info.Estimator))
	if info.Gamma != 0 {
		row(w, "gamma", fmt.Sprintf("%g", info.Gamma))
	}
	row(w, "vocabulary size", fmt.Sprintf("%d", info.VocabularySize))
	row(w, "unknown label", info.UnknownLabel)

	section(w, "N-grams")
	for i, n := range info.NGrams {
		row(w, fmt.Sprintf("%d-grams", i+1), fmt.Sprintf("%d", n))
	}
}

func printVocab(w io.Writer, symbols []string, limit int) {
	section(w, "Vocabulary")
	for i, s := range symbols {
		if limit > 0 && i >= limit {
			_, _ = fmt.Fprintf(w, "... %d more\n", len(symbols)-limit)
			return
		}
		_, _ = fmt.Fprintf(w, "%6d  %s\n", i, s)
	}
}

func section(w io.Writer, title string) {
	line := strings.Repeat("-", len(title)+8)
	_, _ = fmt.Fprintf(w, "\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	_, _ = fmt.Fprintf(w, "%-24s %s\n", label+":", value)
}
