package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lmeval/internal/dataset"
	"github.com/samcharles93/lmeval/internal/logger"
	"github.com/samcharles93/lmeval/internal/report"
)

func predictCmd() *cli.Command {
	var (
		modelPath string
		code      string
	)

	return &cli.Command{
		Name:  "predict",
		Usage: "Print next-token predictions for methods given inline or on stdin",
		Flags: []cli.Flag{
			modelFlag(&modelPath),
			&cli.StringFlag{
				Name:        "code",
				Aliases:     []string{"c"},
				Usage:       "whitespace separated tokens of one method (default: read methods from stdin)",
				Destination: &code,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyEvalConfig(cmd, cfg, &modelPath, nil, nil)

			if err := checkInputs("", modelPath); err != nil {
				return err
			}
			methods, err := predictInput(code, cmd.Root().Reader)
			if err != nil {
				return err
			}
			_, ev, err := loadEvaluator(log, modelPath, 1)
			if err != nil {
				return err
			}

			out := make([]report.Method, 0, len(methods))
			for i, tokens := range methods {
				if err := ctx.Err(); err != nil {
					return err
				}
				out = append(out, report.Method{
					Index:         fmt.Sprintf("ID%d", i+1),
					TokenizedCode: strings.Join(tokens, " "),
					ContextWindow: ev.Order(),
					Predictions:   report.FromPredictions(ev.PredictSequence(tokens)),
				})
			}
			return report.Encode(cmd.Root().Writer, out)
		},
	}
}

func predictInput(code string, stdin io.Reader) ([][]string, error) {
	if strings.TrimSpace(code) != "" {
		return [][]string{strings.Fields(code)}, nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	methods, err := dataset.Parse(stdin)
	if err != nil {
		return nil, err
	}
	if len(methods) == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	return methods, nil
}
