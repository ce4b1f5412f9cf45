package main

import (
	"context"
	"fmt"
	"math"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lmeval/internal/dataset"
	"github.com/samcharles93/lmeval/internal/logger"
	"github.com/samcharles93/lmeval/internal/report"
)

func evaluateCmd() *cli.Command {
	var (
		modelPath string
		outDir    string
		workers   int
	)

	return &cli.Command{
		Name:      "evaluate",
		Aliases:   []string{"eval"},
		Usage:     "Evaluate a trained n-gram model on a file of tokenized methods",
		ArgsUsage: "<input_file>",
		Flags: []cli.Flag{
			modelFlag(&modelPath),
			workersFlag(&workers),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "directory to write results-<name>.json into",
				Value:       ".",
				Destination: &outDir,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyEvalConfig(cmd, cfg, &modelPath, &workers, &outDir)

			input := cmd.Args().First()
			if input == "" {
				return fmt.Errorf("input file is required (usage: lmeval evaluate <input_file>)")
			}
			if err := checkInputs(input, modelPath); err != nil {
				return err
			}

			log.Info("loading data", "path", input)
			ds, err := dataset.Load(input)
			if err != nil {
				return err
			}

			_, ev, err := loadEvaluator(log, modelPath, workers)
			if err != nil {
				return err
			}

			log.Info("evaluating methods", "count", len(ds.Methods))
			res, err := ev.Evaluate(ctx, ds.Name, ds.Methods)
			if err != nil {
				return err
			}
			if math.IsInf(res.Perplexity, 0) || math.IsNaN(res.Perplexity) {
				log.Warn("perplexity is not finite; the model assigns zero probability to some n-gram", "perplexity", res.Perplexity)
			}

			path, err := report.WriteFile(outDir, report.FromResult(res))
			if err != nil {
				return err
			}
			log.Info("results saved", "path", path, "perplexity", res.Perplexity)
			return nil
		},
	}
}
