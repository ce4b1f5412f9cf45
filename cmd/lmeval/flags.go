package main

import "github.com/urfave/cli/v3"

const defaultModelPath = "best_ngram_model.json"

var (
	configFile string
	cfg        Config

	logLevel  string
	logFormat string
	debug     bool
)

func modelFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "model",
		Aliases:     []string{"m"},
		Usage:       "path to the trained model (.json)",
		Value:       defaultModelPath,
		Destination: dest,
	}
}

func workersFlag(dest *int) cli.Flag {
	return &cli.IntFlag{
		Name:        "workers",
		Aliases:     []string{"w"},
		Usage:       "methods predicted concurrently (0 = GOMAXPROCS)",
		Destination: dest,
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}
