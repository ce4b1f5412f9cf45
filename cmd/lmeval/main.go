package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lmeval/internal/logger"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "lmeval",
		Usage: "Evaluate n-gram language models on tokenized source methods",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to config.yaml",
				Sources:     cli.EnvVars(envConfigPath),
				Destination: &configFile,
			},
		),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			var err error
			cfg, err = LoadConfig(configFile)
			if err != nil {
				return ctx, err
			}
			applyLoggingConfig(cmd, cfg)

			level := logLevel
			if debug {
				level = "debug"
			}
			log, err := logger.Configure(os.Stderr, logFormat, level)
			if err != nil {
				return ctx, err
			}
			return logger.WithContext(ctx, log), nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			evaluateCmd(),
			predictCmd(),
			inspectCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}
