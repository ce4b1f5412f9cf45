package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/samcharles93/lmeval/internal/api"
	"github.com/samcharles93/lmeval/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		modelPath   string
		workers     int
		addr        string
		readTimeout time.Duration
		rateLimit   float64
		rateBurst   int
		maxStored   int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve evaluation and prediction over HTTP",
		Flags: []cli.Flag{
			modelFlag(&modelPath),
			workersFlag(&workers),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Float64Flag{
				Name:        "rate",
				Usage:       "requests per second (0 = unlimited)",
				Value:       20,
				Destination: &rateLimit,
			},
			&cli.IntFlag{
				Name:        "burst",
				Usage:       "request burst size",
				Value:       40,
				Destination: &rateBurst,
			},
			&cli.IntFlag{
				Name:        "max-stored",
				Usage:       "evaluations kept in memory (0 = unbounded)",
				Value:       100,
				Destination: &maxStored,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyEvalConfig(cmd, cfg, &modelPath, &workers, nil)
			applyServeConfig(cmd, cfg, &addr, &rateLimit, &rateBurst)

			if err := checkInputs("", modelPath); err != nil {
				return err
			}
			m, ev, err := loadEvaluator(log, modelPath, workers)
			if err != nil {
				return err
			}

			server := api.NewServer(ev, m.Info(), api.NewEvaluationStore(maxStored), log.With("component", "api"))
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			e.Use(api.RateLimit(rate.Limit(rateLimit), rateBurst))
			server.Register(e)

			log.Info("starting server", "address", addr, "order", ev.Order())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
