package main

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wordrnn/internal/api"
	"github.com/samcharles93/wordrnn/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxSamples  int64
		maxLength   int64
		rateLimit   float64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Train on a corpus, then serve sampling over HTTP",
		Flags: slices.Concat(corpusFlags(), trainingFlags(), samplingFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-samples",
				Usage:       "largest sample count a request may ask for",
				Value:       int64(api.DefaultLimits.MaxSamples),
				Destination: &maxSamples,
			},
			&cli.Int64Flag{
				Name:        "max-length",
				Usage:       "longest sample a request may ask for",
				Value:       int64(api.DefaultLimits.MaxLength),
				Destination: &maxLength,
			},
			&cli.Float64Flag{
				Name:        "rate-limit",
				Usage:       "requests per second per client (0 disables)",
				Value:       10,
				Destination: &rateLimit,
			},
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, fileConfig, &addr)
			log := logger.FromContext(ctx)

			m, tr, err := train(ctx, log, cmd, 0)
			if err != nil {
				return err
			}
			server := api.NewServer(api.Config{
				Model:      m,
				Vocabulary: tr.Iterator.Vocabulary(),
				Rand:       tr.Config.Rand,
				Joiner:     joiner,
				Limits: api.Limits{
					DefaultSamples: int(samples),
					DefaultLength:  int(sampleLength),
					MaxSamples:     int(maxSamples),
					MaxLength:      int(maxLength),
				},
				Log: log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			if rateLimit > 0 {
				e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rateLimit)))
			}
			server.Register(e)
			log.Info("starting server", "address", addr)
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
