package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fitdecode/internal/httpapi"
	"github.com/samcharles93/fitdecode/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr              string
		readTimeout       time.Duration
		maxUploadMB       int
		requestsPerSecond float64
		burst             int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the FIT decode HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8090",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.IntFlag{
				Name:        "max-upload-mb",
				Usage:       "read at most this many megabytes of an upload; the rest is not decoded (0 = unlimited)",
				Value:       128,
				Destination: &maxUploadMB,
			},
			&cli.Float64Flag{
				Name:        "rate-limit",
				Usage:       "max decode requests per second per remote address (0 disables)",
				Value:       5,
				Destination: &requestsPerSecond,
			},
			&cli.IntFlag{
				Name:        "rate-burst",
				Usage:       "burst size for the per-address rate limiter",
				Value:       10,
				Destination: &burst,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyServeConfig(cmd, cfg, &addr)

			log := logger.FromContext(ctx)

			server := httpapi.NewServer(httpapi.Config{
				MaxUploadBytes:    int64(maxUploadMB) * 1024 * 1024,
				RequestsPerSecond: requestsPerSecond,
				Burst:             burst,
			})
			e := echo.New()
			server.Register(e)

			log.Info("starting server", "address", addr)
			sc := httpapi.StartConfig(addr, readTimeout)
			return sc.Start(ctx, e)
		},
	}
}
