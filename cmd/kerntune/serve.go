package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/kerntune/internal/api"
	"github.com/samcharles93/kerntune/internal/results"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve tuning results over HTTP",
		Flags: append(commonFlags(),
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
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fileCfg := LoadConfig()
			applyCommonConfig(cmd, fileCfg)
			if fileCfg.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = fileCfg.ServerAddress
			}

			log := newLogger(os.Stderr)

			manager := results.NewManager(log)
			validator := results.NewValidator()
			if err := results.Load(resultsPath, manager, validator); err != nil {
				log.Warn("serving empty result set", "path", resultsPath, "err", err)
			}

			server := api.NewServer(manager, validator)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "entries", manager.NumEntries())
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
