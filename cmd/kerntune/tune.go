package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/kerntune/internal/kernels"
	"github.com/samcharles93/kerntune/internal/results"
	"github.com/samcharles93/kerntune/internal/tunable"
)

func tuneCmd() *cli.Command {
	var (
		shapes []string
		seed   int64
	)

	return &cli.Command{
		Name:  "tune",
		Usage: "Tune the built-in GEMM op for one or more shapes and save the results",
		Flags: append(append(commonFlags(), tuningFlags()...),
			&cli.StringSliceFlag{
				Name:        "shape",
				Aliases:     []string{"s"},
				Usage:       "problem shape as MxKxN (repeatable)",
				Value:       []string{"256x256x256"},
				Destination: &shapes,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "seed for input data",
				Value:       1,
				Destination: &seed,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fileCfg := LoadConfig()
			applyCommonConfig(cmd, fileCfg)
			applyTuningConfig(cmd, fileCfg)

			log := newLogger(os.Stderr)
			cfg := tuningConfig()

			manager := results.NewManager(log)
			validator := results.NewValidator()
			if _, err := os.Stat(resultsPath); err == nil {
				if err := results.Load(resultsPath, manager, validator); err != nil {
					log.Warn("ignoring existing results file", "path", resultsPath, "err", err)
				} else {
					log.Info("loaded existing results", "path", resultsPath, "entries", manager.NumEntries())
				}
			}

			tctx := tunable.NewContext(cfg, manager, log)
			op := tunable.NewOp(tctx, "gemm_f32")
			if err := kernels.RegisterGemm(op); err != nil {
				return err
			}

			for _, shape := range shapes {
				m, k, n, err := parseShape(shape)
				if err != nil {
					return err
				}
				params, err := kernels.NewGemmParams(m, k, n)
				if err != nil {
					return err
				}
				params.Randomize(uint64(seed))
				err = op.Invoke(params)
				params.Release()
				if err != nil {
					return fmt.Errorf("tune %s: %w", shape, err)
				}
			}

			if err := os.MkdirAll(filepath.Dir(resultsPath), 0o755); err != nil {
				return err
			}
			if err := results.Save(resultsPath, manager, validator); err != nil {
				return err
			}
			log.Info("results saved", "path", resultsPath, "entries", manager.NumEntries())
			return nil
		},
	}
}

// tuningConfig assembles the engine config from flags, config file, and
// KERNTUNE_* environment overrides.
func tuningConfig() tunable.Config {
	cfg := tunable.DefaultConfig()
	cfg.NumericsCheck = numericsCheck
	cfg.ICacheFlush = icacheFlush
	cfg.ICacheFlushIters = int(icacheFlushIters)
	cfg.MaxWarmupIters = int(maxWarmupIters)
	cfg.MaxWarmupDuration = maxWarmupDuration
	cfg.MaxTuningIters = int(maxTuningIters)
	cfg.MaxTuningDuration = maxTuningDuration
	cfg.RotatingBufferSize = int(rotatingBufSize)
	return tunable.ConfigFromEnv(cfg)
}

// parseShape parses "MxKxN" into its three dimensions.
func parseShape(s string) (m, k, n int, err error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid shape %q (expected MxKxN)", s)
	}
	dims := make([]int, 3)
	for i, part := range parts {
		v, convErr := strconv.Atoi(strings.TrimSpace(part))
		if convErr != nil || v <= 0 {
			return 0, 0, 0, fmt.Errorf("invalid shape %q (expected MxKxN)", s)
		}
		dims[i] = v
	}
	return dims[0], dims[1], dims[2], nil
}
