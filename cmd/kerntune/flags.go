package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/kerntune/internal/logger"
)

var (
	resultsPath string
	logLevel    string
	logFormat   string

	numericsCheck     bool
	icacheFlush       bool
	icacheFlushIters  int64
	maxWarmupIters    int64
	maxWarmupDuration time.Duration
	maxTuningIters    int64
	maxTuningDuration time.Duration
	rotatingBufSize   int64
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "results",
			Aliases:     []string{"r"},
			Usage:       "path to the tuning results file",
			Value:       defaultResultsPath(),
			Destination: &resultsPath,
		},
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
	}
}

func tuningFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "numerics-check",
			Usage:       "validate candidate outputs against the reference",
			Value:       true,
			Destination: &numericsCheck,
		},
		&cli.BoolFlag{
			Name:        "icache-flush",
			Usage:       "disturb caches between timed calls",
			Destination: &icacheFlush,
		},
		&cli.Int64Flag{
			Name:        "icache-flush-iters",
			Usage:       "cache disturbance repetitions before each search",
			Destination: &icacheFlushIters,
		},
		&cli.Int64Flag{
			Name:        "max-warmup-iters",
			Usage:       "max warmup iterations per candidate (-1 = unset)",
			Value:       -1,
			Destination: &maxWarmupIters,
		},
		&cli.DurationFlag{
			Name:        "max-warmup-duration",
			Usage:       "max warmup wall time per candidate (-1 = unset)",
			Value:       -1,
			Destination: &maxWarmupDuration,
		},
		&cli.Int64Flag{
			Name:        "max-tuning-iters",
			Usage:       "max timed iterations per candidate (0 = unset)",
			Destination: &maxTuningIters,
		},
		&cli.DurationFlag{
			Name:        "max-tuning-duration",
			Usage:       "max timed wall time per candidate (0 = unset)",
			Destination: &maxTuningDuration,
		},
		&cli.Int64Flag{
			Name:        "rotating-buffer-size",
			Usage:       "byte budget for rotated parameter copies (0 = disabled)",
			Destination: &rotatingBufSize,
		},
	}
}

func newLogger(w io.Writer) logger.Logger {
	level := logger.ParseLevel(logLevel)
	switch logFormat {
	case "json":
		return logger.JSON(w, level)
	case "text":
		return logger.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	default:
		return logger.Pretty(w, level)
	}
}

func defaultResultsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "kerntune_results.json"
	}
	return filepath.Join(dir, "kerntune", "results.json")
}
