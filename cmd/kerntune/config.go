package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the kerntune configuration file
// (~/.config/kerntune/config.yaml). Fields are pointers so config-file
// defaults only apply when the corresponding CLI flag was not set.
type Config struct {
	ResultsPath string `yaml:"results_path"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`

	NumericsCheck       *bool  `yaml:"numerics_check"`
	ICacheFlush         *bool  `yaml:"icache_flush"`
	ICacheFlushIters    *int64 `yaml:"icache_flush_iters"`
	MaxWarmupIters      *int64 `yaml:"max_warmup_iters"`
	MaxWarmupDurationMS *int64 `yaml:"max_warmup_duration_ms"`
	MaxTuningIters      *int64 `yaml:"max_tuning_iters"`
	MaxTuningDurationMS *int64 `yaml:"max_tuning_duration_ms"`
	RotatingBufferSize  *int64 `yaml:"rotating_buffer_size"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kerntune", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't
// exist or fails to parse.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyCommonConfig applies config file defaults for flags that were not set
// on the command line.
func applyCommonConfig(c *cli.Command, cfg Config) {
	if cfg.ResultsPath != "" && !c.IsSet("results") {
		resultsPath = cfg.ResultsPath
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyTuningConfig applies config file defaults to the tuning knobs.
func applyTuningConfig(c *cli.Command, cfg Config) {
	if cfg.NumericsCheck != nil && !c.IsSet("numerics-check") {
		numericsCheck = *cfg.NumericsCheck
	}
	if cfg.ICacheFlush != nil && !c.IsSet("icache-flush") {
		icacheFlush = *cfg.ICacheFlush
	}
	if cfg.ICacheFlushIters != nil && !c.IsSet("icache-flush-iters") {
		icacheFlushIters = *cfg.ICacheFlushIters
	}
	if cfg.MaxWarmupIters != nil && !c.IsSet("max-warmup-iters") {
		maxWarmupIters = *cfg.MaxWarmupIters
	}
	if cfg.MaxWarmupDurationMS != nil && !c.IsSet("max-warmup-duration") {
		maxWarmupDuration = time.Duration(*cfg.MaxWarmupDurationMS) * time.Millisecond
	}
	if cfg.MaxTuningIters != nil && !c.IsSet("max-tuning-iters") {
		maxTuningIters = *cfg.MaxTuningIters
	}
	if cfg.MaxTuningDurationMS != nil && !c.IsSet("max-tuning-duration") {
		maxTuningDuration = time.Duration(*cfg.MaxTuningDurationMS) * time.Millisecond
	}
	if cfg.RotatingBufferSize != nil && !c.IsSet("rotating-buffer-size") {
		rotatingBufSize = *cfg.RotatingBufferSize
	}
}
