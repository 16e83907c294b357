// Package config reads soxcorpus settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables understood by soxcorpus.
const (
	EnvSoxPath     = "SOX_PATH"
	EnvSoxTimeout  = "SOX_TIMEOUT"
	EnvMaxFailures = "SOXCORPUS_MAX_FAILURES"
	EnvFrameSec    = "SOXCORPUS_FRAME_SEC"
)

// Config holds defaults for command-line flags.
type Config struct {
	SoxPath     string
	Timeout     time.Duration // per sox process, 0 = none
	MaxFailures int           // consecutive sox failures tolerated with --keep-going
	FrameSec    float64
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SoxPath:     "sox",
		MaxFailures: 5,
		FrameSec:    1.0,
	}
}

// Load reads the given env files (".env" when none are named) into the process
// environment without overriding variables already set, then parses Config.
// A missing env file is not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv parses Config from the current environment on top of Default.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv(EnvSoxPath); v != "" {
		cfg.SoxPath = v
	}

	if v := os.Getenv(EnvSoxTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("%s: invalid duration %q", EnvSoxTimeout, v)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv(EnvMaxFailures); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("%s: invalid count %q", EnvMaxFailures, v)
		}
		cfg.MaxFailures = n
	}

	if v := os.Getenv(EnvFrameSec); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("%s: invalid frame length %q", EnvFrameSec, v)
		}
		cfg.FrameSec = f
	}

	return cfg, nil
}
