// Package config assembles the configuration of every image-embedder
// component into one App struct.
//
// Values are layered, later sources overriding earlier ones:
//
//  1. DefaultConfig() of every package
//  2. an optional YAML file
//  3. a .env file in the working directory, if present
//  4. environment variables with the EMBEDDER_ prefix
//
// CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Aleph-Alpha/image-embedder/v1/assetstore"
	"github.com/Aleph-Alpha/image-embedder/v1/logger"
	"github.com/Aleph-Alpha/image-embedder/v1/metrics"
	"github.com/Aleph-Alpha/image-embedder/v1/tracer"
	"github.com/Aleph-Alpha/image-embedder/v1/triton"
)

// EnvPrefix prefixes every environment variable, e.g. EMBEDDER_TRITON_URL.
const EnvPrefix = "EMBEDDER"

// App is the complete application configuration.
type App struct {
	Log     logger.Config     `yaml:"log" envconfig:"LOG"`
	Tracer  tracer.Config     `yaml:"tracer" envconfig:"TRACER"`
	Metrics metrics.Config    `yaml:"metrics" envconfig:"METRICS"`
	Assets  assetstore.Config `yaml:"assets" envconfig:"ASSETS"`
	Triton  triton.Config     `yaml:"triton" envconfig:"TRITON"`
}

// Default returns the defaults of every component.
func Default() App {
	return App{
		Log:     logger.DefaultConfig(),
		Tracer:  tracer.DefaultConfig(),
		Metrics: metrics.DefaultConfig(),
		Assets:  assetstore.DefaultConfig(),
		Triton:  triton.DefaultConfig(),
	}
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when path is empty), .env and the environment.
func Load(path string) (App, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return App{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return App{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// .env never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return App{}, fmt.Errorf("config: load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return App{}, fmt.Errorf("config: environment: %w", err)
	}
	return cfg, nil
}
