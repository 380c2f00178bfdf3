package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"treeval/meta"
)

type Config struct {
	LogLevel string  `yaml:"log_level"`
	Offload  Offload `yaml:"offload"`
	Serve    Serve   `yaml:"serve"`
	Bench    Bench   `yaml:"bench"`
}

type Offload struct {
	WeightScale  float64       `yaml:"weight_scale"`
	ConfigOnce   bool          `yaml:"config_once"`
	Remote       string        `yaml:"remote"` // Websocket URL of an accelerator, empty for the built-in model
	PollInterval time.Duration `yaml:"poll_interval"`
}

type Serve struct {
	Addr string `yaml:"addr"`
}

type Bench struct {
	Sizes   []int  `yaml:"sizes"`
	Repeats int    `yaml:"repeats"`
	Seed    uint64 `yaml:"seed"`
	OutDir  string `yaml:"out_dir"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Offload: Offload{
			WeightScale:  meta.WEIGHT_SCALE,
			PollInterval: meta.POLL_INTERVAL,
		},
		Serve: Serve{Addr: meta.LISTEN_ADDR},
		Bench: Bench{
			Sizes:   append([]int(nil), meta.BENCH_SIZES...),
			Repeats: meta.BENCH_REPEATS,
			Seed:    1,
			OutDir:  "experiments",
		},
	}
}

// Load overlays the YAML file at path on the defaults. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Offload.WeightScale <= 0 {
		return fmt.Errorf("offload.weight_scale must be positive, got %v", c.Offload.WeightScale)
	}
	if c.Offload.PollInterval <= 0 {
		return fmt.Errorf("offload.poll_interval must be positive, got %s", c.Offload.PollInterval)
	}
	for _, size := range c.Bench.Sizes {
		if size <= 0 || size > meta.MAX_NODES {
			return fmt.Errorf("bench.sizes: %d not in [1, %d]", size, meta.MAX_NODES)
		}
	}
	if c.Bench.Repeats <= 0 {
		return fmt.Errorf("bench.repeats must be positive, got %d", c.Bench.Repeats)
	}
	return nil
}
