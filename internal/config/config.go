package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/pastryfall/internal/fall"
	"github.com/san-kum/pastryfall/internal/scene"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS  = 60
	DefaultSeed = 1
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Seed     int64        `yaml:"seed"`
	FPS      int          `yaml:"fps"`
	AssetDir string       `yaml:"asset_dir,omitempty"`
	Physics  fall.Params  `yaml:"physics"`
	Pastries []scene.Kind `yaml:"pastries"`
}

func DefaultConfig() *Config {
	return &Config{
		Seed:     DefaultSeed,
		FPS:      DefaultFPS,
		Physics:  fall.DefaultParams(),
		Pastries: scene.DefaultCatalog(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d: %w", c.FPS, ErrInvalid)
	}
	if len(c.Pastries) == 0 {
		return fmt.Errorf("no pastries configured: %w", ErrInvalid)
	}
	for i, k := range c.Pastries {
		if k.Name == "" {
			return fmt.Errorf("pastry %d has no name: %w", i, ErrInvalid)
		}
		if k.Count <= 0 {
			return fmt.Errorf("pastry %s: count must be positive, got %d: %w", k.Name, k.Count, ErrInvalid)
		}
		if k.Scale <= 0 {
			return fmt.Errorf("pastry %s: scale must be positive, got %g: %w", k.Name, k.Scale, ErrInvalid)
		}
	}
	return c.Physics.Validate()
}

// Clone returns a deep copy so presets can be tweaked without sharing state.
func (c *Config) Clone() *Config {
	out := *c
	out.Pastries = append([]scene.Kind(nil), c.Pastries...)
	return &out
}
