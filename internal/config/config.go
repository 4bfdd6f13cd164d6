// Package config loads the citysim configuration: a YAML file layered over
// built-in defaults, with a few environment overrides for deployment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load.
const (
	EnvConfigPath = "CITYSIM_CONFIG"
	EnvAdminKey   = "CITYSIM_ADMIN_KEY"
	EnvDBPath     = "CITYSIM_DB"
)

// Config is the complete runtime configuration.
type Config struct {
	Seed int64 `yaml:"seed"` // 0 picks a random seed at startup

	Sim       Sim       `yaml:"sim"`
	Disasters Disasters `yaml:"disasters"`
	Storage   Storage   `yaml:"storage"`
	API       API       `yaml:"api"`
	Log       Log       `yaml:"log"`

	FrameManifest string `yaml:"frame_manifest"` // Optional YAML frame-count manifest
}

// Sim controls the tick loop.
type Sim struct {
	Interval          time.Duration `yaml:"interval"`
	Speed             float64       `yaml:"speed"` // 0 starts paused
	Animations        bool          `yaml:"animations"`
	TrafficSweepEvery int           `yaml:"traffic_sweep_every"` // Ticks between zone traffic sweeps
	Width             int           `yaml:"width"`
	Height            int           `yaml:"height"`
}

// Disasters controls random disaster scheduling. Odds are one-in-N per
// tick; 0 disables that disaster.
type Disasters struct {
	Enabled     bool `yaml:"enabled"`
	TornadoOdds int  `yaml:"tornado_odds"`
	MonsterOdds int  `yaml:"monster_odds"`
	ShipOdds    int  `yaml:"ship_odds"`
}

// Storage locates the event journal and tick logs.
type Storage struct {
	DataDir string `yaml:"data_dir"`
	DBPath  string `yaml:"db_path"`
	TickLog bool   `yaml:"tick_log"`
}

// API configures the HTTP server.
type API struct {
	Port     int    `yaml:"port"`
	AdminKey string `yaml:"admin_key"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Seed: 42,
		Sim: Sim{
			Interval:          100 * time.Millisecond,
			Speed:             1,
			Animations:        true,
			TrafficSweepEvery: 16,
			Width:             120,
			Height:            100,
		},
		Disasters: Disasters{
			Enabled:     true,
			TornadoOdds: 20000,
			MonsterOdds: 30000,
			ShipOdds:    400,
		},
		Storage: Storage{
			DataDir: "data",
			DBPath:  "data/citysim.db",
			TickLog: true,
		},
		API: API{Port: 8080},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path falls back to $CITYSIM_CONFIG; if that is unset too, only
// defaults and overrides apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvAdminKey); v != "" {
		cfg.API.AdminKey = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Storage.DBPath = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Sim.Interval <= 0 {
		errs = append(errs, fmt.Errorf("sim.interval must be positive, got %s", c.Sim.Interval))
	}
	if c.Sim.Speed < 0 {
		errs = append(errs, fmt.Errorf("sim.speed must not be negative, got %g", c.Sim.Speed))
	}
	if c.Sim.TrafficSweepEvery < 0 {
		errs = append(errs, fmt.Errorf("sim.traffic_sweep_every must not be negative, got %d", c.Sim.TrafficSweepEvery))
	}
	if c.Sim.Width < 16 || c.Sim.Height < 16 {
		errs = append(errs, fmt.Errorf("sim map must be at least 16x16, got %dx%d", c.Sim.Width, c.Sim.Height))
	}
	if c.Disasters.TornadoOdds < 0 || c.Disasters.MonsterOdds < 0 || c.Disasters.ShipOdds < 0 {
		errs = append(errs, errors.New("disaster odds must not be negative"))
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port out of range: %d", c.API.Port))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel parses Level for the slog handler.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
