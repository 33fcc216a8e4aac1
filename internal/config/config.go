// Package config loads the signspell YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Speller  SpellerConfig  `yaml:"speller"`
	Store    StoreConfig    `yaml:"store"`
	Plugins  PluginsConfig  `yaml:"plugins"`
	Tray     TrayConfig     `yaml:"tray"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	StaticDir  string `yaml:"static_dir"`
	Metrics    bool   `yaml:"metrics"`
}

// CameraConfig configures frame capture. A negative DeviceID disables the
// camera; frames then only arrive through the API.
type CameraConfig struct {
	DeviceID    int           `yaml:"device_id"`
	IdleFPS     int           `yaml:"idle_fps"`
	ActiveFPS   int           `yaml:"active_fps"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DetectorConfig configures the landmark detector subprocess.
type DetectorConfig struct {
	MaxHands              int     `yaml:"max_hands"`
	MinConfidence         float64 `yaml:"min_confidence"`
	MinTrackingConfidence float64 `yaml:"min_tracking_confidence"`
}

// SpellerConfig configures hold confirmation.
type SpellerConfig struct {
	HoldThreshold time.Duration `yaml:"hold_threshold"`
}

// StoreConfig configures sample storage.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// PluginsConfig configures letter sinks.
type PluginsConfig struct {
	Dir     string        `yaml:"dir"`
	Sinks   []string      `yaml:"sinks"`
	Timeout time.Duration `yaml:"timeout"`
}

// TrayConfig configures the system tray icon.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".signspell")

	return &Config{
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8080",
			StaticDir:  "web",
			Metrics:    true,
		},
		Camera: CameraConfig{
			DeviceID:    0,
			IdleFPS:     5,
			ActiveFPS:   15,
			IdleTimeout: 2 * time.Second,
		},
		Detector: DetectorConfig{
			MaxHands:              1,
			MinConfidence:         0.5,
			MinTrackingConfidence: 0.5,
		},
		Speller: SpellerConfig{
			HoldThreshold: 500 * time.Millisecond,
		},
		Store: StoreConfig{
			Path: filepath.Join(dataDir, "signspell.db"),
		},
		Plugins: PluginsConfig{
			Dir:     filepath.Join(dataDir, "plugins"),
			Timeout: 2 * time.Second,
		},
		Tray: TrayConfig{
			Enabled: true,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates the
// result. Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}

	if cfg.Camera.IdleFPS <= 0 {
		errs = append(errs, fmt.Errorf("camera.idle_fps %d must be positive", cfg.Camera.IdleFPS))
	}
	if cfg.Camera.ActiveFPS < cfg.Camera.IdleFPS {
		errs = append(errs, fmt.Errorf("camera.active_fps %d must be at least camera.idle_fps %d", cfg.Camera.ActiveFPS, cfg.Camera.IdleFPS))
	}
	if cfg.Camera.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("camera.idle_timeout %s must not be negative", cfg.Camera.IdleTimeout))
	}

	if cfg.Detector.MaxHands < 1 {
		errs = append(errs, fmt.Errorf("detector.max_hands %d must be at least 1", cfg.Detector.MaxHands))
	}
	if c := cfg.Detector.MinConfidence; c < 0 || c > 1 {
		errs = append(errs, fmt.Errorf("detector.min_confidence %.2f is out of range [0, 1]", c))
	}
	if c := cfg.Detector.MinTrackingConfidence; c < 0 || c > 1 {
		errs = append(errs, fmt.Errorf("detector.min_tracking_confidence %.2f is out of range [0, 1]", c))
	}

	if cfg.Speller.HoldThreshold <= 0 {
		errs = append(errs, fmt.Errorf("speller.hold_threshold %s must be positive", cfg.Speller.HoldThreshold))
	}

	if cfg.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}

	if len(cfg.Plugins.Sinks) > 0 && cfg.Plugins.Dir == "" {
		errs = append(errs, errors.New("plugins.dir is required when plugins.sinks is set"))
	}
	if cfg.Plugins.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("plugins.timeout %s must be positive", cfg.Plugins.Timeout))
	}
	seen := make(map[string]int, len(cfg.Plugins.Sinks))
	for i, name := range cfg.Plugins.Sinks {
		if name == "" {
			errs = append(errs, fmt.Errorf("plugins.sinks[%d] is empty", i))
			continue
		}
		if prev, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("plugins.sinks[%d] %q is a duplicate of plugins.sinks[%d]", i, name, prev))
		}
		seen[name] = i
	}

	return errors.Join(errs...)
}
