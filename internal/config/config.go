package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort        = 8080
	defaultBackendURL  = "http://localhost:5000"
	defaultUploadDir   = "storage/uploads"
	defaultLogLevel    = "info"
	defaultTick        = 200 * time.Millisecond
	defaultStep        = 5
	defaultCap         = 95
	defaultHideDelay   = 500 * time.Millisecond
	defaultSchemeValue = SchemeAuto
)

// Scheme values accepted by system_scheme.
const (
	SchemeAuto  = "auto"
	SchemeLight = "light"
	SchemeDark  = "dark"
)

// Progress tunes the cosmetic progress simulation.
type Progress struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Step         int           `yaml:"step"`
	Cap          int           `yaml:"cap"`
	HideDelay    time.Duration `yaml:"hide_delay"`
}

// Config describes runtime configuration for the client.
type Config struct {
	Port            int           `yaml:"port"`
	BackendURL      string        `yaml:"backend_url"`
	PrefsPath       string        `yaml:"prefs_path"`
	UploadDir       string        `yaml:"upload_dir"`
	SystemScheme    string        `yaml:"system_scheme"`
	GTKSettingsPath string        `yaml:"gtk_settings_path"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	LogLevel        string        `yaml:"log_level"`
	Progress        Progress      `yaml:"progress"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Port:            defaultPort,
		BackendURL:      defaultBackendURL,
		PrefsPath:       defaultPrefsPath(),
		UploadDir:       defaultUploadDir,
		SystemScheme:    defaultSchemeValue,
		GTKSettingsPath: defaultGTKSettingsPath(),
		LogLevel:        defaultLogLevel,
		Progress: Progress{
			TickInterval: defaultTick,
			Step:         defaultStep,
			Cap:          defaultCap,
			HideDelay:    defaultHideDelay,
		},
	}
}

// Load reads YAML config from the provided path. If the file does not exist
// or is empty, defaults are returned with no error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("empty config path")
	}
	fileData, err := os.ReadFile(path) //nolint:gosec // config path is controlled by the operator
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(fileData) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(fileData, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the client cannot run with.
func (c Config) Validate() error {
	if c.Progress.Step < 1 {
		return fmt.Errorf("invalid progress.step: %d (must be >= 1)", c.Progress.Step)
	}
	if c.Progress.Cap < 1 || c.Progress.Cap > 99 {
		return fmt.Errorf("invalid progress.cap: %d (must be within 1..99)", c.Progress.Cap)
	}
	if c.Progress.TickInterval <= 0 {
		return fmt.Errorf("invalid progress.tick_interval: %s", c.Progress.TickInterval)
	}
	if c.Progress.HideDelay < 0 {
		return fmt.Errorf("invalid progress.hide_delay: %s", c.Progress.HideDelay)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid request_timeout: %s", c.RequestTimeout)
	}
	switch c.SystemScheme {
	case SchemeAuto, SchemeLight, SchemeDark:
	default:
		return fmt.Errorf("invalid system_scheme: %q", c.SystemScheme)
	}
	return nil
}

func normalize(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	cfg.BackendURL = strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/")
	if cfg.BackendURL == "" {
		cfg.BackendURL = defaultBackendURL
	}
	if cfg.PrefsPath == "" {
		cfg.PrefsPath = defaultPrefsPath()
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = defaultUploadDir
	}
	cfg.SystemScheme = strings.ToLower(strings.TrimSpace(cfg.SystemScheme))
	if cfg.SystemScheme == "" {
		cfg.SystemScheme = defaultSchemeValue
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "colorizer", "prefs.json")
}

func defaultGTKSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gtk-3.0", "settings.ini")
}
