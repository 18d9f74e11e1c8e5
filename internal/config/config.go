package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all cardperks configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Sources    SourcesConfig    `toml:"sources"`
	Rules      RulesConfig      `toml:"rules"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds file locations and elite-night preferences.
type GeneralConfig struct {
	DataDir         string `toml:"data_dir,omitempty"`
	BenefitsFile    string `toml:"benefits_file,omitempty"`
	Database        string `toml:"database,omitempty"`
	YearStartNights int    `toml:"year_start_nights"`
	EliteGoal       int    `toml:"elite_goal"`
	LogLevel        string `toml:"log_level,omitempty"`
}

// SourcesConfig names the CSV export folders, relative to the data dir.
type SourcesConfig struct {
	PersonalDir string `toml:"personal_dir"`
	BusinessDir string `toml:"business_dir"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DaemonConfig holds defaults for `cardperks daemon`.
type DaemonConfig struct {
	Addr        string `toml:"addr"`
	IntervalSec int    `toml:"interval_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DataDir:         ".",
			BenefitsFile:    "benefits_config.yaml",
			YearStartNights: 5,
			EliteGoal:       60,
		},
		Sources: SourcesConfig{
			PersonalDir: filepath.Join("transactions", "hyatt personal"),
			BusinessDir: filepath.Join("transactions", "hyatt business"),
		},
		Rules: RulesConfig{
			StatementCloseDay: 23,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			RefreshIntervalSec: 30,
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8797",
			IntervalSec: 30,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cardperks")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cardperks")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// StateDir returns the XDG-compliant directory for the state database.
func StateDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cardperks")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cardperks")
}

// DatabasePath returns the configured state database, or the default location.
func DatabasePath(cfg Config) string {
	if cfg.General.Database != "" {
		return cfg.General.Database
	}
	return filepath.Join(StateDir(), "cardperks.db")
}

// BenefitsPath resolves the benefits YAML relative to the data dir.
func BenefitsPath(cfg Config) string {
	return resolve(cfg.General.DataDir, cfg.General.BenefitsFile)
}

// SourceDir resolves a CSV folder relative to the data dir.
func SourceDir(cfg Config, dir string) string {
	return resolve(cfg.General.DataDir, dir)
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides, including those from a local .env file, are
// applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	_ = godotenv.Load()
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CARDPERKS_DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv("CARDPERKS_BENEFITS"); v != "" {
		cfg.General.BenefitsFile = v
	}
	if v := os.Getenv("CARDPERKS_DB"); v != "" {
		cfg.General.Database = v
	}
	if v := os.Getenv("CARDPERKS_LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
	if v := os.Getenv("CARDPERKS_ELITE_GOAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.General.EliteGoal = n
		}
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
