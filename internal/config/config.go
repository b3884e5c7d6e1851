package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	DB          DBConfig          `yaml:"db"`
	Log         LogConfig         `yaml:"log"`
	Timer       TimerConfig       `yaml:"timer"`
	Sync        SyncConfig        `yaml:"sync"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Auth        AuthConfig        `yaml:"auth"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TimerConfig struct {
	DefaultMinutes int  `yaml:"default_minutes"`
	Sound          bool `yaml:"sound"`
}

type SyncConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

type LeaderboardConfig struct {
	WeekStart string `yaml:"week_start"`
	Roster    string `yaml:"roster"`
}

type AuthConfig struct {
	Token string `yaml:"token"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() Config {
	dir := configDir()
	return Config{
		DB:    DBConfig{Path: filepath.Join(dir, "kairu.db")},
		Log:   LogConfig{Level: "info", Path: filepath.Join(dir, "kairu.log")},
		Timer: TimerConfig{DefaultMinutes: 25, Sound: true},
		Sync:  SyncConfig{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond},
		Leaderboard: LeaderboardConfig{
			WeekStart: "sunday",
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables, in that order of increasing precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("KAIRU_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("KAIRU_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("KAIRU_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("KAIRU_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if roster := os.Getenv("KAIRU_ROSTER_PATH"); roster != "" {
		cfg.Leaderboard.Roster = roster
	}
	if token := os.Getenv("KAIRU_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}
	if minStr := os.Getenv("KAIRU_TIMER_MINUTES"); minStr != "" {
		mins, err := strconv.Atoi(minStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid KAIRU_TIMER_MINUTES: %w", err)
		}
		cfg.Timer.DefaultMinutes = mins
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Timer.DefaultMinutes <= 0 {
		return fmt.Errorf("timer.default_minutes must be positive, got %d", c.Timer.DefaultMinutes)
	}
	if c.Sync.MaxAttempts <= 0 {
		return fmt.Errorf("sync.max_attempts must be positive, got %d", c.Sync.MaxAttempts)
	}
	switch c.Leaderboard.WeekStart {
	case "sunday", "monday":
	default:
		return fmt.Errorf("leaderboard.week_start must be sunday or monday, got %q", c.Leaderboard.WeekStart)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "kairu")
}
