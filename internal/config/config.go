package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	DBPath          string        `toml:"db_path" env:"CHATLENS_DB_PATH" validate:"required"`
	LogLevel        string        `toml:"log_level" env:"CHATLENS_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Timezone        string        `toml:"timezone" env:"CHATLENS_TIMEZONE" validate:"omitempty,timezone"`
	DatePolicy      string        `toml:"date_policy" env:"CHATLENS_DATE_POLICY" validate:"oneof=now drop"`
	Dedup           string        `toml:"dedup" env:"CHATLENS_DEDUP" validate:"oneof=length content"`
	InitiationGap   time.Duration `toml:"initiation_gap" env:"CHATLENS_INITIATION_GAP" validate:"gt=0"`
	TrackedPhrases  []string      `toml:"tracked_phrases" validate:"dive,required"`
	ReadConcurrency int           `toml:"read_concurrency" env:"CHATLENS_READ_CONCURRENCY" validate:"min=1,max=64"`
	Analyst         Analyst       `toml:"analyst"`
}

// Analyst configures the OpenAI-compatible endpoint used by the profile
// commands. An empty APIKey is allowed until a profile command runs.
type Analyst struct {
	BaseURL string        `toml:"base_url" env:"CHATLENS_ANALYST_BASE_URL" validate:"required,url"`
	APIKey  string        `toml:"api_key" env:"CHATLENS_ANALYST_API_KEY"`
	Model   string        `toml:"model" env:"CHATLENS_ANALYST_MODEL" validate:"required"`
	Timeout time.Duration `toml:"timeout" env:"CHATLENS_ANALYST_TIMEOUT" validate:"gt=0"`
}

var validate = validator.New()

func defaults(home string) *Config {
	return &Config{
		DBPath:          filepath.Join(home, ".config", "chatlens", "chatlens.db"),
		LogLevel:        "warn",
		DatePolicy:      "now",
		Dedup:           "length",
		InitiationGap:   6 * time.Hour,
		ReadConcurrency: 4,
		Analyst: Analyst{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 2 * time.Minute,
		},
	}
}

// Path is where Load looks for the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chatlens", "config.toml"), nil
}

// Load builds the configuration from defaults, the config file, a .env file
// in the working directory and CHATLENS_* variables, later sources winning.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cfgPath, err := Path()
	if err != nil {
		return nil, err
	}

	if err := loadDotenv(".env"); err != nil {
		return nil, err
	}
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	return load(home, cfgPath, es)
}

// loadDotenv reads path into the environment. A missing file is not an
// error; a malformed one is.
func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func load(home, cfgPath string, es env.EnvSet) (*Config, error) {
	cfg := defaults(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if err := env.Unmarshal(es, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	// expand ~ in paths
	cfg.DBPath = expandHome(cfg.DBPath, home)

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid config: %s: failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Location resolves Timezone; empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
