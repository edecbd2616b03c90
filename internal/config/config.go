package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Analysis Analysis `toml:"analysis"`
	Server   Server   `toml:"server"`
	Log      Log      `toml:"log"`
}

type Analysis struct {
	// Export is the archive used when a command is given no path.
	Export      string `toml:"export" env:"IGFA_EXPORT"`
	MinMessages int    `toml:"min_messages" env:"IGFA_MIN_MESSAGES"`
	TopN        int    `toml:"top_n" env:"IGFA_TOP_N"`
	StoryLimit  int    `toml:"story_limit" env:"IGFA_STORY_LIMIT"`
}

type Server struct {
	Host           string        `toml:"host" env:"IGFA_SERVER_HOST"`
	Port           int           `toml:"port" env:"IGFA_SERVER_PORT"`
	MaxUploadBytes int64         `toml:"max_upload_bytes" env:"IGFA_MAX_UPLOAD_BYTES"`
	ReadTimeout    time.Duration `toml:"read_timeout" env:"IGFA_SERVER_READ_TIMEOUT"`
	WriteTimeout   time.Duration `toml:"write_timeout" env:"IGFA_SERVER_WRITE_TIMEOUT"`
}

// Address returns host:port for net.Listen.
func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type Log struct {
	Level string `toml:"level" env:"IGFA_LOG_LEVEL"`
}

func Default() *Config {
	return &Config{
		Analysis: Analysis{
			MinMessages: 50,
			TopN:        10,
			StoryLimit:  20,
		},
		Server: Server{
			Host:           "127.0.0.1",
			Port:           8080,
			MaxUploadBytes: 512 << 20,
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   5 * time.Minute,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads ~/.config/igfa/config.toml when it exists.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(home, ".config", "igfa", "config.toml"), home)
}

// LoadFrom layers, in order: defaults, the TOML file at path (if present),
// a .env file in the working directory (if present) and IGFA_* variables.
func LoadFrom(path, home string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	cfg.Analysis.Export = expandHome(cfg.Analysis.Export, home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.MinMessages < 0 {
		errs = append(errs, errors.New("analysis.min_messages must not be negative"))
	}
	if c.Analysis.TopN <= 0 {
		errs = append(errs, errors.New("analysis.top_n must be positive"))
	}
	if c.Analysis.StoryLimit <= 0 {
		errs = append(errs, errors.New("analysis.story_limit must be positive"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.Log.Level)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
