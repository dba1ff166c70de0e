// Package config loads server configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brentkao/roomcoord/internal/api"
	"github.com/brentkao/roomcoord/internal/realtime"
	"github.com/brentkao/roomcoord/internal/services/auth"
	"github.com/brentkao/roomcoord/internal/services/game"
	"github.com/brentkao/roomcoord/internal/services/ticket"
	redisstorage "github.com/brentkao/roomcoord/internal/storage/redis"
)

// EnvConfigPath names the variable consulted when no --config flag is given
const EnvConfigPath = "ROOMCOORD_CONFIG"

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the complete server configuration
type Config struct {
	Server    api.ServerConfig        `yaml:"server"`
	Auth      auth.Config             `yaml:"auth"`
	Tickets   ticket.Config           `yaml:"tickets"`
	Game      game.Config             `yaml:"game"`
	Storage   StorageConfig           `yaml:"storage"`
	WebSocket realtime.EndpointConfig `yaml:"websocket"`
	Log       LogConfig               `yaml:"log"`
}

// StorageConfig selects the ticket and account backend
type StorageConfig struct {
	Type  string              `yaml:"type"`
	Redis redisstorage.Config `yaml:"redis"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel parses Level
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.Level, err)
	}
	return level, nil
}

// Default returns a configuration that runs with no file and no
// environment
func Default() Config {
	return Config{
		Server:    api.DefaultServerConfig(),
		Auth:      auth.DefaultConfig(),
		Tickets:   ticket.DefaultConfig(),
		Game:      game.DefaultConfig(),
		Storage:   StorageConfig{Type: StorageMemory, Redis: redisstorage.DefaultConfig()},
		WebSocket: realtime.DefaultEndpointConfig(),
		Log:       LogConfig{Level: "info"},
	}
}

// ResolvePath returns the config file to load: the flag value if set,
// otherwise $ROOMCOORD_CONFIG, otherwise none
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvConfigPath)
}

// Load builds a Config from defaults, the file at path (if any), and the
// process environment, then validates it
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.Decode(f); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays YAML from r onto cfg. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays the supported environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("JWT_SECRET"); ok {
		c.Auth.Secret = v
	}
	if v, ok := lookup("STORAGE_TYPE"); ok {
		c.Storage.Type = strings.ToLower(v)
	}
	if v, ok := lookup("REDIS_URL"); ok {
		c.Storage.Redis.URL = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	return nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.jwt_secret must be set"))
	}
	if c.Auth.CredentialTTL <= 0 {
		errs = append(errs, errors.New("auth.credential_ttl must be positive"))
	}
	if c.Tickets.TTL <= 0 {
		errs = append(errs, errors.New("tickets.ttl must be positive"))
	}
	if c.Tickets.SweepInterval <= 0 {
		errs = append(errs, errors.New("tickets.sweep_interval must be positive"))
	}
	if c.Game.BoardSize <= 0 {
		errs = append(errs, errors.New("game.board_size must be positive"))
	}
	if c.Game.WinLength <= 0 || c.Game.WinLength > c.Game.BoardSize {
		errs = append(errs, fmt.Errorf("game.win_length must be between 1 and %d", c.Game.BoardSize))
	}
	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.Redis.URL == "" {
			errs = append(errs, errors.New("storage.redis.url required when storage.type is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type %q: must be %q or %q", c.Storage.Type, StorageMemory, StorageRedis))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
