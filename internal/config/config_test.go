package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func (s *ConfigSuite) TestDefaultIsValid() {
	cfg := Default()
	s.NoError(cfg.Validate())
	s.Equal(20, cfg.Game.BoardSize)
	s.Equal(5, cfg.Game.WinLength)
	s.Equal(60*time.Second, cfg.Tickets.TTL)
	s.Equal(StorageMemory, cfg.Storage.Type)
}

func (s *ConfigSuite) TestDecodeOverlaysDefaults() {
	cfg := Default()
	err := cfg.Decode(strings.NewReader(`
server:
  port: 9090
tickets:
  ttl: 30s
storage:
  type: redis
  redis:
    url: redis://cache:6379/1
`))
	s.Require().NoError(err)

	s.Equal(9090, cfg.Server.Port)
	s.Equal(30*time.Second, cfg.Tickets.TTL)
	s.Equal(10*time.Second, cfg.Tickets.SweepInterval)
	s.Equal(StorageRedis, cfg.Storage.Type)
	s.Equal("redis://cache:6379/1", cfg.Storage.Redis.URL)
	s.Equal(10, cfg.Storage.Redis.PoolSize)
	s.NoError(cfg.Validate())
}

func (s *ConfigSuite) TestDecodeEmpty() {
	cfg := Default()
	s.NoError(cfg.Decode(strings.NewReader("")))
	s.Equal(Default(), cfg)
}

func (s *ConfigSuite) TestDecodeRejectsUnknownKeys() {
	cfg := Default()
	s.Error(cfg.Decode(strings.NewReader("server:\n  prot: 1\n")))
}

func (s *ConfigSuite) TestApplyEnv() {
	cfg := Default()
	err := cfg.ApplyEnv(envOf(map[string]string{
		"PORT":         "7000",
		"JWT_SECRET":   "s3cret",
		"STORAGE_TYPE": "REDIS",
		"REDIS_URL":    "redis://elsewhere:6379",
		"LOG_LEVEL":    "debug",
	}))
	s.Require().NoError(err)

	s.Equal(7000, cfg.Server.Port)
	s.Equal("s3cret", cfg.Auth.Secret)
	s.Equal(StorageRedis, cfg.Storage.Type)
	s.Equal("redis://elsewhere:6379", cfg.Storage.Redis.URL)
	s.Equal("debug", cfg.Log.Level)
}

func (s *ConfigSuite) TestApplyEnvBadPort() {
	cfg := Default()
	s.Error(cfg.ApplyEnv(envOf(map[string]string{"PORT": "eighty"})))
}

func (s *ConfigSuite) TestValidateCollectsErrors() {
	cfg := Default()
	cfg.Auth.Secret = ""
	cfg.Storage.Type = "etcd"
	cfg.Game.WinLength = 25
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	s.Require().Error(err)
	msg := err.Error()
	s.Contains(msg, "jwt_secret")
	s.Contains(msg, "storage.type")
	s.Contains(msg, "win_length")
	s.Contains(msg, "loud")
}

func (s *ConfigSuite) TestRedisRequiresURL() {
	cfg := Default()
	cfg.Storage.Type = StorageRedis
	cfg.Storage.Redis.URL = ""
	s.ErrorContains(cfg.Validate(), "storage.redis.url")
}

func (s *ConfigSuite) TestLoadFile() {
	path := filepath.Join(s.T().TempDir(), "roomcoord.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("game:\n  win_length: 4\nlog:\n  level: warn\n"), 0o600))
	s.T().Setenv("PORT", "8181")

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal(4, cfg.Game.WinLength)
	s.Equal(8181, cfg.Server.Port)

	level, err := cfg.Log.SlogLevel()
	s.Require().NoError(err)
	s.Equal("WARN", level.String())
}

func (s *ConfigSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(s.T().TempDir(), "nope.yaml"))
	s.Error(err)
}

func (s *ConfigSuite) TestResolvePath() {
	s.T().Setenv(EnvConfigPath, "/etc/roomcoord.yaml")
	s.Equal("/etc/roomcoord.yaml", ResolvePath(""))
	s.Equal("local.yaml", ResolvePath("local.yaml"))
}
