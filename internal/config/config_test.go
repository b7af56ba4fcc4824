package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.ResultTTL)
	assert.Equal(t, 3*24*time.Hour, cfg.Cache.SearchTTL)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Contains(t, cfg.Authority.TrustedDomains, "github.com")
}

func TestLoadFromEnvAliases(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("VERIFIER_PIPELINE_WORKERS", "3")

	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindEnv(v))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "tvly-test", cfg.Search.APIKey)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.NoError(t, cfg.RequireCredentials())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Backend = "etcd"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBackend)

	cfg = DefaultConfig()
	cfg.Cache.Backend = "redis"
	assert.ErrorIs(t, cfg.Validate(), ErrMissingRedisURL)

	cfg = DefaultConfig()
	cfg.LLM.Provider = "ollama"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownProvider)

	cfg = DefaultConfig()
	cfg.Pipeline.Workers = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Pipeline.Workers)
}

func TestRequireCredentials(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.RequireCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEEPSEEK_API_KEY")
	assert.Contains(t, err.Error(), "TAVILY_API_KEY")
}

func TestRedacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "secret"
	cfg.Cache.RedisURL = "redis://:pw@localhost:6379/0"

	r := cfg.Redacted()
	assert.Equal(t, "********", r.LLM.APIKey)
	assert.Equal(t, "", r.Search.APIKey)
	assert.Equal(t, "********", r.Cache.RedisURL)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
}
