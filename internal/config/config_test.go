package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	for _, key := range []string{"DEEPSEEK_API_KEY", "LLM_API_KEY", "START_DEV", "PORT", "MAIN_API_ADDRESS", "MYSQL_DB", "GIN_MODE", "JWT_SECRET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "NeuroMentor", cfg.App.Name)
	assert.Equal(t, 8000, cfg.App.Port)
	assert.Equal(t, "/api", cfg.App.BasePath)
	assert.Equal(t, 10, cfg.LLM.MaxContextMessage)
	assert.Equal(t, 90*time.Second, cfg.LLMTimeout())
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTPAddr())

	assert.ErrorContains(t, cfg.Validate(), "DEEPSEEK_API_KEY")
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
port = 9000
base_path = "service/"

[llm]
api_key = "from-file"
timeout_seconds = 30
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DEEPSEEK_API_KEY", "from-env")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LLM_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "/service", cfg.App.BasePath)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, 30, cfg.LLM.TimeoutSeconds)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDevSwitch(t *testing.T) {
	isolate(t)
	t.Setenv("START_DEV", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.App.Dev)
	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "debug", cfg.App.GinMode)
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.LLM.APIKey = "key"
	cfg.App.Port = 70000
	assert.ErrorContains(t, cfg.Validate(), "PORT")

	cfg.App.Port = 8000
	cfg.MySQL.DB = " "
	assert.ErrorContains(t, cfg.Validate(), "MYSQL_DB")
}

func TestValidateRejectsPlaceholderJWTSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.LLM.APIKey = "key"
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.Auth.JWTSecret = "  "
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.App.Dev = true
	cfg.Auth.JWTSecret = defaultJWTSecret
	assert.NoError(t, cfg.Validate())

	cfg.App.Dev = false
	cfg.Auth.JWTSecret = "rotated-secret"
	assert.NoError(t, cfg.Validate())
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "mentor"
	cfg.MySQL.Password = "p@ss"
	cfg.MySQL.Host = "db"
	cfg.MySQL.Port = 3307

	parsed, err := mysql.ParseDSN(cfg.MySQLDSN())
	require.NoError(t, err)
	assert.Equal(t, "mentor", parsed.User)
	assert.Equal(t, "p@ss", parsed.Passwd)
	assert.Equal(t, "db:3307", parsed.Addr)
	assert.Equal(t, "neuromentor", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
}
