package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "botInfo.json", cfg.State.SavePath)
	assert.Equal(t, "starterInfo.json", cfg.State.StarterPath)
	assert.Equal(t, "!", cfg.Bot.Prefix)
	assert.Equal(t, time.Local, mustLocation(t, cfg))
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
state:
  save_path: data/save.json
  autosave_interval: 5m
bot:
  prefix: ""
  general_channel: lobby
  timezone: UTC
log:
  level: debug
`), 0644))

	t.Setenv("DISCORD_TOKEN", "secret")
	t.Setenv("DISCORD_GUILD", "my-guild")
	t.Setenv("STARTER_PATH", "seed.json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/save.json", cfg.State.SavePath)
	assert.Equal(t, "seed.json", cfg.State.StarterPath)
	assert.Equal(t, 5*time.Minute, cfg.State.AutosaveEach)
	assert.Equal(t, "", cfg.Bot.Prefix)
	assert.Equal(t, "lobby", cfg.Bot.GeneralChannel)
	assert.Equal(t, "secret", cfg.Gateway.Token)
	assert.Equal(t, "my-guild", cfg.Bot.Guild)
	assert.Equal(t, time.UTC, mustLocation(t, cfg))

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SAVE_PATH=from-dotenv.json\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SAVE_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", cfg.State.SavePath)
}

func TestLoad_BadAutosaveEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTOSAVE_INTERVAL", "every five minutes")

	_, err := Load("")
	assert.ErrorContains(t, err, "AUTOSAVE_INTERVAL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty save path", func(c *Config) { c.State.SavePath = "" }},
		{"negative autosave", func(c *Config) { c.State.AutosaveEach = -time.Second }},
		{"bad timezone", func(c *Config) { c.Bot.Timezone = "Mars/Olympus" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"history limit", func(c *Config) { c.Bot.HistoryLimit = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func mustLocation(t *testing.T, cfg *Config) *time.Location {
	t.Helper()
	loc, err := cfg.Location()
	require.NoError(t, err)
	return loc
}

// chdir меняет рабочий каталог на время теста (аналог t.Chdir из Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
