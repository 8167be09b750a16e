package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"OSA_URL", "OSA_TOKEN", "OSA_MODEL_PROVIDER", "OSA_MODEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "gemini", cfg.ModelProvider)
	assert.Equal(t, "gemini-2.0-flash", cfg.ModelName)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
theme: light
renderer: glamour
timeout: 30s
log:
  level: debug
`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, RendererGlamour, cfg.Renderer)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "osa-builder.log", cfg.Log.File)
	assert.Equal(t, DefaultBackendURL, cfg.BackendURL)
}

func TestLoad_UnknownRendererFallsBackToNative(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("renderer: html\n"), 0o644))
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, RendererNative, cfg.Renderer)
}

func TestLoad_CorruptFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("theme: [unclosed"), 0o644))
	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend_url: http://file:1\nmodel_provider: openai\n"), 0o644))
	t.Setenv("OSA_URL", "http://env:2")
	t.Setenv("OSA_TOKEN", "tok")
	t.Setenv("OSA_MODEL", "gpt-4o")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.BackendURL)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "openai", cfg.ModelProvider)
	assert.Equal(t, "gpt-4o", cfg.ModelName)
}

func TestSave_RoundTripOmitsToken(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := Defaults()
	cfg.Theme = "catppuccin"
	cfg.Token = "secret"
	cfg.Export.AuthorName = "Ada"
	require.NoError(t, Save(dir, cfg))

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "catppuccin", got.Theme)
	assert.Equal(t, "Ada", got.Export.AuthorName)
	assert.Empty(t, got.Token)
}

func TestLogPath(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, filepath.Join("/p", "osa-builder.log"), cfg.LogPath("/p"))
	cfg.Log.File = "/var/log/x.log"
	assert.Equal(t, "/var/log/x.log", cfg.LogPath("/p"))
}

func TestProfileDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir, err := ProfileDir("dev")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("profiles", "dev"), filepath.Join(filepath.Base(filepath.Dir(dir)), filepath.Base(dir)))
	assert.DirExists(t, dir)

	_, err = ProfileDir("../evil")
	assert.Error(t, err)
}

func TestReadToken(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, ReadToken(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token"), []byte("abc\n"), 0o600))
	assert.Equal(t, "abc", ReadToken(dir))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadEnvFile(dir))

	t.Setenv("OSA_MODEL_PROVIDER", "preset")
	t.Cleanup(func() { os.Unsetenv("OSA_ENVFILE_PROBE") })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("OSA_ENVFILE_PROBE=from-file\nOSA_MODEL_PROVIDER=openai\n"), 0o600))

	require.NoError(t, LoadEnvFile(dir))
	assert.Equal(t, "from-file", os.Getenv("OSA_ENVFILE_PROBE"))
	assert.Equal(t, "preset", os.Getenv("OSA_MODEL_PROVIDER"))
}
