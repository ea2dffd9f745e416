package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultCountriesURL, cfg.Gateway.CountriesURL)
	assert.Equal(t, DefaultBoundariesURL, cfg.Gateway.BoundariesURL)
	assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 60, cfg.Render.FPS)
	assert.InDelta(t, 0.2, cfg.Render.Speed, 1e-9)
	assert.InDelta(t, 2.5, cfg.Render.Altitude, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gofind.yaml")
	body := `
gateway:
  countries_url: http://localhost:9999/all
  timeout: 3s
  tls_fingerprint: chrome
render:
  fps: 30
  speed: 0.5
log:
  level: debug
  output: stderr
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/all", cfg.Gateway.CountriesURL)
	assert.Equal(t, DefaultBoundariesURL, cfg.Gateway.BoundariesURL)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "chrome", cfg.Gateway.TLSFingerprint)
	assert.Equal(t, 30, cfg.Render.FPS)
	assert.InDelta(t, 0.5, cfg.Render.Speed, 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GOFIND_RENDER_FPS", "24")
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Render.FPS)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	body := `
gateway:
  countries_url: not-a-url
  tls_fingerprint: firefox
render:
  fps: 0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.countries_url")
	assert.Contains(t, err.Error(), "tls_fingerprint")
	assert.Contains(t, err.Error(), "render.fps")
}

func TestFrameInterval(t *testing.T) {
	assert.Equal(t, time.Second/60, RenderConfig{}.FrameInterval())
	assert.Equal(t, time.Second/30, RenderConfig{FPS: 30}.FrameInterval())
}
