package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-globe/internal/geo"
)

// chdir moves into a fresh directory so no stray ls-globe.yaml or .env is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_DefaultValues(t *testing.T) {
	chdir(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "", cfg.Roster.Source)
	assert.Equal(t, time.Duration(0), cfg.Roster.Refresh)
	assert.Equal(t, 15*time.Second, cfg.Roster.Timeout)
	assert.Equal(t, 2.0, cfg.Globe.Radius)
	assert.Equal(t, 0.05, cfg.Globe.SurfaceLift)
	assert.True(t, cfg.Globe.OccludeByGlobe)
	assert.Equal(t, 3.0, cfg.Camera.MinDistance)
	assert.Equal(t, 8.0, cfg.Camera.MaxDistance)
	assert.Equal(t, 2*time.Minute, cfg.Camera.RevolutionTime)
	assert.Equal(t, 1500*time.Millisecond, cfg.Camera.ResumeDelay)
	assert.Equal(t, 30, cfg.UI.FPS)
	assert.Equal(t, 2.0, cfg.UI.CellAspect)
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := chdir(t)
	p := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
log:
  level: debug
roster:
  source: ./team.geojson
  refresh: 1s
camera:
  minDistance: 4
  revolutionTime: 1m
ui:
  fps: 120
`), 0644))

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "./team.geojson", cfg.Roster.Source)
	assert.Equal(t, MinRefresh, cfg.Roster.Refresh, "refresh is clamped")
	assert.Equal(t, 4.0, cfg.Camera.MinDistance)
	assert.Equal(t, time.Minute, cfg.Camera.RevolutionTime)
	assert.Equal(t, 60, cfg.UI.FPS, "fps is clamped")
}

func TestLoad_DiscoversDefaultFile(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ls-globe.yaml"), []byte("globe:\n  radius: 3\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Globe.Radius)
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t)
	_, err := Load("/nonexistent/path/ls-globe.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("LSGLOBE_LOG_LEVEL", "warn")
	t.Setenv("LSGLOBE_ROSTER_SOURCE", "https://example.com/roster.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "https://example.com/roster.json", cfg.Roster.Source)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LSGLOBE_LOG_FORMAT=json\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("LSGLOBE_LOG_FORMAT") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Roster: RosterConfig{Refresh: 2 * time.Hour, Timeout: -1},
		Camera: CameraConfig{MinDistance: 9, MaxDistance: 2, RevolutionTime: -time.Second},
		UI:     UIConfig{FPS: 0, CellAspect: -1},
	}
	cfg.Validate()

	assert.Equal(t, MaxRefresh, cfg.Roster.Refresh)
	assert.Equal(t, 15*time.Second, cfg.Roster.Timeout)
	assert.Equal(t, 2.0, cfg.Camera.MinDistance)
	assert.Equal(t, 9.0, cfg.Camera.MaxDistance)
	assert.Equal(t, time.Duration(0), cfg.Camera.RevolutionTime)
	assert.Equal(t, 30, cfg.UI.FPS)
	assert.Equal(t, 2.0, cfg.UI.CellAspect)
}

func TestEngine(t *testing.T) {
	chdir(t)
	cfg, err := Load("")
	require.NoError(t, err)

	ec := cfg.Engine()
	assert.Equal(t, 2.0, ec.GlobeRadius)
	assert.InDelta(t, 2*math.Pi/120, ec.Camera.AutoRotateSpeed, 1e-12)
	assert.InDelta(t, geo.DegToRad(45), ec.Camera.FOV, 1e-12)
	assert.InDelta(t, geo.DegToRad(89), ec.Camera.MaxElevation, 1e-12)
	assert.True(t, ec.Camera.AutoRotate)
	assert.Equal(t, 0.1, ec.Pick.PickRadius)

	cfg.Camera.RevolutionTime = 0
	assert.False(t, cfg.Engine().Camera.AutoRotate)

	assert.Equal(t, time.Second/30, cfg.FrameInterval())
}
