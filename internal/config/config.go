// Package config loads ls-globe settings from defaults, an optional YAML
// file, a .env file and LSGLOBE_* environment variables, in rising order of
// precedence. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/globe"
)

// EnvPrefix is the prefix of environment overrides, e.g. LSGLOBE_LOG_LEVEL.
const EnvPrefix = "LSGLOBE"

const (
	MinRefresh = 5 * time.Second
	MaxRefresh = time.Hour
)

// LogConfig selects log verbosity and destination.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
	File   string `mapstructure:"file"`   // empty discards logs in TUI mode
}

// RosterConfig says where professionals come from.
type RosterConfig struct {
	Source  string        `mapstructure:"source"`  // path or URL; empty for the bundled roster
	Refresh time.Duration `mapstructure:"refresh"` // 0 disables reloading
	Timeout time.Duration `mapstructure:"timeout"`
}

// GlobeConfig holds sphere and picking settings.
type GlobeConfig struct {
	Radius         float64 `mapstructure:"radius"`
	SurfaceLift    float64 `mapstructure:"surfaceLift"`
	PickRadius     float64 `mapstructure:"pickRadius"`
	DragThreshold  float64 `mapstructure:"dragThreshold"`
	OccludeByGlobe bool    `mapstructure:"occludeByGlobe"`
}

// CameraConfig holds the orbit settings in user-facing units.
type CameraConfig struct {
	MinDistance     float64       `mapstructure:"minDistance"`
	MaxDistance     float64       `mapstructure:"maxDistance"`
	InitialDistance float64       `mapstructure:"initialDistance"`
	MaxElevationDeg float64       `mapstructure:"maxElevationDeg"`
	RotateSpeed     float64       `mapstructure:"rotateSpeed"` // radians per cell dragged
	AutoRotate      bool          `mapstructure:"autoRotate"`
	RevolutionTime  time.Duration `mapstructure:"revolutionTime"` // one full auto-rotation
	ResumeDelay     time.Duration `mapstructure:"resumeDelay"`
	Damping         float64       `mapstructure:"damping"`
	FOVDeg          float64       `mapstructure:"fovDeg"`
}

// UIConfig holds terminal rendering settings.
type UIConfig struct {
	FPS        int     `mapstructure:"fps"`
	CellAspect float64 `mapstructure:"cellAspect"` // terminal cell height/width
	Braille    bool    `mapstructure:"braille"`
}

// Config is the full application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Roster RosterConfig `mapstructure:"roster"`
	Globe  GlobeConfig  `mapstructure:"globe"`
	Camera CameraConfig `mapstructure:"camera"`
	UI     UIConfig     `mapstructure:"ui"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetDefault("roster.source", "")
	v.SetDefault("roster.refresh", "0s")
	v.SetDefault("roster.timeout", "15s")

	v.SetDefault("globe.radius", globe.DefaultGlobeRadius)
	v.SetDefault("globe.surfaceLift", globe.DefaultSurfaceLift)
	v.SetDefault("globe.pickRadius", 0.1)
	v.SetDefault("globe.dragThreshold", 1)
	v.SetDefault("globe.occludeByGlobe", true)

	v.SetDefault("camera.minDistance", 3)
	v.SetDefault("camera.maxDistance", 8)
	v.SetDefault("camera.initialDistance", 5)
	v.SetDefault("camera.maxElevationDeg", 89)
	v.SetDefault("camera.rotateSpeed", 0.05)
	v.SetDefault("camera.autoRotate", true)
	v.SetDefault("camera.revolutionTime", "2m")
	v.SetDefault("camera.resumeDelay", "1.5s")
	v.SetDefault("camera.damping", 4)
	v.SetDefault("camera.fovDeg", 45)

	v.SetDefault("ui.fps", 30)
	v.SetDefault("ui.cellAspect", 2)
	v.SetDefault("ui.braille", true)
}

// Load builds the configuration. path names a YAML config file; when empty,
// ls-globe.yaml is looked up in the working directory and
// $HOME/.config/ls-globe, and its absence is not an error.
func Load(path string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("ls-globe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ls-globe")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Validate()
	return cfg, nil
}

// loadDotEnv exports the variables of a .env file if one exists. Variables
// already set in the environment win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Validate repairs out-of-range values in place rather than rejecting them.
func (c *Config) Validate() {
	if c.Roster.Refresh < 0 {
		c.Roster.Refresh = 0
	}
	if c.Roster.Refresh > 0 {
		c.Roster.Refresh = clampDuration(c.Roster.Refresh, MinRefresh, MaxRefresh)
	}
	if c.Roster.Timeout <= 0 {
		c.Roster.Timeout = 15 * time.Second
	}

	if c.Camera.MinDistance > c.Camera.MaxDistance {
		c.Camera.MinDistance, c.Camera.MaxDistance = c.Camera.MaxDistance, c.Camera.MinDistance
	}
	if c.Camera.RevolutionTime < 0 {
		c.Camera.RevolutionTime = 0
	}

	if c.UI.FPS <= 0 {
		c.UI.FPS = 30
	} else if c.UI.FPS > 60 {
		c.UI.FPS = 60
	}
	if c.UI.CellAspect <= 0 {
		c.UI.CellAspect = 2
	}
}

// Engine converts the settings into an engine configuration.
func (c Config) Engine() globe.Config {
	cam := globe.CameraConfig{
		MinDistance:     c.Camera.MinDistance,
		MaxDistance:     c.Camera.MaxDistance,
		InitialDistance: c.Camera.InitialDistance,
		MaxElevation:    geo.DegToRad(c.Camera.MaxElevationDeg),
		RotateSpeed:     c.Camera.RotateSpeed,
		AutoRotate:      c.Camera.AutoRotate,
		ResumeDelay:     c.Camera.ResumeDelay,
		Damping:         c.Camera.Damping,
		FOV:             geo.DegToRad(c.Camera.FOVDeg),
	}
	if c.Camera.RevolutionTime > 0 {
		cam.AutoRotateSpeed = 2 * math.Pi / c.Camera.RevolutionTime.Seconds()
	} else {
		cam.AutoRotate = false
	}

	return globe.Config{
		GlobeRadius: c.Globe.Radius,
		SurfaceLift: c.Globe.SurfaceLift,
		Camera:      cam,
		Pick: globe.PickConfig{
			PickRadius:     c.Globe.PickRadius,
			DragThreshold:  c.Globe.DragThreshold,
			OccludeByGlobe: c.Globe.OccludeByGlobe,
		},
	}
}

// FrameInterval is the time between rendered frames.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.UI.FPS)
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
