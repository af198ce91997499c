// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Fly-to orientation modes.
const (
	// FlyPreserve keeps the viewing angle and backs away from the body
	// along it.
	FlyPreserve = "preserve"
	// FlyLookAt turns the camera to face the body before flying.
	FlyLookAt = "look_at"
)

// Config holds all viewer settings.
type Config struct {
	Window      WindowConfig      `yaml:"window"`
	Navigation  NavigationConfig  `yaml:"navigation"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// WindowConfig holds native window settings.
type WindowConfig struct {
	Title         string `yaml:"title"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Fullscreen    bool   `yaml:"fullscreen"`
	VSync         bool   `yaml:"vsync"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// NavigationConfig tunes camera input and flights.
type NavigationConfig struct {
	MoveSpeed         float64       `yaml:"move_speed"`
	SlowSpeed         float64       `yaml:"slow_speed"`
	DragSensitivity   float64       `yaml:"drag_sensitivity"`
	WheelDistance     float64       `yaml:"wheel_distance"`
	DollyDuration     time.Duration `yaml:"dolly_duration"`
	FOVStep           float64       `yaml:"fov_step"`
	FlyDuration       time.Duration `yaml:"fly_duration"`
	FlyDistanceFactor float64       `yaml:"fly_distance_factor"`
	FlyToMode         string        `yaml:"fly_to_mode"`
}

// PersistenceConfig controls how often the pose is written to the location.
type PersistenceConfig struct {
	MinInterval    time.Duration `yaml:"min_interval"`   // between writes
	CheckInterval  time.Duration `yaml:"check_interval"` // between frame-loop checks
	AngleThreshold float64       `yaml:"angle_threshold"`
	StateFile      string        `yaml:"state_file"` // native viewer only
}

// CatalogConfig locates the body catalog.
type CatalogConfig struct {
	Path   string  `yaml:"path"`
	Watch  bool    `yaml:"watch"`
	Seed   uint64  `yaml:"seed"`
	Jitter float64 `yaml:"jitter"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:         "Starview",
			Width:         1280,
			Height:        720,
			VSync:         true,
			ScreenshotDir: "screenshots",
		},
		Navigation: NavigationConfig{
			MoveSpeed:         0.5,
			SlowSpeed:         0.001,
			DragSensitivity:   0.002,
			WheelDistance:     1000,
			DollyDuration:     100 * time.Millisecond,
			FOVStep:           1,
			FlyDuration:       500 * time.Millisecond,
			FlyDistanceFactor: 5,
			FlyToMode:         FlyPreserve,
		},
		Persistence: PersistenceConfig{
			MinInterval:    time.Second,
			CheckInterval:  500 * time.Millisecond,
			AngleThreshold: 0.01,
		},
		Catalog: CatalogConfig{
			Path:   "constellation/spheres.json",
			Seed:   1,
			Jitter: 0.5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate rejects settings the viewer can not run with.
func (c *Config) Validate() error {
	var errs []error
	n := c.Navigation
	if n.MoveSpeed <= 0 || n.SlowSpeed <= 0 {
		errs = append(errs, errors.New("navigation speeds must be positive"))
	}
	if n.DragSensitivity <= 0 {
		errs = append(errs, errors.New("navigation.drag_sensitivity must be positive"))
	}
	if n.DollyDuration <= 0 || n.FlyDuration <= 0 {
		errs = append(errs, errors.New("navigation durations must be positive"))
	}
	if n.FlyToMode != FlyPreserve && n.FlyToMode != FlyLookAt {
		errs = append(errs, fmt.Errorf("navigation.fly_to_mode %q: want %q or %q", n.FlyToMode, FlyPreserve, FlyLookAt))
	}
	if c.Persistence.MinInterval <= 0 || c.Persistence.CheckInterval <= 0 {
		errs = append(errs, errors.New("persistence intervals must be positive"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d is invalid", c.Window.Width, c.Window.Height))
	}
	return errors.Join(errs...)
}
