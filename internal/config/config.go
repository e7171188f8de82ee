package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mapstory/internal/engine"
	"github.com/san-kum/mapstory/internal/nav"
)

const (
	DefaultSettleMS         = 1000
	DefaultSubSceneSettleMS = 500
	DefaultDebounceMS       = 100
	DefaultLockReleaseMS    = 500
	DefaultContentMS        = 5000
	DefaultFrameRate        = 30
	DefaultRotationStep     = 0.1
	DefaultListen           = "127.0.0.1:8750"
)

var (
	ErrFrameRate = errors.New("config: frame_rate must be positive")
	ErrNegative  = errors.New("config: durations must not be negative")
)

// Config holds the playback tunables. Durations are whole milliseconds so
// the YAML stays plain integers.
type Config struct {
	SettleMS         int     `yaml:"settle_ms" env:"MAPSTORY_SETTLE_MS"`
	SubSceneSettleMS int     `yaml:"sub_scene_settle_ms" env:"MAPSTORY_SUB_SCENE_SETTLE_MS"`
	DebounceMS       int     `yaml:"debounce_ms" env:"MAPSTORY_DEBOUNCE_MS"`
	LockReleaseMS    int     `yaml:"lock_release_ms" env:"MAPSTORY_LOCK_RELEASE_MS"`
	DefaultContentMS int     `yaml:"default_content_ms" env:"MAPSTORY_DEFAULT_CONTENT_MS"`
	FrameRate        int     `yaml:"frame_rate" env:"MAPSTORY_FRAME_RATE"`
	RotationStep     float64 `yaml:"rotation_step" env:"MAPSTORY_ROTATION_STEP"`
	Autoplay         bool    `yaml:"autoplay" env:"MAPSTORY_AUTOPLAY"`
	Story            string  `yaml:"story,omitempty" env:"MAPSTORY_STORY"`
	Theme            string  `yaml:"theme" env:"MAPSTORY_THEME"`
	Listen           string  `yaml:"listen" env:"MAPSTORY_LISTEN"`
}

func DefaultConfig() *Config {
	return &Config{
		SettleMS:         DefaultSettleMS,
		SubSceneSettleMS: DefaultSubSceneSettleMS,
		DebounceMS:       DefaultDebounceMS,
		LockReleaseMS:    DefaultLockReleaseMS,
		DefaultContentMS: DefaultContentMS,
		FrameRate:        DefaultFrameRate,
		RotationStep:     DefaultRotationStep,
		Autoplay:         true,
		Theme:            "glacier",
		Listen:           DefaultListen,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ParseEnv overlays MAPSTORY_* variables onto cfg. Unset variables leave
// the current value alone.
func ParseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Resolve builds the effective config: defaults, then the file at path if
// any, then the environment.
func Resolve(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w, got %d", ErrFrameRate, c.FrameRate)
	}
	for _, v := range []int{c.SettleMS, c.SubSceneSettleMS, c.DebounceMS, c.LockReleaseMS, c.DefaultContentMS} {
		if v < 0 {
			return ErrNegative
		}
	}
	return nil
}

// Frame is the loop tick that matches the frame rate.
func (c *Config) Frame() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Engine converts the tunables for the engine. page selects the timeline
// page and may be empty.
func (c *Config) Engine(page nav.Page) engine.Config {
	return engine.Config{
		Settle:         ms(c.SettleMS),
		SubSceneSettle: ms(c.SubSceneSettleMS),
		Debounce:       ms(c.DebounceMS),
		LockRelease:    ms(c.LockReleaseMS),
		DefaultContent: ms(c.DefaultContentMS),
		RotationStep:   c.RotationStep,
		Page:           page,
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
