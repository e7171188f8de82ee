package config

import "sort"

// Presets are named pacing profiles.
var Presets = map[string]*Config{
	"standard": DefaultConfig(),
	"brisk": {
		SettleMS: 400, SubSceneSettleMS: 200, DebounceMS: 100, LockReleaseMS: 500,
		DefaultContentMS: 2500, FrameRate: 30, RotationStep: 0.2, Autoplay: true,
		Theme: "glacier", Listen: DefaultListen,
	},
	"kiosk": {
		SettleMS: 1500, SubSceneSettleMS: 800, DebounceMS: 250, LockReleaseMS: 800,
		DefaultContentMS: 9000, FrameRate: 24, RotationStep: 0.05, Autoplay: true,
		Theme: "night", Listen: "0.0.0.0:8750",
	},
	"review": {
		SettleMS: 1000, SubSceneSettleMS: 500, DebounceMS: 100, LockReleaseMS: 500,
		DefaultContentMS: 5000, FrameRate: 60, RotationStep: 0.1, Autoplay: false,
		Theme: "paper", Listen: DefaultListen,
	},
	"instant": {
		SettleMS: 0, SubSceneSettleMS: 0, DebounceMS: 100, LockReleaseMS: 500,
		DefaultContentMS: 1000, FrameRate: 30, RotationStep: 0.1, Autoplay: true,
		Theme: "glacier", Listen: DefaultListen,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
