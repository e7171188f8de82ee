package experiment

import (
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/mapstory/internal/automation"
	"github.com/san-kum/mapstory/internal/config"
)

// Registry resolves the names the command line accepts: built-in scenarios
// and pacing presets.
type Registry struct {
	scenarios map[string]func() *automation.Scenario
	presets   map[string]func() *config.Config
}

func NewRegistry() *Registry {
	r := &Registry{
		scenarios: make(map[string]func() *automation.Scenario),
		presets:   make(map[string]func() *config.Config),
	}
	for _, name := range automation.ListScenarios() {
		name := name
		r.scenarios[name] = func() *automation.Scenario { return automation.GetScenario(name) }
	}
	for _, name := range config.ListPresets() {
		name := name
		r.presets[name] = func() *config.Config { return config.GetPreset(name) }
	}
	return r
}

// GetScenario looks up a built-in scenario, then falls back to a YAML file.
func (r *Registry) GetScenario(nameOrPath string) (*automation.Scenario, error) {
	if fn, ok := r.scenarios[nameOrPath]; ok {
		return fn(), nil
	}
	if _, err := os.Stat(nameOrPath); err == nil {
		return automation.LoadScenario(nameOrPath)
	}
	return nil, fmt.Errorf("unknown scenario: %s", nameOrPath)
}

func (r *Registry) GetPreset(name string) (*config.Config, error) {
	fn, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListScenarios() []string { return sortedKeys(r.scenarios) }
func (r *Registry) ListPresets() []string   { return sortedKeys(r.presets) }

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
