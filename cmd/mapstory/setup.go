package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mapstory/internal/automation"
	"github.com/san-kum/mapstory/internal/config"
	"github.com/san-kum/mapstory/internal/engine"
	"github.com/san-kum/mapstory/internal/experiment"
	"github.com/san-kum/mapstory/internal/nav"
	"github.com/san-kum/mapstory/internal/story"
	"github.com/san-kum/mapstory/internal/timeline"
)

// loadSettings layers the effective config: a config file when given,
// otherwise the preset or the defaults, then the environment, then flags.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Resolve(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case preset != "":
		p, err := experiment.NewRegistry().GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg = p
		if err := config.ParseEnv(cfg); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
		if err := config.ParseEnv(cfg); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if storyPath == "" {
		storyPath = cfg.Story
	}
	return cfg, cfg.Validate()
}

type session struct {
	story    *story.File
	settings *config.Config
	exp      *experiment.Experiment
}

// newSession loads the story and builds an experiment around it.
func newSession(cmd *cobra.Command, scenario *automation.Scenario, limit time.Duration, hooks engine.Hooks) (*session, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	st, err := story.Resolve(storyPath)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(experiment.Config{
		Story:    st,
		Settings: settings,
		Scenario: scenario,
		Preset:   preset,
		Duration: limit,
	})
	if err := exp.Setup(hooks, logger()); err != nil {
		return nil, err
	}
	return &session{story: st, settings: settings, exp: exp}, nil
}

// storySteps lists the timeline the engine would build, without building it.
func storySteps(st *story.File, settings *config.Config) ([]timeline.Step, error) {
	reg, err := st.Registry()
	if err != nil {
		return nil, err
	}
	page := nav.Page(st.TimelinePage)
	if page == "" {
		pages := reg.Catalog().Pages
		page = pages[len(pages)-1].Page
	}
	return reg.Steps(page, settings.Engine(page).DefaultContent), nil
}
