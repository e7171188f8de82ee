package automation

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mapstory/internal/loop"
	"github.com/san-kum/mapstory/internal/nav"
)

var (
	ErrUnknownAction = errors.New("automation: unknown action")
	ErrMissingArg    = errors.New("automation: action needs an argument")
	ErrNegativeTime  = errors.New("automation: at_ms must not be negative")
)

// Scenario is a scripted sequence of host actions.
type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Steps       []Action `yaml:"steps"`
}

// Action is one host call at a point on the engine clock.
type Action struct {
	AtMS    int    `yaml:"at_ms"`
	Do      string `yaml:"do"`
	Arg     string `yaml:"arg,omitempty"`
	Main    int    `yaml:"main,omitempty"`
	Content int    `yaml:"content,omitempty"`
}

func (a Action) At() time.Duration { return time.Duration(a.AtMS) * time.Millisecond }

func (a Action) String() string {
	switch a.Do {
	case "goto":
		return fmt.Sprintf("goto(%d,%d)", a.Main, a.Content)
	case "content":
		return fmt.Sprintf("content(%d)", a.Content)
	case "page", "scene", "sub_scene":
		return fmt.Sprintf("%s(%s)", a.Do, a.Arg)
	default:
		return a.Do
	}
}

// Host is the part of the engine a script drives.
type Host interface {
	SetPage(p nav.Page) error
	SetScene(s nav.Scene) error
	SetSubScene(s nav.SubScene) error
	SetContentIndex(n int) error
	Play()
	Pause()
	Toggle()
	Next() bool
	Previous() bool
	GoToStep(main, content int) bool
	AfterFunc(d time.Duration, fn func()) *loop.Timer
}

// Outcome records what happened when an action ran.
type Outcome struct {
	At       time.Duration
	Action   Action
	Accepted bool
	Err      error
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	for i, a := range s.Steps {
		if a.AtMS < 0 {
			return fmt.Errorf("step %d: %w", i+1, ErrNegativeTime)
		}
		switch a.Do {
		case "play", "pause", "toggle", "next", "previous", "goto", "content":
		case "page", "scene", "sub_scene":
			if a.Arg == "" {
				return fmt.Errorf("step %d %s: %w", i+1, a.Do, ErrMissingArg)
			}
		default:
			return fmt.Errorf("step %d: %w %q", i+1, ErrUnknownAction, a.Do)
		}
	}
	return nil
}

// Length is the time of the last action.
func (s *Scenario) Length() time.Duration {
	var end time.Duration
	for _, a := range s.Steps {
		if a.At() > end {
			end = a.At()
		}
	}
	return end
}

// Schedule queues every action on the host's clock, relative to now. Actions
// sharing a time run in file order. report, if set, hears each outcome. The
// returned timers can be stopped to abandon the script.
func Schedule(h Host, s *Scenario, report func(Outcome)) []*loop.Timer {
	steps := make([]Action, len(s.Steps))
	copy(steps, s.Steps)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].AtMS < steps[j].AtMS })

	timers := make([]*loop.Timer, 0, len(steps))
	for _, a := range steps {
		a := a
		timers = append(timers, h.AfterFunc(a.At(), func() {
			accepted, err := Apply(h, a)
			if report != nil {
				report(Outcome{At: a.At(), Action: a, Accepted: accepted, Err: err})
			}
		}))
	}
	return timers
}

// Apply performs a single action. accepted is false when the host refused a
// step, for example inside the debounce window.
func Apply(h Host, a Action) (accepted bool, err error) {
	switch a.Do {
	case "play":
		h.Play()
	case "pause":
		h.Pause()
	case "toggle":
		h.Toggle()
	case "next":
		return h.Next(), nil
	case "previous":
		return h.Previous(), nil
	case "goto":
		return h.GoToStep(a.Main, a.Content), nil
	case "page":
		err = h.SetPage(nav.Page(a.Arg))
	case "scene":
		err = h.SetScene(nav.Scene(a.Arg))
	case "sub_scene":
		err = h.SetSubScene(nav.SubScene(a.Arg))
	case "content":
		err = h.SetContentIndex(a.Content)
	default:
		err = fmt.Errorf("%w %q", ErrUnknownAction, a.Do)
	}
	return err == nil, err
}
