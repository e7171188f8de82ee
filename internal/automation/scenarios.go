package automation

import "sort"

// Scenarios are the scripts shipped with the binary. They are written
// against the built-in story.
var Scenarios = map[string]*Scenario{
	"tour": {
		Name:        "tour",
		Description: "play the story start to finish",
		Steps: []Action{
			{AtMS: 0, Do: "play"},
		},
	},
	"skim": {
		Name:        "skim",
		Description: "step through quickly, including rapid double presses",
		Steps: []Action{
			{AtMS: 500, Do: "next"},
			{AtMS: 550, Do: "next"},
			{AtMS: 2000, Do: "next"},
			{AtMS: 4000, Do: "next"},
			{AtMS: 4040, Do: "next"},
			{AtMS: 6000, Do: "previous"},
			{AtMS: 8000, Do: "goto", Main: 2, Content: 1},
			{AtMS: 12000, Do: "play"},
		},
	},
	"regions": {
		Name:        "regions",
		Description: "flip between the polar regions while the ice sheets play",
		Steps: []Action{
			{AtMS: 0, Do: "play"},
			{AtMS: 3000, Do: "sub_scene", Arg: "antarctic"},
			{AtMS: 3600, Do: "sub_scene", Arg: "arctic"},
			{AtMS: 7000, Do: "sub_scene", Arg: "antarctic"},
		},
	},
	"menu": {
		Name:        "menu",
		Description: "jump scenes from a menu while paused, then resume",
		Steps: []Action{
			{AtMS: 1000, Do: "pause"},
			{AtMS: 1500, Do: "scene", Arg: "currents"},
			{AtMS: 4000, Do: "play"},
			{AtMS: 9000, Do: "scene", Arg: "coastlines"},
			{AtMS: 9200, Do: "scene", Arg: "melt"},
		},
	},
}

func GetScenario(name string) *Scenario {
	return Scenarios[name]
}

func ListScenarios() []string {
	names := make([]string, 0, len(Scenarios))
	for name := range Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
