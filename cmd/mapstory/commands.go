package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mapstory/internal/automation"
	"github.com/san-kum/mapstory/internal/config"
	"github.com/san-kum/mapstory/internal/engine"
	"github.com/san-kum/mapstory/internal/experiment"
	"github.com/san-kum/mapstory/internal/export"
	"github.com/san-kum/mapstory/internal/server"
	"github.com/san-kum/mapstory/internal/storage"
	"github.com/san-kum/mapstory/internal/story"
	"github.com/san-kum/mapstory/internal/trace"
	"github.com/san-kum/mapstory/internal/tui"
	"github.com/san-kum/mapstory/internal/viz"
)

func runPlayer(cmd *cobra.Command, args []string) error {
	start := startStep - 1
	var autoplay *bool
	if !noMenu {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		st, err := story.Resolve(storyPath)
		if err != nil {
			return err
		}
		steps, err := storySteps(st, settings)
		if err != nil {
			return err
		}
		current := preset
		if current == "" {
			current = "standard"
		}
		sel, err := tui.RunMenu(st.Title, steps, config.ListPresets(), current)
		if err != nil {
			return err
		}
		if sel.Quit {
			return nil
		}
		if sel.Preset != "" {
			preset = sel.Preset
		}
		start = sel.Main
		autoplay = &sel.Autoplay
	}

	s, err := newSession(cmd, nil, 0, engine.Hooks{})
	if err != nil {
		return err
	}
	if autoplay != nil {
		s.settings.Autoplay = *autoplay
	}
	return play(s, start)
}

func play(s *session, start int) error {
	if err := s.exp.Begin(); err != nil {
		return err
	}
	eng := s.exp.Engine()
	defer eng.Close()
	if start > 0 && !eng.GoToStep(start, 0) {
		return fmt.Errorf("no step %d in the timeline", start+1)
	}
	return viz.Run(viz.NewPlayer(eng, s.exp.Recorder(), s.story.Title, s.settings.Frame(), s.settings.Theme))
}

func runHeadless(cmd *cobra.Command, args []string) error {
	var scenario *automation.Scenario
	if scenarioName != "" {
		sc, err := experiment.NewRegistry().GetScenario(scenarioName)
		if err != nil {
			return fmt.Errorf("%w (available: %v)", err, automation.ListScenarios())
		}
		scenario = sc
	}

	limit := time.Duration(duration * float64(time.Second))
	s, err := newSession(cmd, scenario, limit, engine.Hooks{})
	if err != nil {
		return err
	}

	printer := tui.NewPrinter(os.Stdout, true, verbose)
	s.exp.Recorder().Subscribe(printer.Print)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("playing %q...\n", s.story.Title)
	start := time.Now()
	run, err := s.exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID := "(not saved)"
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if runID, err = st.Save(run); err != nil {
			return err
		}
	}

	fmt.Printf("\nsimulated %v in %v\n", run.Duration.Round(time.Millisecond), elapsed.Round(time.Millisecond))
	names := make([]string, 0, len(run.Metrics))
	for name := range run.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	printer.Summary(runID, run.Metrics, names)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	st, err := story.Resolve(storyPath)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	presets, scenarios := sweepPresets, sweepScenarios
	if len(presets) == 0 {
		presets = reg.ListPresets()
	}
	if len(scenarios) == 0 {
		scenarios = reg.ListScenarios()
	}

	var configs []experiment.Config
	for _, p := range presets {
		settings, err := reg.GetPreset(p)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("fps") {
			settings.FrameRate = frameRate
		}
		for _, name := range scenarios {
			sc, err := reg.GetScenario(name)
			if err != nil {
				return err
			}
			configs = append(configs, experiment.Config{Story: st, Settings: settings, Scenario: sc, Preset: p})
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d combinations on %d workers...\n", len(configs), workers)
	start := time.Now()
	runs, err := experiment.NewEnsemble(configs, workers).Run(ctx)
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if !noSave {
		if err := store.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSCENARIO\tDURATION\tTRANSITIONS\tMEAN WAIT\tMAX WAIT\tFLICKERS\tRUN")
	for _, run := range runs {
		id := "-"
		if !noSave {
			if id, err = store.Save(run); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%.0f\t%.2fs\t%.2fs\t%.0f\t%s\n",
			run.Preset, run.Scenario, run.Duration.Seconds(),
			run.Metrics["transitions"], run.Metrics["mean_wait_s"], run.Metrics["max_wait_s"], run.Metrics["flickers"], id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func resolveRun(st *storage.Store, id string) (string, error) {
	if id != "latest" {
		return id, nil
	}
	return st.Latest()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTORY\tTIME\tDURATION\tSCENARIO\tPRESET\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%s\t%s\t%d\n",
			run.ID,
			run.Story,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			orDash(run.Scenario),
			orDash(run.Preset),
			run.Steps,
		)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("story: %s\n", meta.Story)
	fmt.Printf("samples: %d\n\n", len(samples))

	progress := make([]float64, len(samples))
	active := make([]float64, len(samples))
	shown := make(map[string]bool)
	next := 0
	for i, s := range samples {
		for ; next < len(events) && events[next].At <= s.At; next++ {
			switch e := events[next]; e.Kind {
			case trace.KindShow:
				shown[e.Layer] = true
			case trace.KindHide:
				delete(shown, e.Layer)
			}
		}
		progress[i] = s.Progress * 100
		active[i] = float64(len(shown))
	}

	fmt.Println(asciigraph.Plot(progress,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("progress %"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(active,
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("visible layers"),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	data, err := st.Export(runID)
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(export.GanttToSVG(events, samples, svgWidth)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listScenes(cmd *cobra.Command, args []string) error {
	if _, err := loadSettings(cmd); err != nil {
		return err
	}
	st, err := story.Resolve(storyPath)
	if err != nil {
		return err
	}
	reg, err := st.Registry()
	if err != nil {
		return err
	}
	catalog := reg.Catalog()

	fmt.Printf("%s\n\n", st.Title)
	for _, p := range catalog.Pages {
		fmt.Printf("page %s (opens on %s)\n", p.Page, catalog.DefaultScene(p.Page))
		for _, sc := range p.Scenes {
			fmt.Printf("  %s\n", sc)
		}
	}
	subs := make([]string, len(catalog.SubScenes))
	for i, s := range catalog.SubScenes {
		subs[i] = string(s)
	}
	fmt.Printf("\nsub-scenes: %s\n\n", strings.Join(subs, ", "))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAYER\tKIND\tSCENES\tENTER\tEXIT")
	for _, d := range reg.Layers() {
		scenes := make([]string, len(d.Scenes))
		for i, s := range d.Scenes {
			scenes[i] = string(s)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\n", d.ID, d.Kind, strings.Join(scenes, ","), d.EnterDuration(), d.ExitDuration())
	}
	return w.Flush()
}

func printTimeline(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := story.Resolve(storyPath)
	if err != nil {
		return err
	}
	steps, err := storySteps(st, settings)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tBEAT\tDURATION\tCAPTION")
	var total time.Duration
	for i, s := range steps {
		for j := 0; j < s.Len(); j++ {
			c := s.Content(j)
			total += c.Duration
			name := ""
			if j == 0 {
				name = fmt.Sprintf("%d %s", i+1, s.Name)
			}
			caption := c.Caption
			if !c.Primary {
				caption = ""
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%s\n", name, s.Scene, j+1, c.Duration, caption)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ntotal %v over %d steps\n", total, len(steps))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSETTLE\tSUB-SCENE\tBEAT\tFPS\tAUTOPLAY\tTHEME")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%dms\t%d\t%v\t%s\n",
			name, p.SettleMS, p.SubSceneSettleMS, p.DefaultContentMS, p.FrameRate, p.Autoplay, p.Theme)
	}
	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	for _, name := range automation.ListScenarios() {
		sc := automation.GetScenario(name)
		fmt.Printf("  %-10s %s (%d actions, %v)\n", name, sc.Description, len(sc.Steps), sc.Length())
	}
	return nil
}

func validateStory(cmd *cobra.Command, args []string) error {
	st, err := story.Load(args[0])
	if err != nil {
		return err
	}
	reg, err := st.Registry()
	if err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d pages, %d layers)\n", st.Title, len(reg.Catalog().Pages), len(reg.Layers()))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, nil, 0, engine.Hooks{})
	if err != nil {
		return err
	}
	addr := listen
	if addr == "" {
		addr = s.settings.Listen
	}

	srv := server.New(s.exp, server.Options{
		Addr:   addr,
		Frame:  s.settings.Frame(),
		Logger: log.New(os.Stderr, "", log.LstdFlags),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Printf("serving %q on http://%s\n", s.story.Title, addr)
	return srv.Run(ctx)
}
