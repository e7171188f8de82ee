package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/mapstory/internal/story"
)

var (
	dataDir    string
	configFile string
	storyPath  string
	preset     string
	frameRate  int
	verbose    bool
	// run
	scenarioName string
	duration     float64
	noSave       bool
	// player
	noMenu    bool
	startStep int
	// sweep
	sweepPresets   []string
	sweepScenarios []string
	workers        int
	// serve
	listen string
	// export
	outPath  string
	svgWidth int
)

// main registers the commands; with no subcommand it opens the start menu
// and then the terminal player.
func main() {
	rootCmd := &cobra.Command{
		Use:          "mapstory",
		Short:        "narrated map story player",
		SilenceUsage: true,
		RunE:         runPlayer,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mapstory", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&storyPath, "story", "", "story file (yaml); the built-in story when empty")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "pacing preset")
	rootCmd.PersistentFlags().IntVar(&frameRate, "fps", 0, "frame rate override")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine activity to stderr")
	rootCmd.Flags().BoolVar(&noMenu, "no-menu", false, "skip the start menu")
	rootCmd.Flags().IntVar(&startStep, "step", 1, "main step to start at when the menu is skipped")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "play the story headless and store the trace",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	runCmd.Flags().StringVar(&scenarioName, "scenario", "", "built-in scenario name or scenario file")
	runCmd.Flags().Float64Var(&duration, "time", 0, "seconds to run; 0 runs to the end")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id|latest]",
		Short: "plot progress and active layers of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id|latest]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id|latest]",
		Short: "export a run with its events and samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file; stdout when empty")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id|latest]",
		Short: "render the layer visibility chart of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file; <run_id>.svg when empty")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 1200, "image width in pixels")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list pages, scenes, sub-scenes and layers of the story",
		RunE:  listScenes,
	}

	timelineCmd := &cobra.Command{
		Use:   "timeline",
		Short: "print the timeline steps and beats",
		RunE:  printTimeline,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list pacing presets",
		RunE:  listPresets,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		RunE:  listScenarios,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [story.yaml]",
		Short: "check a story file against the schema and the registry rules",
		Args:  cobra.ExactArgs(1),
		RunE:  validateStory,
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "print the story JSON schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := os.Stdout.Write(story.Schema())
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective config to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run every scenario under every preset in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringSliceVar(&sweepPresets, "presets", nil, "presets to sweep; all when empty")
	sweepCmd.Flags().StringSliceVar(&sweepScenarios, "scenarios", nil, "scenarios to sweep; all when empty")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "runs in parallel")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the engine over HTTP and websockets",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&listen, "listen", "", "listen address; the config value when empty")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportSVGCmd, scenesCmd, timelineCmd,
		presetsCmd, scenariosCmd, validateCmd, schemaCmd, initCmd, sweepCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func logger() *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
}
