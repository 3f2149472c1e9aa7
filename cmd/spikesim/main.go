package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	mysqlDSN   string
	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	window     float64
	epochs     int
	outputs    int
	seed       int64
	wInit      float64
	jitter     float64
	stepsFrame int
	// sweep / tune
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	workers    int
	trials     int
	gridParams []string
	objective  string
	outDir     string
)

// main registers the commands and flags and executes the root command,
// exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "spikesim",
		Short:        "spiking network binary classifier lab",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spikesim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine diagnostics to stderr")

	runCmd := &cobra.Command{
		Use:   "run [protocol]",
		Short: "run a protocol (demo or training) and save the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProtocol,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&mysqlDSN, "mysql-dsn", "", "also record the run summary in MySQL")

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "run the WTA training protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProtocol(cmd, []string{"training"})
		},
	}
	addRunFlags(trainCmd)
	trainCmd.Flags().StringVar(&mysqlDSN, "mysql-dsn", "", "also record the run summary in MySQL")

	liveCmd := &cobra.Command{
		Use:   "live [protocol]",
		Short: "step a protocol with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsFrame, "steps", 25, "simulation steps per frame")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same protocol",
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [protocol]",
		Short: "measure engine throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchProtocol,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [protocol]",
		Short: "sweep one parameter in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "w_init", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "points", 6, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all CPUs)")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat training with jittered input",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addRunFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	mcCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all CPUs)")

	tuneCmd := &cobra.Command{
		Use:   "tune [protocol]",
		Short: "grid search over parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridParams, "grid", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&objective, "objective", "peak_potential", "metric to minimize, or win_rate / spikes to maximize")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all CPUs)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario and save every step",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot potential, weight and spikes of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the potential and weight trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "write potential and raster plots of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spike statistics and potential spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [protocol]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, trainCmd, liveCmd, compareCmd, benchCmd, sweepCmd, mcCmd, tuneCmd, scenarioCmd,
		listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep (ms)")
	cmd.Flags().Float64Var(&duration, "time", 50, "demo duration (ms)")
	cmd.Flags().StringVar(&integrator, "integrator", "exact", "integrator (exact, euler, rk4)")
	cmd.Flags().Float64Var(&window, "window", 20, "WTA window (ms)")
	cmd.Flags().IntVar(&epochs, "epochs", 10, "training epochs")
	cmd.Flags().IntVar(&outputs, "outputs", 1, "output neurons")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for jitter")
	cmd.Flags().Float64Var(&wInit, "w0", 1, "initial synaptic weight")
	cmd.Flags().Float64Var(&jitter, "jitter", 0, "input timing jitter (ms, std dev)")
}

func newLogger() *log.Logger {
	var out io.Writer = io.Discard
	if verbose {
		out = os.Stderr
	}
	return log.New(out, "spikesim: ", log.LstdFlags|log.Lmsgprefix)
}
