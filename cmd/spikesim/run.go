package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/spikesim/internal/automation"
	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/experiment"
	"github.com/san-kum/spikesim/internal/storage"
	"github.com/san-kum/spikesim/internal/viz"
	"github.com/spf13/cobra"
)

// buildConfig layers preset, config file and explicitly set flags, in that
// order.
func buildConfig(cmd *cobra.Command, protocol string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(protocol, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(protocol))
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if protocol == "" {
			protocol = cfg.Protocol
		}
	}
	if protocol != "" {
		cfg.Protocol = protocol
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("window") {
		cfg.Training.Window = window
	}
	if flags.Changed("epochs") {
		cfg.Training.Epochs = epochs
	}
	if flags.Changed("outputs") {
		cfg.Outputs = outputs
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("w0") {
		cfg.Synapse.WInit = wInit
	}
	if flags.Changed("jitter") {
		cfg.Training.Jitter = jitter
	}

	return cfg, cfg.Validate()
}

func protocolArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func setupExperiment(cfg *config.Config) (*experiment.Experiment, error) {
	registry := experiment.NewRegistry()
	exp := experiment.New(cfg, registry)
	exp.SetLogger(newLogger())
	if err := exp.Setup(registry.DefaultMetrics(cfg.Neuron.Threshold)); err != nil {
		return nil, err
	}
	return exp, nil
}

func runProtocol(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, protocolArg(args))
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := setupExperiment(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s protocol...\n", cfg.Protocol)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Seed, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n\n", result.StepsTaken)

	printReport(cfg, result)

	if mysqlDSN != "" {
		if err := recordSQL(ctx, st, runID); err != nil {
			return err
		}
		fmt.Println("run recorded in mysql")
	}
	return nil
}

func printReport(cfg *config.Config, res *experiment.Result) {
	fmt.Printf("Input spikes: %s\n", formatTimes(res.InputTimes))
	fmt.Printf("Output spikes: %s\n", formatTimes(res.OutputTimes))
	fmt.Printf("Final weight: %s\n", viz.FormatWeights(res.FinalWeights))

	if res.History != nil {
		fmt.Println("\nWeights after each epoch:")
		snaps := res.History.EpochWeights(cfg.WindowsPerEpoch())
		for e, w := range snaps {
			fmt.Printf("Epoch %d: %s\n", e+1, viz.FormatWeights(w))
		}
		fmt.Printf("Epoch %d: %s\n", len(snaps)+1, viz.FormatWeights(res.FinalWeights))

		fmt.Printf("\nWinner history (every %g ms):\n", cfg.Training.Window)
		fmt.Println(res.History.String())
	}

	fmt.Println()
	fmt.Println(viz.PotentialPlot(res.Potential, res.Threshold, 80, 10, "output neuron 0 membrane potential (threshold dashed)"))
	fmt.Println()

	rows := map[string]string{}
	for name, val := range res.Metrics {
		rows[name] = fmt.Sprintf("%.6f", val)
	}
	fmt.Println(viz.Summary("metrics", rows))
}

func formatTimes(ts []float64) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = strconv.FormatFloat(t, 'f', 2, 64) + " ms"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func recordSQL(ctx context.Context, st *storage.Store, runID string) error {
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	sink, err := storage.OpenSQLSink(mysqlDSN)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("mysql schema: %w", err)
	}
	return sink.Write(ctx, *meta)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, protocolArg(args))
	if err != nil {
		return err
	}
	// diagnostics would corrupt the alternate screen
	verbose = false

	exp, err := setupExperiment(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewLiveModel(exp, stepsFrame), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.LiveModel); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = experiment.NewRegistry().ListIntegrators()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tOUTPUT SPIKES\tFIRST SPIKE\tFINAL WEIGHTS\tPEAK V\tTIME")

	for _, name := range names {
		cfg, err := buildConfig(cmd, "")
		if err != nil {
			return err
		}
		cfg.Integrator = name

		exp, err := setupExperiment(cfg)
		if err != nil {
			return err
		}
		start := time.Now()
		res, err := exp.Run(context.Background())
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)

		first := "-"
		if len(res.OutputTimes) > 0 {
			first = fmt.Sprintf("%.2fms", res.OutputTimes[0])
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.4f\t%v\n",
			name, len(res.OutputTimes), first, viz.FormatWeights(res.FinalWeights), res.Metrics["peak_potential"], elapsed)
	}

	return w.Flush()
}

func benchProtocol(cmd *cobra.Command, args []string) error {
	protocol := protocolArg(args)
	if protocol == "" {
		protocol = "training"
	}

	fmt.Printf("benchmarking %s\n\n", protocol)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, integ := range experiment.NewRegistry().ListIntegrators() {
		for _, step := range []float64{0.1, 0.05, 0.01} {
			cfg := config.GetPreset(protocol, "default")
			if cfg == nil {
				return fmt.Errorf("unknown protocol: %s", protocol)
			}
			cfg.Integrator = integ
			cfg.Dt = step

			exp, err := setupExperiment(cfg)
			if err != nil {
				return err
			}
			start := time.Now()
			res, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%.2fms\t%d\t%v\t%.0f\n",
				integ, step, res.StepsTaken, elapsed, float64(res.StepsTaken)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, protocolArg(args))
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Workers:  workers,
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("sweeping %s over [%g, %g] (%d points)\n\n", sweepParam, sweepMin, sweepMax, sweepSteps)
	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tOUTPUT SPIKES\tWIN RATE\tFINAL WEIGHTS\tPEAK V\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%d\t%s\t%s\t%.4f\n",
			r.ParamValue, r.OutputSpikes, formatRate(r.WinRate), viz.FormatWeights(r.FinalWeights), r.Metrics["peak_potential"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, "training")
	if err != nil {
		return err
	}
	j := cfg.Training.Jitter
	if j == 0 {
		j = 0.5
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("monte carlo: %d trials, jitter %.2fms\n\n", trials, j)
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:      cfg,
		Jitter:    j,
		NumTrials: trials,
		Workers:   workers,
		Seed:      cfg.Seed,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tOUTPUT SPIKES\tWIN RATE\tCONSISTENT\tFINAL WEIGHTS")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%v\t%s\n",
			r.TrialID, r.Seed, r.OutputSpikes, formatRate(r.WinRate), r.Consistent, viz.FormatWeights(r.FinalWeights))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	consistent, meanRate := automation.MonteCarloStats(results)
	fmt.Printf("\nconsistent winner: %d/%d trials, mean win rate %.3f\n", consistent, len(results), meanRate)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, protocolArg(args))
	if err != nil {
		return err
	}
	if len(gridParams) == 0 {
		return fmt.Errorf("at least one --grid name=v1,v2 is required")
	}

	names := make([]string, 0, len(gridParams))
	ranges := make([][]float64, 0, len(gridParams))
	for _, spec := range gridParams {
		name, values, err := parseGrid(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	var obj automation.Objective
	switch objective {
	case "spikes":
		obj = func(r *experiment.Result) float64 { return -float64(len(r.OutputTimes)) }
	case "win_rate":
		obj = func(r *experiment.Result) float64 {
			if r.History == nil {
				return math.Inf(1)
			}
			return -r.History.WinRate()
		}
	default:
		obj = automation.MetricObjective(objective)
	}

	ctx, cancel := signalContext()
	defer cancel()

	grid := automation.NewGridSearch(names, ranges, workers)
	fmt.Printf("grid search over %d points\n", len(grid.Points()))
	best, score, err := grid.Search(ctx, cfg, experiment.NewRegistry(), obj)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no grid point produced a finite score")
	}

	fmt.Printf("best score: %.6f\n", score)
	for _, n := range names {
		fmt.Printf("  %s = %g\n", n, best[n])
	}
	return nil
}

func parseGrid(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid grid %q, want name=v1,v2", spec)
	}
	fields := strings.Split(list, ",")
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("grid %s: %w", name, err)
		}
		values[i] = v
	}
	return name, values, nil
}

func formatRate(r float64) string {
	if math.IsNaN(r) {
		return "-"
	}
	return fmt.Sprintf("%.3f", r)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), newLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPROTOCOL\tRUN ID\tOUTPUT SPIKES\tFINAL WEIGHTS")
	for _, r := range results {
		runID, err := st.Save(r.Config.Seed, r.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.Name, r.Config.Protocol, runID, len(r.Result.OutputTimes), viz.FormatWeights(r.Result.FinalWeights))
	}
	return w.Flush()
}
