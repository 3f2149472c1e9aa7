package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/san-kum/spikesim/internal/analysis"
	"github.com/san-kum/spikesim/internal/config"
	"github.com/san-kum/spikesim/internal/export"
	"github.com/san-kum/spikesim/internal/storage"
	"github.com/san-kum/spikesim/internal/viz"
	"github.com/spf13/cobra"
)

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
	fmt.Fprintln(w, "ID\tPROTOCOL\tINTEGRATOR\tDT\tDURATION\tOUT SPIKES\tFINAL WEIGHTS\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.1f\t%d\t%s\t%s\n",
			run.ID, run.Protocol, run.Integrator, run.Dt, run.Duration,
			run.OutputSpikes, viz.FormatWeights(run.FinalWeights),
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s (%s, dt=%gms)", args[0], res.Protocol, res.Dt)))
	fmt.Println()
	fmt.Println(viz.PotentialPlot(res.Potential, res.Threshold, 80, 12, "membrane potential v[0]"))
	fmt.Println()
	fmt.Println(viz.WeightPlot(res.Weight, 80, 8))
	fmt.Println()
	fmt.Println(viz.Subtle.Render("input"))
	fmt.Print(viz.Raster(res.InputIdx, res.InputTimes, 1, 0, res.Duration, 80))
	fmt.Println(viz.Subtle.Render("output"))
	fmt.Print(viz.Raster(res.OutputIdx, res.OutputTimes, len(res.FinalWeights), 0, res.Duration, 80))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, res)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, res)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	stats := analysis.Summarize(res.InputTimes, res.OutputTimes, res.Duration)
	rows := map[string]string{
		"input spikes":   fmt.Sprintf("%d", stats.InputSpikes),
		"output spikes":  fmt.Sprintf("%d", stats.OutputSpikes),
		"input rate":     fmt.Sprintf("%.2f Hz", stats.InputRate),
		"output rate":    fmt.Sprintf("%.2f Hz", stats.OutputRate),
		"mean isi":       fmt.Sprintf("%.3f ms", stats.MeanISI),
		"isi cv":         fmt.Sprintf("%.3f", stats.CV),
		"mean latency":   fmt.Sprintf("%.3f ms", stats.MeanLatency),
		"latency range":  fmt.Sprintf("%.3f-%.3f ms", stats.MinLatency, stats.MaxLatency),
		"final weights":  viz.FormatWeights(res.FinalWeights),
		"winner history": "-",
	}
	if res.History != nil {
		rows["winner history"] = fmt.Sprintf("%d windows, win rate %.3f", res.History.Len(), res.History.WinRate())
	}

	spec := analysis.PowerSpectrum(res.Potential, res.Dt)
	var plot string
	if len(spec.Freq) > 0 {
		f, p := spec.Dominant()
		rows["dominant freq"] = fmt.Sprintf("%.2f Hz (power %.4g)", f, p)
		plot = viz.SpectrumPlot(spec.Power, spec.Freq[len(spec.Freq)-1], 80, 8)
	}

	fmt.Println(viz.Summary(args[0], rows))
	if plot != "" {
		fmt.Println()
		fmt.Println(plot)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	protocols := config.ListProtocols()
	if len(args) > 0 {
		if config.ListPresets(args[0]) == nil {
			return fmt.Errorf("unknown protocol: %s", args[0])
		}
		protocols = args
	}

	for _, p := range protocols {
		fmt.Printf("%s:\n", p)
		for _, name := range config.ListPresets(p) {
			cfg := config.GetPreset(p, name)
			fmt.Printf("  %-10s dt=%g outputs=%d w0=%g duration=%gms\n",
				name, cfg.Dt, cfg.Outputs, cfg.Synapse.WInit, cfg.TotalDuration())
		}
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	files := map[string]string{
		args[0] + "_potential.svg": export.PotentialSVG(res.Potential, res.Dt, res.Threshold, 800, 300),
		args[0] + "_raster.svg":    export.RasterSVG(res.OutputIdx, res.OutputTimes, len(res.FinalWeights), res.Duration, 800, 120),
	}
	for name, svg := range files {
		if svg == "" {
			continue
		}
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}
