package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/spikesim/internal/experiment"
)

type ExportData struct {
	Protocol     string             `json:"protocol"`
	Integrator   string             `json:"integrator"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	Steps        int                `json:"steps"`
	InputTimes   []float64          `json:"input_times"`
	OutputIdx    []int              `json:"output_indices"`
	OutputTimes  []float64          `json:"output_times"`
	Times        []float64          `json:"times"`
	Potential    []float64          `json:"potential"`
	Weight       []float64          `json:"weight"`
	FinalWeights []float64          `json:"final_weights"`
	Winners      []int              `json:"winners,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
}

func ExportJSON(w io.Writer, result *experiment.Result) error {
	data := ExportData{
		Protocol:     result.Protocol,
		Integrator:   result.Integrator,
		Dt:           result.Dt,
		Duration:     result.Duration,
		Steps:        result.StepsTaken,
		InputTimes:   result.InputTimes,
		OutputIdx:    result.OutputIdx,
		OutputTimes:  result.OutputTimes,
		Times:        result.Times,
		Potential:    result.Potential,
		Weight:       result.Weight,
		FinalWeights: result.FinalWeights,
		Metrics:      result.Metrics,
	}
	if result.History != nil {
		data.Winners = result.History.Winners()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the potential and weight trace.
func ExportCSV(w io.Writer, result *experiment.Result) error {
	cw := csv.NewWriter(w)
	if err := writeTrace(cw, result); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeTrace(w *csv.Writer, result *experiment.Result) error {
	if err := w.Write([]string{"time", "v0", "w0"}); err != nil {
		return err
	}
	for i, t := range result.Times {
		row := []string{formatFloat(t), "0", "0"}
		if i < len(result.Potential) {
			row[1] = formatFloat(result.Potential[i])
		}
		if i < len(result.Weight) {
			row[2] = formatFloat(result.Weight[i])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeSpikes(w *csv.Writer, result *experiment.Result) error {
	if err := w.Write([]string{"population", "index", "time"}); err != nil {
		return err
	}
	for i, t := range result.InputTimes {
		if err := w.Write([]string{"input", strconv.Itoa(result.InputIdx[i]), formatFloat(t)}); err != nil {
			return err
		}
	}
	for i, t := range result.OutputTimes {
		if err := w.Write([]string{"output", strconv.Itoa(result.OutputIdx[i]), formatFloat(t)}); err != nil {
			return err
		}
	}
	return nil
}

func writeHistory(w *csv.Writer, result *experiment.Result) error {
	header := []string{"time", "winner"}
	for k := range result.FinalWeights {
		header = append(header, "w"+strconv.Itoa(k))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range result.History.Records() {
		row := []string{formatFloat(rec.Time), strconv.Itoa(rec.Winner)}
		for _, v := range rec.Weights {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
