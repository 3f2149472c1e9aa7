package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/spikesim/internal/experiment"
	"github.com/san-kum/spikesim/internal/wta"
)

const (
	metadataFile = "metadata.json"
	voltageFile  = "voltage.csv"
	spikesFile   = "spikes.csv"
	historyFile  = "history.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Protocol     string             `json:"protocol"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Dt           float64            `json:"dt"`
	Duration     float64            `json:"duration"`
	Integrator   string             `json:"integrator"`
	Threshold    float64            `json:"threshold"`
	InputSpikes  int                `json:"input_spikes"`
	OutputSpikes int                `json:"output_spikes"`
	FinalWeights []float64          `json:"final_weights"`
	Winners      []int              `json:"winners,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
}

// NewMetadata describes a result without persisting it.
func NewMetadata(id string, seed int64, ts time.Time, res *experiment.Result) RunMetadata {
	meta := RunMetadata{
		ID:           id,
		Protocol:     res.Protocol,
		Timestamp:    ts,
		Seed:         seed,
		Dt:           res.Dt,
		Duration:     res.Duration,
		Integrator:   res.Integrator,
		Threshold:    res.Threshold,
		InputSpikes:  len(res.InputTimes),
		OutputSpikes: len(res.OutputTimes),
		FinalWeights: res.FinalWeights,
		Metrics:      res.Metrics,
	}
	if res.History != nil {
		meta.Winners = res.History.Winners()
	}
	return meta
}

// Save writes a run directory holding metadata.json, voltage.csv,
// spikes.csv and, for trained runs, history.csv.
func (s *Store) Save(seed int64, result *experiment.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", result.Protocol, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := NewMetadata(runID, seed, ts, result)
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, voltageFile), func(w *csv.Writer) error {
		return writeTrace(w, result)
	}); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, spikesFile), func(w *csv.Writer) error {
		return writeSpikes(w, result)
	}); err != nil {
		return "", err
	}
	if result.History != nil {
		if err := writeCSVFile(filepath.Join(runDir, historyFile), func(w *csv.Writer) error {
			return writeHistory(w, result)
		}); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Trace is the recorded potential and weight of the first output and
// synapse.
type Trace struct {
	Times     []float64
	Potential []float64
	Weight    []float64
}

func (s *Store) LoadTrace(runID string) (*Trace, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, voltageFile))
	if err != nil {
		return nil, err
	}

	tr := &Trace{}
	for _, rec := range records {
		if len(rec) < 3 {
			continue
		}
		vals, err := parseFloats(rec[:3])
		if err != nil {
			continue
		}
		tr.Times = append(tr.Times, vals[0])
		tr.Potential = append(tr.Potential, vals[1])
		tr.Weight = append(tr.Weight, vals[2])
	}
	return tr, nil
}

// Spikes holds one population's spike trains.
type Spikes struct {
	Indices []int
	Times   []float64
}

// LoadSpikes returns the input and output spike trains of a run.
func (s *Store) LoadSpikes(runID string) (input, output Spikes, err error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, spikesFile))
	if err != nil {
		return input, output, err
	}

	for _, rec := range records {
		if len(rec) != 3 {
			continue
		}
		idx, err := strconv.Atoi(rec[1])
		if err != nil {
			continue
		}
		t, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			continue
		}
		dst := &output
		if rec[0] == "input" {
			dst = &input
		}
		dst.Indices = append(dst.Indices, idx)
		dst.Times = append(dst.Times, t)
	}
	return input, output, nil
}

// LoadResult rebuilds a result from a run directory. Traces are read back
// at the precision they were written with.
func (s *Store) LoadResult(runID string) (*experiment.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	tr, err := s.LoadTrace(runID)
	if err != nil {
		return nil, err
	}
	in, out, err := s.LoadSpikes(runID)
	if err != nil {
		return nil, err
	}

	res := &experiment.Result{
		Protocol:     meta.Protocol,
		Integrator:   meta.Integrator,
		Dt:           meta.Dt,
		Duration:     meta.Duration,
		Threshold:    meta.Threshold,
		InputIdx:     in.Indices,
		InputTimes:   in.Times,
		OutputIdx:    out.Indices,
		OutputTimes:  out.Times,
		Times:        tr.Times,
		Potential:    tr.Potential,
		Weight:       tr.Weight,
		FinalWeights: meta.FinalWeights,
		Metrics:      meta.Metrics,
		StepsTaken:   len(tr.Times),
	}

	records, err := readCSV(filepath.Join(s.baseDir, runID, historyFile))
	if os.IsNotExist(err) {
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.History = wta.NewHistory()
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		winner, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("history row %v: %w", rec, err)
		}
		vals, err := parseFloats(append([]string{rec[0]}, rec[2:]...))
		if err != nil {
			return nil, fmt.Errorf("history row %v: %w", rec, err)
		}
		res.History.Append(wta.Record{Time: vals[0], Weights: vals[1:], Winner: winner})
	}
	return res, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSVFile(path string, fill func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// readCSV returns every row after the header.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
