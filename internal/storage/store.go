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

	"github.com/google/uuid"

	"github.com/san-kum/mapstory/internal/trace"
)

const (
	metadataFile = "metadata.json"
	eventsFile   = "events.csv"
	progressFile = "progress.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Story     string             `json:"story"`
	Scenario  string             `json:"scenario"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Duration  float64            `json:"duration"`
	FrameRate int                `json:"frame_rate"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is a finished headless run as handed to Save.
type Run struct {
	Story     string
	Scenario  string
	Preset    string
	Duration  time.Duration
	FrameRate int
	Steps     int
	Events    []trace.Event
	Samples   []trace.Sample
	Metrics   map[string]float64
}

func (s *Store) Save(run *Run) (string, error) {
	runID := fmt.Sprintf("%s_%s", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Story:     run.Story,
		Scenario:  run.Scenario,
		Preset:    run.Preset,
		Timestamp: time.Now(),
		Duration:  run.Duration.Seconds(),
		FrameRate: run.FrameRate,
		Steps:     run.Steps,
		Metrics:   run.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeEvents(filepath.Join(runDir, eventsFile), run.Events); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, progressFile), run.Samples); err != nil {
		return "", err
	}
	return runID, nil
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

func writeEvents(path string, events []trace.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "kind", "layer", "main", "content", "detail"}); err != nil {
		return err
	}
	for _, e := range events {
		row := []string{
			strconv.FormatFloat(e.At.Seconds(), 'f', 6, 64),
			string(e.Kind),
			e.Layer,
			strconv.Itoa(e.Main),
			strconv.Itoa(e.Content),
			e.Detail,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeSamples(path string, samples []trace.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "progress"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.At.Seconds(), 'f', 6, 64),
			strconv.FormatFloat(s.Progress, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every saved run, oldest first.
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

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs in %s", s.baseDir)
	}
	return runs[len(runs)-1].ID, nil
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

func (s *Store) LoadEvents(runID string) ([]trace.Event, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}

	events := make([]trace.Event, 0, len(records))
	for _, r := range records {
		if len(r) < 6 {
			continue
		}
		at, err := strconv.ParseFloat(r[0], 64)
		if err != nil {
			continue
		}
		main, _ := strconv.Atoi(r[3])
		content, _ := strconv.Atoi(r[4])
		events = append(events, trace.Event{
			At:      seconds(at),
			Kind:    trace.Kind(r[1]),
			Layer:   r[2],
			Main:    main,
			Content: content,
			Detail:  r[5],
		})
	}
	return events, nil
}

func (s *Store) LoadSamples(runID string) ([]trace.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, progressFile))
	if err != nil {
		return nil, err
	}

	samples := make([]trace.Sample, 0, len(records))
	for _, r := range records {
		if len(r) < 2 {
			continue
		}
		at, err := strconv.ParseFloat(r[0], 64)
		if err != nil {
			continue
		}
		p, err := strconv.ParseFloat(r[1], 64)
		if err != nil {
			continue
		}
		samples = append(samples, trace.Sample{At: seconds(at), Progress: p})
	}
	return samples, nil
}

// readCSV returns the data rows of a file, without its header.
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

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Microsecond)
}
