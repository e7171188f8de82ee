package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/mapstory/internal/trace"
)

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Events  []trace.Event  `json:"events"`
	Samples []trace.Sample `json:"samples"`
}

// Export gathers a saved run into one document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Events: events, Samples: samples}, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

// WriteJSON writes data indented, for files and stdout alike.
func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
