package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

type jsonEnvelope struct {
	ExportedAt time.Time `json:"exported_at"`
	Total      int       `json:"total"`
	Results    []Record  `json:"results"`
}

// WriteJSON writes records inside a small envelope with export metadata.
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonEnvelope{
		ExportedAt: time.Now().UTC(),
		Total:      len(records),
		Results:    records,
	})
}

// ExportJSON writes records to a file.
func ExportJSON(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, records); err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	return nil
}

// JSONFilename returns a timestamped filename for a batch.
func JSONFilename(prefix string) string {
	return fmt.Sprintf("%s_%s.json", prefix, time.Now().Format("20060102_150405"))
}
