// Package store keeps headless runs on disk: one directory per run holding
// metadata.json and a metrics.csv time series.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "metrics.csv"
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
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Particles int                `json:"particles"`
	Colors    int                `json:"colors"`
	Neighbors string             `json:"neighbors"`
	Dt        float64            `json:"dt"`
	Ticks     int                `json:"ticks"`
	Metrics   map[string]float64 `json:"metrics"`
	Rules     [][]float64        `json:"rules"`
}

// Save writes meta and rec under a fresh run directory and returns its ID.
// A zero Timestamp is set to now.
func (s *Store) Save(meta RunMetadata, rec *Recording) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("seed%d_%s", meta.Seed, meta.Timestamp.Format("20060102-150405.000000"))
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return "", err
	}

	if rec == nil {
		return meta.ID, nil
	}

	err = writeFile(filepath.Join(runDir, seriesFile), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(append([]string{"time"}, rec.Names...)); err != nil {
			return err
		}
		for i, t := range rec.Times {
			row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
			for _, v := range rec.Rows[i] {
				row = append(row, strconv.FormatFloat(v, 'g', 8, 64))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// writeFile creates path and hands it to write. A failed close is reported
// like a failed write.
func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// List returns every readable run, oldest first. A missing base directory
// is an empty store.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSeries reads a run's metrics back. Unparseable rows are skipped.
func (s *Store) LoadSeries(runID string) (*Recording, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return NewRecording(), nil
	}

	rec := NewRecording(records[0][1:]...)
	for _, record := range records[1:] {
		if len(record) != len(rec.Names)+1 {
			continue
		}
		values, ok := parseRow(record)
		if !ok {
			continue
		}
		rec.Times = append(rec.Times, values[0])
		rec.Rows = append(rec.Rows, values[1:])
	}
	return rec, nil
}

func parseRow(record []string) ([]float64, bool) {
	out := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
