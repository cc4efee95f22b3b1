// Package storage archives completed runs under a data directory: one
// subdirectory per run holding JSON metadata, the per-step metric
// traces as CSV and the final particle positions as XYZ.
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

	"github.com/wouterel/meshmd/internal/particle"
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
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      uint64             `json:"steps"`
	Integrator string             `json:"integrator"`
	NParticles int                `json:"n_particles"`
	Box        [3]float64         `json:"box"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one run directory: metadata.json, traces.csv (one column
// per metric trace, one row per observed step) and final.xyz.
func (s *Store) Save(meta RunMetadata, traces map[string][]float64, store *particle.Store) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Integrator, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.NParticles = store.N()
	box := store.Box()
	meta.Box = [3]float64{box.Lx, box.Ly, box.Lz}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.saveTraces(filepath.Join(runDir, "traces.csv"), traces); err != nil {
		return "", err
	}

	if err := WriteXYZ(filepath.Join(runDir, "final.xyz"), store); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) saveTraces(path string, traces map[string][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	names := make([]string, 0, len(traces))
	rows := 0
	for name, samples := range traces {
		names = append(names, name)
		if len(samples) > rows {
			rows = len(samples)
		}
	}
	sort.Strings(names)

	header := append([]string{"step"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		row := []string{strconv.Itoa(i)}
		for _, name := range names {
			samples := traces[name]
			if i < len(samples) {
				row = append(row, strconv.FormatFloat(samples[i], 'f', 6, 64))
			} else {
				row = append(row, "0")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTraces reads traces.csv back as named columns.
func (s *Store) LoadTraces(runID string) (map[string][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "traces.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traces := make(map[string][]float64)
	if len(records) < 2 {
		return traces, nil
	}

	header := records[0]
	for col := 1; col < len(header); col++ {
		samples := make([]float64, 0, len(records)-1)
		for i := 1; i < len(records); i++ {
			val, err := strconv.ParseFloat(records[i][col], 64)
			if err != nil {
				continue
			}
			samples = append(samples, val)
		}
		traces[header[col]] = samples
	}

	return traces, nil
}

// WriteXYZ writes the local particle positions in the plain XYZ format:
// a count line, a comment line with the box edges, then one
// "type x y z" line per particle.
func WriteXYZ(path string, store *particle.Store) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	box := store.Box()
	fmt.Fprintf(file, "%d\n", store.N())
	fmt.Fprintf(file, "box %g %g %g\n", box.Lx, box.Ly, box.Lz)

	pos := store.Positions()
	typ := store.Types()
	names := store.TypeNames()
	for i := 0; i < store.N(); i++ {
		fmt.Fprintf(file, "%s %.6f %.6f %.6f\n", names[typ[i]], pos[i].X, pos[i].Y, pos[i].Z)
	}

	return nil
}
