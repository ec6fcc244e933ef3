package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/pastryfall/internal/fall"
	"github.com/san-kum/pastryfall/internal/scene"
)

const (
	metadataFile = "metadata.json"
	heightsFile  = "heights.csv"
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
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Frames    int                `json:"frames"`
	Bodies    int                `json:"bodies"`
	Every     int                `json:"sample_every"`
	Params    fall.Params        `json:"params"`
	Pastries  []scene.Kind       `json:"pastries"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta and the height trace under a new run directory and returns its id.
func (s *Store) Save(meta RunMetadata, tr *Trace) (string, error) {
	name := meta.Preset
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID, runDir, err := s.newRunDir(fmt.Sprintf("%s_%s", name, now.Format("20060102-150405.000")))
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, heightsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := tr.WriteCSV(csvFile); err != nil {
		return "", err
	}
	return runID, nil
}

// newRunDir creates a fresh directory for base, appending -2, -3, ... when
// a run with the same id already exists.
func (s *Store) newRunDir(base string) (string, string, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", "", err
	}
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
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

func (s *Store) LoadTrace(runID string) (*Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, heightsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

type exportData struct {
	Meta    *RunMetadata `json:"meta"`
	Ticks   []int        `json:"ticks"`
	Heights [][]float64  `json:"heights"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, tr *Trace) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{Meta: meta, Ticks: tr.Ticks, Heights: tr.Heights})
}

// WriteCSV writes one row per sample: the tick, then each body's height.
// Rows are as wide as the body count at that sample.
func (tr *Trace) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)

	header := []string{"tick"}
	for i := 0; i < tr.Width(); i++ {
		header = append(header, fmt.Sprintf("h%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, tick := range tr.Ticks {
		row := []string{strconv.Itoa(tick)}
		for _, h := range tr.Heights[i] {
			row = append(row, strconv.FormatFloat(h, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func ReadCSV(in io.Reader) (*Trace, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	tr := &Trace{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}
		tick, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		heights := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			h, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			heights = append(heights, h)
		}
		tr.Ticks = append(tr.Ticks, tick)
		tr.Heights = append(tr.Heights, heights)
	}
	return tr, nil
}
