package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/biosim/config"
)

// CSVLog is a CSV file of gocsv-tagged records. The header is written with
// the first batch.
type CSVLog struct {
	f             *os.File
	headerWritten bool
}

// CreateCSVLog creates (or truncates) the file at path.
func CreateCSVLog(path string) (*CSVLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &CSVLog{f: f}, nil
}

// Write appends records, a slice of csv-tagged structs.
func (c *CSVLog) Write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// Close closes the file. It is safe to call more than once.
func (c *CSVLog) Close() error {
	if c == nil || c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

// OutputManager handles structured run output with CSV logging.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir          string
	yearly       *CSVLog
	distribution *CSVLog
	bookmarks    *CSVLog
	perf         *CSVLog
}

var outputFiles = []string{"yearly.csv", "distribution.csv", "bookmarks.csv", "perf.csv"}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	targets := []**CSVLog{&om.yearly, &om.distribution, &om.bookmarks, &om.perf}
	for i, name := range outputFiles {
		log, err := CreateCSVLog(filepath.Join(dir, name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		*targets[i] = log
	}

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteYear writes a year record to yearly.csv.
func (om *OutputManager) WriteYear(stats YearStats) error {
	if om == nil {
		return nil
	}
	if err := om.yearly.Write([]YearStats{stats}); err != nil {
		return fmt.Errorf("writing yearly stats: %w", err)
	}
	return nil
}

// WriteDistribution writes per-species distribution rows to distribution.csv.
func (om *OutputManager) WriteDistribution(rows []DistributionRow) error {
	if om == nil || len(rows) == 0 {
		return nil
	}
	if err := om.distribution.Write(rows); err != nil {
		return fmt.Errorf("writing distribution: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.Write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, year int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.Write([]PerfStatsCSV{stats.ToCSV(year)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*CSVLog{om.yearly, om.distribution, om.bookmarks, om.perf} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
