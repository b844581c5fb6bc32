package config

import (
	"errors"
	"fmt"
	"time"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)
}

// ConfigData represents the complete configuration for an analysis run
type ConfigData struct {
	Station  string       `yaml:"station,omitempty"`
	Data     DataData     `yaml:"data"`
	Analysis AnalysisData `yaml:"analysis"`
	Storage  StorageData  `yaml:"storage,omitempty"`
	Metrics  MetricsData  `yaml:"metrics,omitempty"`
	Log      LogData      `yaml:"log,omitempty"`
}

// DataData says where station files live
type DataData struct {
	Directory string `yaml:"directory"`
	Pattern   string `yaml:"pattern,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
}

// AnalysisData selects what to compute. Year and Start/End are mutually
// exclusive; with neither set the whole merged series is analysed.
type AnalysisData struct {
	Constituents  []string `yaml:"constituents,omitempty"`
	ReferenceTime string   `yaml:"reference_time,omitempty"`
	Year          int      `yaml:"year,omitempty"`
	Start         string   `yaml:"start,omitempty"`
	End           string   `yaml:"end,omitempty"`
	LongestRun    bool     `yaml:"longest_run,omitempty"`
}

// StorageData holds the configuration for the results store
type StorageData struct {
	SQLite      *SQLiteData      `yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `yaml:"timescaledb,omitempty"`
}

type SQLiteData struct {
	Path string `yaml:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `yaml:"connection_string"`
}

// MetricsData configures the Prometheus push of batch metrics
type MetricsData struct {
	Pushgateway string `yaml:"pushgateway,omitempty"`
	Job         string `yaml:"job,omitempty"`
}

type LogData struct {
	File    string `yaml:"file,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// DefaultConstituents are analysed when none are configured
var DefaultConstituents = []string{"M2", "S2"}

// ApplyDefaults fills unset fields
func (c *ConfigData) ApplyDefaults() {
	if c.Data.Pattern == "" {
		c.Data.Pattern = "*.txt"
	}
	if len(c.Analysis.Constituents) == 0 {
		c.Analysis.Constituents = append([]string(nil), DefaultConstituents...)
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "tidegauge"
	}
}

// Validate checks the configuration for contradictions
func (c *ConfigData) Validate() error {
	var errs []error

	if c.Data.Directory == "" {
		errs = append(errs, errors.New("data.directory is required"))
	}
	if c.Data.Workers < 0 {
		errs = append(errs, fmt.Errorf("data.workers must not be negative, got %d", c.Data.Workers))
	}

	a := c.Analysis
	if a.Year != 0 && (a.Start != "" || a.End != "") {
		errs = append(errs, errors.New("analysis.year cannot be combined with analysis.start/end"))
	}
	if (a.Start == "") != (a.End == "") {
		errs = append(errs, errors.New("analysis.start and analysis.end must be set together"))
	}

	if _, err := ParseTime(a.ReferenceTime); err != nil {
		errs = append(errs, fmt.Errorf("analysis.reference_time: %w", err))
	}
	start, errStart := ParseTime(a.Start)
	end, errEnd := ParseEndTime(a.End)
	if errStart != nil {
		errs = append(errs, fmt.Errorf("analysis.start: %w", errStart))
	}
	if errEnd != nil {
		errs = append(errs, fmt.Errorf("analysis.end: %w", errEnd))
	}
	if errStart == nil && errEnd == nil && !start.IsZero() && !end.IsZero() && end.Before(start) {
		errs = append(errs, errors.New("analysis.end is before analysis.start"))
	}

	if c.Storage.SQLite != nil && c.Storage.TimescaleDB != nil {
		errs = append(errs, errors.New("configure only one of storage.sqlite and storage.timescaledb"))
	}

	return errors.Join(errs...)
}

var timeLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{time.RFC3339, false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02", true},
	{"20060102", true},
}

// ParseTime accepts RFC3339, a bare date/time or a date as 2006-01-02 or
// 20060102 (taken as UTC). The empty string yields the zero time.
func ParseTime(v string) (time.Time, error) {
	t, _, err := parseTime(v)
	return t, err
}

// ParseEndTime is ParseTime for the inclusive end of a range: a date with no
// time part covers the whole day, so it resolves to that day's last instant.
func ParseEndTime(v string) (time.Time, error) {
	t, dateOnly, err := parseTime(v)
	if err != nil || !dateOnly {
		return t, err
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

func parseTime(v string) (time.Time, bool, error) {
	if v == "" {
		return time.Time{}, false, nil
	}
	for _, l := range timeLayouts {
		if t, err := time.ParseInLocation(l.layout, v, time.UTC); err == nil {
			return t.UTC(), l.dateOnly, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognised time %q", v)
}

// Spec renders the configured backend in the form store.Open accepts, or ""
// when no store is configured
func (s StorageData) Spec() string {
	switch {
	case s.TimescaleDB != nil && s.TimescaleDB.ConnectionString != "":
		return s.TimescaleDB.ConnectionString
	case s.SQLite != nil && s.SQLite.Path != "":
		return "sqlite:" + s.SQLite.Path
	}
	return ""
}
