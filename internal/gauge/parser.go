// Package gauge turns BODC-style tide-gauge text files into typed series
// and provides the merge, segment and contiguous-run operations that run on
// them.
package gauge

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/tidegauge/internal/types"
)

// HeaderLines is the number of metadata lines at the top of a station file
const HeaderLines = 11

const columns = 5

var timestampLayouts = []string{
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04",
}

// FileStats summarises one parsed file
type FileStats struct {
	File            string
	Rows            int
	FlaggedSeaLevel int
	FlaggedResidual int
	Flags           map[string]int // sea level flag letter -> count
}

// ReadFile parses the station file at path
func ReadFile(path string) (*types.Series, error) {
	s, _, err := ReadFileWithStats(path)
	return s, err
}

// ReadFileWithStats parses the station file at path and reports row counts
func ReadFileWithStats(path string) (*types.Series, FileStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, FileStats{File: path}, &ParseError{File: path, Msg: "open", Err: err}
	}
	defer f.Close()

	return ParseWithStats(f, path)
}

// Parse reads one station file from r. name is used in errors and as the
// fallback station name when the header has no Site line.
func Parse(r io.Reader, name string) (*types.Series, error) {
	s, _, err := ParseWithStats(r, name)
	return s, err
}

// ParseWithStats is Parse plus per-file counts of rows and flagged values
func ParseWithStats(r io.Reader, name string) (*types.Series, FileStats, error) {
	stats := FileStats{File: name, Flags: make(map[string]int)}
	scanner := bufio.NewScanner(r)

	station := ""
	for i := 0; i < HeaderLines; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, stats, &ParseError{File: name, Line: i + 1, Msg: "read header", Err: err}
			}
			return nil, stats, &ParseError{File: name, Line: i, Msg: fmt.Sprintf("header truncated, expected %d lines", HeaderLines)}
		}
		if v, ok := headerValue(scanner.Text(), "Site"); ok {
			station = v
		}
	}
	if station == "" {
		station = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}

	var readings []types.Reading
	line := HeaderLines
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		reading, seaFlag, resFlag, err := parseRow(text)
		if err != nil {
			return nil, stats, &ParseError{File: name, Line: line, Msg: "bad row", Err: err}
		}
		readings = append(readings, reading)

		stats.Rows++
		if seaFlag != 0 {
			stats.FlaggedSeaLevel++
			stats.Flags[string(seaFlag)]++
		}
		if resFlag != 0 {
			stats.FlaggedResidual++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, &ParseError{File: name, Line: line, Msg: "read", Err: err}
	}
	if len(readings) == 0 {
		return nil, stats, &ParseError{File: name, Msg: "no data rows after header"}
	}

	return types.NewSeries(station, readings), stats, nil
}

// parseRow decodes "Cycle Date Time SeaLevel Residual". The returned flag
// bytes are zero when the field carried no quality letter.
func parseRow(text string) (types.Reading, byte, byte, error) {
	fields := strings.Fields(text)
	if len(fields) != columns {
		return types.Reading{}, 0, 0, fmt.Errorf("expected %d columns, got %d", columns, len(fields))
	}

	cycle, err := strconv.Atoi(strings.TrimSuffix(fields[0], ")"))
	if err != nil {
		return types.Reading{}, 0, 0, fmt.Errorf("cycle %q: %w", fields[0], err)
	}

	ts, err := parseTimestamp(fields[1], fields[2])
	if err != nil {
		return types.Reading{}, 0, 0, err
	}

	seaLevel, seaFlag, err := parseLevel(fields[3])
	if err != nil {
		return types.Reading{}, 0, 0, fmt.Errorf("sea level %q: %w", fields[3], err)
	}
	residual, resFlag, err := parseLevel(fields[4])
	if err != nil {
		return types.Reading{}, 0, 0, fmt.Errorf("residual %q: %w", fields[4], err)
	}

	return types.Reading{
		Timestamp: ts,
		Cycle:     cycle,
		SeaLevel:  seaLevel,
		Residual:  residual,
	}, seaFlag, resFlag, nil
}

func parseTimestamp(date, clock string) (time.Time, error) {
	value := date + " " + clock
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q: unrecognised date/time", value)
}

// headerValue extracts "Key: value" from a metadata line
func headerValue(line, key string) (string, bool) {
	k, v, ok := strings.Cut(line, ":")
	if !ok || strings.TrimSpace(k) != key {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
