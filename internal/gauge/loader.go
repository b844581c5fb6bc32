package gauge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chrissnell/tidegauge/internal/log"
	"github.com/chrissnell/tidegauge/internal/types"
)

// DefaultPattern selects station files during discovery
const DefaultPattern = "*.txt"

// LoadOptions tunes LoadFiles
type LoadOptions struct {
	// Workers bounds concurrent parses. Zero means GOMAXPROCS.
	Workers int
}

// Discover lists regular files in dir whose names match pattern, sorted by
// name. Subdirectories are not descended into.
func Discover(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad file pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// LoadFiles parses every path and merges the results into one series.
// Files are parsed concurrently but merged left to right in the order
// given, so the output does not depend on which parse finishes first. The
// first failure cancels parses that have not started yet.
func LoadFiles(ctx context.Context, paths []string, opts LoadOptions) (*types.Series, []FileStats, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	parsed := make([]*types.Series, len(paths))
	stats := make([]FileStats, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			s, st, err := ReadFileWithStats(path)
			if err != nil {
				return err
			}
			log.Debugw("parsed station file",
				"file", path,
				"rows", st.Rows,
				"flagged", st.FlaggedSeaLevel,
				"elapsed", time.Since(start))

			parsed[i] = s
			stats[i] = st
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	merged := MergeAll(parsed...)
	log.Infof("merged %d files into %d readings (%d valid)", len(paths), merged.Len(), merged.ValidCount())

	return merged, stats, nil
}
