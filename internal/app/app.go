// Package app wires the gauge, analysis, store and metrics packages into the
// analyze and serve workflows.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/tidegauge/internal/analysis"
	"github.com/chrissnell/tidegauge/internal/controllers/restserver"
	"github.com/chrissnell/tidegauge/internal/gauge"
	"github.com/chrissnell/tidegauge/internal/log"
	"github.com/chrissnell/tidegauge/internal/observability"
	"github.com/chrissnell/tidegauge/internal/store"
	"github.com/chrissnell/tidegauge/internal/types"
	"github.com/chrissnell/tidegauge/pkg/config"
	"github.com/chrissnell/tidegauge/pkg/tidal"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	clock          clockwork.Clock

	Metrics  *observability.Metrics
	Analyzer *analysis.Analyzer
}

// New creates a new application instance. A nil clock means the real clock.
func New(configProvider config.ConfigProvider, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		configProvider: configProvider,
		clock:          clock,
		Metrics:        observability.NewMetrics(),
		Analyzer:       analysis.NewAnalyzer(),
	}
}

// Analyze runs the whole pipeline: discover and merge station files, summarise
// the requested segment, find the longest contiguous run, fit the trend and
// the harmonic constituents, then persist and push metrics if configured.
func (a *App) Analyze(ctx context.Context) (*Report, error) {
	began := a.clock.Now()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	paths, err := gauge.Discover(cfg.Data.Directory, cfg.Data.Pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files matching %q in %s", cfg.Data.Pattern, cfg.Data.Directory)
	}
	log.Infof("found %d station files in %s", len(paths), cfg.Data.Directory)

	series, stats, err := gauge.LoadFiles(ctx, paths, gauge.LoadOptions{Workers: cfg.Data.Workers})
	if err != nil {
		if errors.Is(err, gauge.ErrParse) {
			a.Metrics.ParseFailures.Inc()
		}
		return nil, err
	}
	a.Metrics.ObserveFiles(stats)

	rep := &Report{
		Station:       cfg.Station,
		Readings:      series.Len(),
		ValidReadings: series.ValidCount(),
		SeriesStart:   series.Start(),
		SeriesEnd:     series.End(),
	}
	if rep.Station == "" {
		rep.Station = series.Station
	}
	for i, st := range stats {
		rep.Files = append(rep.Files, filepath.Base(paths[i]))
		rep.Flagged += st.FlaggedSeaLevel
	}

	window, err := a.segment(cfg.Analysis, series, rep)
	if err != nil {
		return nil, err
	}

	longest := gauge.LongestRun(window)
	rep.LongestRun = summarise(longest)
	if cfg.Analysis.LongestRun {
		window = longest
	}
	rep.Window = summarise(window)

	trend, err := analysis.FitTrend(window)
	if err != nil {
		return nil, err
	}
	rep.RiseRatePerHour = trend.Slope
	rep.RiseRatePerYear = trend.PerYear()

	ref, _ := config.ParseTime(cfg.Analysis.ReferenceTime)
	if ref.IsZero() {
		ref = series.Start()
	}
	rep.ReferenceTime = ref

	res, err := a.Analyzer.Analyze(window, cfg.Analysis.Constituents, ref)
	if err != nil {
		return nil, err
	}
	for i, name := range res.Constituents {
		rep.Constituents = append(rep.Constituents, store.ConstituentResult{
			Name:      name,
			Amplitude: res.Amplitude[i],
			Phase:     res.Phase[i],
		})
	}

	log.Infow("analysis complete",
		"station", rep.Station,
		"window_rows", rep.Window.Rows,
		"rise_rate_per_year", rep.RiseRatePerYear)

	if spec := cfg.Storage.Spec(); spec != "" {
		if err := a.save(ctx, spec, rep); err != nil {
			return nil, err
		}
	}

	finished := a.clock.Now()
	a.Metrics.ObserveRun(rep.Station, rep.RiseRatePerYear, finished.Sub(began), finished)
	if cfg.Metrics.Pushgateway != "" {
		// a failed push should not throw away a finished analysis
		if err := a.Metrics.Push(ctx, cfg.Metrics.Pushgateway, cfg.Metrics.Job); err != nil {
			log.Warnf("%v", err)
		}
	}

	return rep, nil
}

// segment applies the configured year or date range. The demeaned extraction
// is summarised in rep; the returned window keeps the raw values so that
// the fitted trend and phases are not sign-flipped.
func (a *App) segment(ac config.AnalysisData, s *types.Series, rep *Report) (*types.Series, error) {
	var (
		demeaned *types.Series
		from, to time.Time
		err      error
	)

	switch {
	case ac.Year != 0:
		from = time.Date(ac.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0).Add(-time.Second)
		demeaned, err = gauge.ExtractYear(ac.Year, s)
	case ac.Start != "":
		from, _ = config.ParseTime(ac.Start)
		to, _ = config.ParseEndTime(ac.End)
		demeaned, err = gauge.ExtractRange(from, to, s)
	default:
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	_, anomalies := demeaned.Valid()
	rep.Segment = &SegmentSummary{
		From:       from,
		To:         to,
		Rows:       demeaned.Len(),
		Valid:      len(anomalies),
		MinAnomaly: floats.Min(anomalies),
		MaxAnomaly: floats.Max(anomalies),
	}

	return window(s, from, to), nil
}

// window returns the raw readings with from <= timestamp <= to
func window(s *types.Series, from, to time.Time) *types.Series {
	var kept []types.Reading
	for _, r := range s.Readings {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			kept = append(kept, r)
		}
	}
	return types.NewSeries(s.Station, kept)
}

func summarise(s *types.Series) RunSummary {
	return RunSummary{Start: s.Start(), End: s.End(), Rows: s.Len()}
}

func (a *App) save(ctx context.Context, spec string, rep *Report) error {
	st, err := store.Open(spec, a.clock)
	if err != nil {
		return err
	}
	defer st.Close()

	run := rep.Run()
	if err := st.SaveRun(ctx, run); err != nil {
		return err
	}
	rep.RunID = run.ID
	log.Infof("saved run %s", run.ID)
	return nil
}

// Constituents lists the standard catalog sorted by speed
func Constituents() []tidal.Constituent {
	return tidal.Default().Constituents()
}

// Serve runs the read-only HTTP API over the store at storeSpec and blocks
// until ctx is cancelled, a shutdown signal arrives or the server fails.
// Analysis runs in other processes, so /metrics here carries the latest
// stored rise rate and finish time per station plus process metrics.
func (a *App) Serve(ctx context.Context, storeSpec, listenAddr string) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st, err := store.Open(storeSpec, a.clock)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := a.seedMetrics(ctx, st); err != nil {
		return err
	}

	ctrl, err := restserver.NewController(ctx, &wg, st, listenAddr, a.Metrics.Handler())
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	log.Info("server started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	var serveErr error
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	case serveErr = <-ctrl.Err():
		log.Errorf("server stopped unexpectedly: %v", serveErr)
	}

	cancel()

	log.Info("waiting for the server to terminate...")
	wg.Wait()
	log.Info("shutdown complete")
	return serveErr
}

// seedMetrics loads the newest stored run of each station into the gauges
func (a *App) seedMetrics(ctx context.Context, st store.Store) error {
	runs, err := st.ListRuns(ctx, "", 0)
	if err != nil {
		return fmt.Errorf("error reading stored runs: %w", err)
	}

	seen := make(map[string]bool)
	for _, r := range runs {
		if seen[r.Station] {
			continue
		}
		seen[r.Station] = true
		a.Metrics.ObserveStoredRun(r.Station, r.RiseRatePerYear, r.CreatedAt)
	}
	log.Debugf("seeded metrics from %d stored runs across %d stations", len(runs), len(seen))
	return nil
}
