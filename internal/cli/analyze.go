package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chrissnell/tidegauge/internal/app"
	"github.com/chrissnell/tidegauge/pkg/config"
	"github.com/chrissnell/tidegauge/pkg/responseformat"
)

type analyzeFlags struct {
	configFile   string
	station      string
	pattern      string
	workers      int
	constituents []string
	year         int
	start        string
	end          string
	reference    string
	longestRun   bool
	store        string
	pushgateway  string
	format       string
}

// AnalyzeCmd returns the analyze command
func AnalyzeCmd(g *globalFlags) *cobra.Command {
	f := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze [DIRECTORY]",
		Short: "Merge station files and fit the rise rate and tidal constituents",
		Long: `Read every station file in DIRECTORY (or data.directory from --config),
merge them, and report:
- the longest run of uninterrupted readings
- the sea-level rise rate
- amplitude and phase of each requested constituent

With --year or --start/--end the demeaned segment is summarised and the fit
is restricted to that window.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := responseformat.ParseFormat(f.format)
			if err != nil {
				return err
			}

			cfg, err := f.load(cmd, args)
			if err != nil {
				return err
			}

			if err := initLog(g.verbose || cfg.Log.Verbose, firstNonEmpty(g.logFile, cfg.Log.File)); err != nil {
				return err
			}

			a := app.New(config.StaticProvider{Config: *cfg}, nil)
			rep, err := a.Analyze(cmd.Context())
			if err != nil {
				return err
			}

			if format == responseformat.Text {
				return renderReport(cmd.OutOrStdout(), rep)
			}
			return responseformat.Encode(cmd.OutOrStdout(), format, rep)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "YAML configuration file")
	fl.StringVar(&f.station, "station", "", "station name (default: taken from the file header)")
	fl.StringVar(&f.pattern, "pattern", "", "glob for station files (default \"*.txt\")")
	fl.IntVar(&f.workers, "workers", 0, "files parsed in parallel (default: number of CPUs)")
	fl.StringSliceVarP(&f.constituents, "constituent", "c", nil, "constituent to fit, repeatable (default M2,S2)")
	fl.IntVar(&f.year, "year", 0, "restrict the analysis to one calendar year")
	fl.StringVar(&f.start, "start", "", "range start, RFC3339 or YYYY-MM-DD")
	fl.StringVar(&f.end, "end", "", "range end, inclusive")
	fl.StringVar(&f.reference, "reference", "", "phase reference time (default: first reading)")
	fl.BoolVar(&f.longestRun, "longest-run", false, "fit only the longest contiguous run")
	fl.StringVar(&f.store, "store", "", "save the run: sqlite:PATH or a postgres:// URL")
	fl.StringVar(&f.pushgateway, "pushgateway", "", "push metrics to this Prometheus Pushgateway")
	fl.StringVarP(&f.format, "format", "o", "text", "output format: text, json or msgpack")

	cmd.MarkFlagsMutuallyExclusive("year", "start")
	cmd.MarkFlagsMutuallyExclusive("year", "end")
	cmd.MarkFlagsRequiredTogether("start", "end")

	return cmd
}

// load reads --config if given and lays the explicitly set flags over it
func (f *analyzeFlags) load(cmd *cobra.Command, args []string) (*config.ConfigData, error) {
	cfg := &config.ConfigData{}
	if f.configFile != "" {
		filename, _ := filepath.Abs(f.configFile)
		loaded, err := config.NewYAMLProvider(filename).LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		cfg = loaded
	}

	if len(args) == 1 {
		cfg.Data.Directory = args[0]
	}

	changed := cmd.Flags().Changed
	if changed("station") {
		cfg.Station = f.station
	}
	if changed("pattern") {
		cfg.Data.Pattern = f.pattern
	}
	if changed("workers") {
		cfg.Data.Workers = f.workers
	}
	if changed("constituent") {
		cfg.Analysis.Constituents = f.constituents
	}
	if changed("year") {
		cfg.Analysis.Year = f.year
		cfg.Analysis.Start, cfg.Analysis.End = "", ""
	}
	if changed("start") {
		cfg.Analysis.Start, cfg.Analysis.End = f.start, f.end
		cfg.Analysis.Year = 0
	}
	if changed("reference") {
		cfg.Analysis.ReferenceTime = f.reference
	}
	if changed("longest-run") {
		cfg.Analysis.LongestRun = f.longestRun
	}
	if changed("store") {
		cfg.Storage = storageFromSpec(f.store)
	}
	if changed("pushgateway") {
		cfg.Metrics.Pushgateway = f.pushgateway
	}

	cfg.ApplyDefaults()
	if cfg.Data.Directory == "" {
		return nil, fmt.Errorf("no data directory: pass DIRECTORY or set data.directory in --config")
	}
	return cfg, nil
}

func storageFromSpec(spec string) config.StorageData {
	if spec == "" {
		return config.StorageData{}
	}
	if strings.HasPrefix(spec, "postgres://") || strings.HasPrefix(spec, "postgresql://") {
		return config.StorageData{TimescaleDB: &config.TimescaleDBData{ConnectionString: spec}}
	}
	return config.StorageData{SQLite: &config.SQLiteData{Path: strings.TrimPrefix(spec, "sqlite:")}}
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
