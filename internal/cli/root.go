// Package cli holds the tidegauge cobra commands.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/chrissnell/tidegauge/internal/log"
)

// These variables are set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// VersionString reports the build version and platform
func VersionString() string {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (commit: %s, %s/%s)", Version, commit, runtime.GOOS, runtime.GOARCH)
}

type globalFlags struct {
	verbose bool
	logFile string
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:     "tidegauge",
		Short:   "Tide-gauge sea-level trend and harmonic analysis",
		Version: VersionString(),
		Long: `tidegauge reads tide-gauge station files, merges them into one series and
derives the long-term sea-level rise rate and the amplitude and phase of
named tidal constituents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "print progress and debug output")
	root.PersistentFlags().StringVar(&g.logFile, "log-file", "", "also write JSON logs to this rotating file")

	root.AddCommand(AnalyzeCmd(g))
	root.AddCommand(ConstituentsCmd())
	root.AddCommand(ServeCmd(g))

	return root
}

func initLog(verbose bool, file string) error {
	if err := log.Init(log.Options{Verbose: verbose, File: file}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}
