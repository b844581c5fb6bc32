package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chrissnell/tidegauge/internal/app"
	"github.com/chrissnell/tidegauge/pkg/config"
)

// ServeCmd returns the serve command
func ServeCmd(g *globalFlags) *cobra.Command {
	var storeSpec, listen, configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored analysis runs over HTTP",
		Long: `Start a read-only HTTP API over a run store:
  GET /runs?station=NAME&limit=N
  GET /runs/{id}
  GET /constituents
  GET /healthz
  GET /metrics
Append ?format=msgpack for MessagePack instead of JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if storeSpec == "" && configFile != "" {
				filename, _ := filepath.Abs(configFile)
				cfg, err := config.NewYAMLProvider(filename).LoadConfig()
				if err != nil {
					return err
				}
				storeSpec = cfg.Storage.Spec()
			}
			if storeSpec == "" {
				return errors.New("no store: pass --store or a --config with storage configured")
			}

			if err := initLog(g.verbose, g.logFile); err != nil {
				return err
			}

			a := app.New(config.StaticProvider{}, nil)
			return a.Serve(cmd.Context(), storeSpec, listen)
		},
	}

	cmd.Flags().StringVar(&storeSpec, "store", "", "run store: sqlite:PATH or a postgres:// URL")
	cmd.Flags().StringVar(&listen, "listen", ":8080", "address to listen on")
	cmd.Flags().StringVar(&configFile, "config", "", "YAML configuration file to read storage from")

	return cmd
}
