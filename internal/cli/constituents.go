package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/chrissnell/tidegauge/internal/app"
	"github.com/chrissnell/tidegauge/pkg/config"
	"github.com/chrissnell/tidegauge/pkg/responseformat"
)

// ConstituentsCmd returns the constituents command
func ConstituentsCmd() *cobra.Command {
	var at, format string

	cmd := &cobra.Command{
		Use:   "constituents",
		Short: "List the tidal constituents that can be fitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := responseformat.ParseFormat(format)
			if err != nil {
				return err
			}

			when := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
			if at != "" {
				if when, err = config.ParseTime(at); err != nil {
					return err
				}
			}

			cs := app.Constituents()
			if f == responseformat.Text {
				return renderCatalog(cmd.OutOrStdout(), cs, when)
			}

			type entry struct {
				Name        string  `json:"name"`
				Doodson     [6]int  `json:"doodson"`
				Description string  `json:"description"`
				Speed       float64 `json:"speedDegPerHour"`
				Period      float64 `json:"periodHours"`
			}
			out := make([]entry, len(cs))
			for i, c := range cs {
				out[i] = entry{c.Name, c.Doodson, c.Description, c.Speed(when), c.Period(when)}
			}
			return responseformat.Encode(cmd.OutOrStdout(), f, out)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate speeds at this time (default J2000)")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text, json or msgpack")

	return cmd
}
