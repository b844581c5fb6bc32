package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/chrissnell/tidegauge/internal/app"
	"github.com/chrissnell/tidegauge/pkg/tidal"
)

const stamp = "2006-01-02 15:04"

var heading = color.New(color.Bold, color.FgCyan)

func renderReport(out io.Writer, rep *app.Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	heading.Fprintf(w, "Station %s\n", rep.Station)
	fmt.Fprintf(w, "Files\t%d\t%s\n", len(rep.Files), strings.Join(rep.Files, ", "))
	fmt.Fprintf(w, "Series\t%s .. %s\t%d readings, %d valid, %d flagged\n",
		rep.SeriesStart.Format(stamp), rep.SeriesEnd.Format(stamp),
		rep.Readings, rep.ValidReadings, rep.Flagged)

	if seg := rep.Segment; seg != nil {
		fmt.Fprintf(w, "Segment\t%s .. %s\t%d rows, %d valid, anomaly %+.4f .. %+.4f\n",
			seg.From.Format(stamp), seg.To.Format(stamp), seg.Rows, seg.Valid, seg.MinAnomaly, seg.MaxAnomaly)
	}
	fmt.Fprintf(w, "Longest run\t%s .. %s\t%d readings\n",
		rep.LongestRun.Start.Format(stamp), rep.LongestRun.End.Format(stamp), rep.LongestRun.Rows)
	fmt.Fprintf(w, "Fitted over\t%s .. %s\t%d readings\n",
		rep.Window.Start.Format(stamp), rep.Window.End.Format(stamp), rep.Window.Rows)
	fmt.Fprintf(w, "Rise rate\t%.6g /h\t%.4f /yr\n", rep.RiseRatePerHour, rep.RiseRatePerYear)
	if rep.RunID != "" {
		fmt.Fprintf(w, "Saved as\t%s\t\n", rep.RunID)
	}
	fmt.Fprintln(w)

	heading.Fprintf(w, "Constituents (phase relative to %s UTC)\n", rep.ReferenceTime.Format(stamp))
	fmt.Fprintln(w, "NAME\tAMPLITUDE\tPHASE (rad)\tPHASE (deg)")
	fmt.Fprintln(w, "----\t---------\t-----------\t-----------")
	for _, c := range rep.Constituents {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.2f\n", c.Name, c.Amplitude, c.Phase, c.Phase*180/math.Pi)
	}

	return w.Flush()
}

func renderCatalog(out io.Writer, cs []tidal.Constituent, at time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	heading.Fprintf(w, "Speeds at %s UTC\n", at.Format(stamp))
	fmt.Fprintln(w, "NAME\tSPEED (deg/h)\tPERIOD (h)\tDOODSON\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-------------\t----------\t-------\t-----------")
	for _, c := range cs {
		period := "-"
		if p := c.Period(at); p != 0 {
			period = fmt.Sprintf("%.4f", p)
		}
		fmt.Fprintf(w, "%s\t%.7f\t%s\t%v\t%s\n", c.Name, c.Speed(at), period, c.Doodson, c.Description)
	}

	return w.Flush()
}
