// Package report prints run results: color swatch listings, summaries and a
// terminal progress bar.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"github.com/llehouerou/albumgallery/internal/cover"
	"github.com/llehouerou/albumgallery/internal/gallery"
)

// List writes one line per item: a swatch of its color, the hex value and
// the path. With color disabled the swatch is omitted.
func List(w io.Writer, items []cover.Item, color bool) error {
	for _, it := range items {
		hex := it.Color.Hex()
		line := hex + "  " + it.Path
		if color {
			swatch := lipgloss.NewStyle().
				Background(lipgloss.Color(hex)).
				Render("    ")
			line = swatch + " " + line
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes the perceived brightness of a set of covers.
type Stats struct {
	Count          int
	MeanLuminosity float64
	StdLuminosity  float64
}

// Luminosity computes brightness statistics over items.
func Luminosity(items []cover.Item) Stats {
	if len(items) == 0 {
		return Stats{}
	}
	lums := make([]float64, len(items))
	for i, it := range items {
		lums[i] = it.Color.Luminosity()
	}
	s := Stats{Count: len(items)}
	if len(lums) == 1 {
		s.MeanLuminosity = lums[0]
		return s
	}
	s.MeanLuminosity, s.StdLuminosity = stat.MeanStdDev(lums, nil)
	return s
}

// Summary writes a short human-readable account of a run.
func Summary(w io.Writer, res gallery.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s covers found, %s from cache, %s analyzed",
		humanize.Comma(int64(res.Discovered)),
		humanize.Comma(int64(res.Cached)),
		humanize.Comma(int64(res.Analyzed)),
	)
	if n := len(res.Failures); n > 0 {
		fmt.Fprintf(&b, ", %s failed", humanize.Comma(int64(n)))
	}
	b.WriteString("\n")

	if res.Filtered > 0 {
		fmt.Fprintf(&b, "%s filtered out\n", humanize.Comma(int64(res.Filtered)))
	}
	if n := len(res.Excluded); n > 0 {
		fmt.Fprintf(&b, "%s without a usable year\n", humanize.Comma(int64(n)))
	}

	if len(res.Items) == 0 {
		b.WriteString("no covers\n")
	} else {
		s := Luminosity(res.Items)
		fmt.Fprintf(&b, "%s covers by %s, grid %s, tile %dpx, luminosity %.1f ± %.1f\n",
			humanize.Comma(int64(len(res.Items))),
			res.Criterion,
			res.Plan.Tile,
			res.Plan.Geometry,
			s.MeanLuminosity,
			s.StdLuminosity,
		)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Written describes an output file.
func Written(path string, size int64) string {
	if size <= 0 {
		return "wrote " + path
	}
	return fmt.Sprintf("wrote %s (%s)", path, humanize.IBytes(uint64(size))) //nolint:gosec // size is positive
}
