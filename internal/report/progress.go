package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"

	"github.com/llehouerou/albumgallery/internal/gallery"
)

const barWidth = 40

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Bar renders pipeline progress on a single redrawn line.
type Bar struct {
	w     io.Writer
	model progress.Model
	last  string
}

// NewBar creates a Bar writing to w.
func NewBar(w io.Writer) *Bar {
	return &Bar{
		w:     w,
		model: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
}

// Render formats one progress line.
func (b *Bar) Render(p gallery.Progress) string {
	if p.Total <= 0 {
		return fmt.Sprintf("%-10s", p.Phase)
	}
	pct := float64(p.Current) / float64(p.Total)
	return fmt.Sprintf("%-10s %s %d/%d", p.Phase, b.model.ViewAs(pct), p.Current, p.Total)
}

// Drain consumes updates until ch is closed, then ends the line.
func (b *Bar) Drain(ch <-chan gallery.Progress) {
	for p := range ch {
		line := b.Render(p)
		if line == b.last {
			continue
		}
		b.last = line
		fmt.Fprint(b.w, "\r\x1b[2K"+line)
	}
	if b.last != "" {
		fmt.Fprintln(b.w)
	}
}
