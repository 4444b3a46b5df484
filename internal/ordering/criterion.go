// Package ordering ranks colored covers.
//
// Each Criterion maps a cover to an integer key; Sort orders covers by that
// key in a stable way, ascending or descending.
package ordering

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/llehouerou/albumgallery/internal/colorspace"
	"github.com/llehouerou/albumgallery/internal/cover"
)

// Criterion names a sort key strategy.
type Criterion int

const (
	// Step ranks by the hue/value/luminosity step heuristic. It is the default.
	Step Criterion = iota
	// Hue ranks by the HSV hue of the RGB color.
	Hue
	// Year ranks by release year.
	Year
	// Luminosity ranks by weighted luminosity.
	Luminosity
)

// ErrInvalidDate is returned by Key when a Year key is requested for a cover
// whose date is not an integer.
var ErrInvalidDate = errors.New("release date is not a year")

func (c Criterion) String() string {
	switch c {
	case Hue:
		return "rgb"
	case Year:
		return "year"
	case Luminosity:
		return "lum"
	default:
		return "step"
	}
}

// ParseCriterion parses a criterion name. Empty and unknown names select
// Step; ok is false for unknown names.
func ParseCriterion(name string) (c Criterion, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "step", "hsv":
		return Step, true
	case "rgb", "hue":
		return Hue, true
	case "year", "date":
		return Year, true
	case "lum", "luminosity":
		return Luminosity, true
	}
	return Step, false
}

// Key computes the sort key of item under criterion c.
// Only Year can fail, with an error wrapping ErrInvalidDate.
func Key(item cover.Item, c Criterion) (int, error) {
	rgb := item.Color
	r, g, b := float64(rgb.R), float64(rgb.G), float64(rgb.B)

	switch c {
	case Hue:
		return int(colorspace.ToHSV(r, g, b).H), nil
	case Luminosity:
		return int(colorspace.Luminosity(r, g, b)), nil
	case Year:
		year, err := strconv.Atoi(strings.TrimSpace(item.Tags.Date))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDate, item.Tags.Date)
		}
		return year, nil
	default:
		return StepKey(rgb), nil
	}
}

// StepKey is the step heuristic: hue and value scaled by 8 plus the square
// root of luminosity, with value and luminosity inverted when the scaled hue
// is odd. The inversion makes alternating hue bands run in opposite
// directions, a rough serpentine walk through hue/value/luminosity. It is an
// approximation, not a colorimetric ordering.
func StepKey(c colorspace.RGB) int {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	hsv := colorspace.ToHSV(r, g, b)
	return stepIndex(hsv.H, hsv.V, colorspace.LuminositySqrt(r, g, b))
}

func stepIndex(hue, value, lum float64) int {
	h2 := hue * 8
	v2 := value * 8

	if math.Mod(h2, 2) == 1 {
		v2 = 8 - v2
		lum = 8 - lum
	}

	return int(h2 + lum + v2)
}
