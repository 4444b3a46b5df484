package dominant

import (
	"errors"
	"fmt"
	"image"
	"math"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	log "github.com/sirupsen/logrus"
	"github.com/soniakeys/quant/median"

	"github.com/llehouerou/albumgallery/internal/colorspace"
	"github.com/llehouerou/albumgallery/internal/imageio"
)

// Method selects how the representative color of an image is computed.
type Method int

const (
	// Histogram takes the most frequent exact color.
	Histogram Method = iota
	// DominantColor uses k-means clustering from cenkalti/dominantcolor.
	DominantColor
	// KMeans clusters sampled pixels and takes the centre of the largest cluster.
	KMeans
	// MedianCut quantizes the image and takes the most used palette entry.
	MedianCut
)

// ErrUnknownMethod is returned by ParseMethod for unrecognized names.
var ErrUnknownMethod = errors.New("unknown extraction method")

const (
	kmeansClusters   = 4
	kmeansMaxSamples = 4096
	medianColors     = 8
)

func (m Method) String() string {
	switch m {
	case DominantColor:
		return "dominantcolor"
	case KMeans:
		return "kmeans"
	case MedianCut:
		return "median"
	default:
		return "histogram"
	}
}

// ParseMethod parses a method name. An empty name selects Histogram.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "histogram", "mode":
		return Histogram, nil
	case "dominantcolor", "dominant":
		return DominantColor, nil
	case "kmeans":
		return KMeans, nil
	case "median", "mediancut":
		return MedianCut, nil
	}
	return Histogram, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// FromImage computes the representative color of img with the given method.
// Library-backed methods fall back to Histogram when they find nothing.
func FromImage(img image.Image, m Method) colorspace.RGB {
	var (
		c  colorspace.RGB
		ok bool
	)
	switch m {
	case DominantColor:
		c, ok = fromDominantColor(img)
	case KMeans:
		c, ok = fromKMeans(img)
	case MedianCut:
		c, ok = fromMedianCut(img)
	default:
		return FromPixels(imageio.RGBBytes(img))
	}
	if !ok {
		log.WithField("method", m.String()).Warn("extraction returned no color, falling back to histogram")
		return FromPixels(imageio.RGBBytes(img))
	}
	return c
}

func fromDominantColor(img image.Image) (colorspace.RGB, bool) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return colorspace.RGB{}, false
	}
	c := dominantcolor.Find(img)
	return colorspace.RGB{R: c.R, G: c.G, B: c.B}, true
}

func fromKMeans(img image.Image) (colorspace.RGB, bool) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return colorspace.RGB{}, false
	}

	step := 1
	if width*height > kmeansMaxSamples {
		step = int(math.Sqrt(float64(width*height)/kmeansMaxSamples)) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, kmeansMaxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := img.At(x, y).RGBA()
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 65535.0,
				float64(g) / 65535.0,
				float64(bl) / 65535.0,
			})
		}
	}

	k := min(kmeansClusters, len(dataset))
	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		return colorspace.RGB{}, false
	}

	largest := slices.MaxFunc(cc, func(a, b clusters.Cluster) int {
		return len(a.Observations) - len(b.Observations)
	})
	if len(largest.Center) < 3 {
		return colorspace.RGB{}, false
	}

	return colorspace.RGB{
		R: unitToByte(largest.Center[0]),
		G: unitToByte(largest.Center[1]),
		B: unitToByte(largest.Center[2]),
	}, true
}

func fromMedianCut(img image.Image) (colorspace.RGB, bool) {
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return colorspace.RGB{}, false
	}
	paletted := median.Quantizer(medianColors).Paletted(img)
	if paletted == nil || len(paletted.Palette) == 0 {
		return colorspace.RGB{}, false
	}

	counts := make([]int, len(paletted.Palette))
	for _, idx := range paletted.Pix {
		if int(idx) < len(counts) {
			counts[idx]++
		}
	}

	best := 0
	for i, n := range counts {
		if n > counts[best] {
			best = i
		}
	}

	r, g, b, _ := paletted.Palette[best].RGBA()
	return colorspace.RGB{
		R: uint8(r >> 8), //nolint:gosec // 16-bit channel shifted to 8 bits
		G: uint8(g >> 8), //nolint:gosec // 16-bit channel shifted to 8 bits
		B: uint8(b >> 8), //nolint:gosec // 16-bit channel shifted to 8 bits
	}, true
}

func unitToByte(v float64) uint8 {
	return uint8(math.Round(max(0, min(1, v)) * 255))
}
