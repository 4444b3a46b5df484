// Package dominant finds the representative color of a cover image.
//
// The default method is the mode of the exact 24-bit colors: every pixel is
// counted in a histogram with one bucket per RGB value and the fullest bucket
// wins. Alternative library-backed methods are available through FromImage.
package dominant

import (
	"sync"

	"github.com/llehouerou/albumgallery/internal/colorspace"
)

// HistogramSize is the number of buckets, one per 24-bit color.
const HistogramSize = 1 << 24

// maxHistograms caps how many 64 MiB tables are in use at once, whatever
// the number of analysis workers.
const maxHistograms = 2

type histogram [HistogramSize]int32

var (
	histograms     = sync.Pool{New: func() any { return new(histogram) }}
	histogramSlots = make(chan struct{}, maxHistograms)
)

// acquireHistogram waits for a free slot and returns a zeroed table. The
// returned func gives both back.
func acquireHistogram() (*histogram, func()) {
	histogramSlots <- struct{}{}
	h := histograms.Get().(*histogram) //nolint:forcetypeassert // pool only holds *histogram
	clear(h[:])
	return h, func() {
		histograms.Put(h)
		<-histogramSlots
	}
}

// FromPixels returns the most frequent color in a flat buffer of RGB triples.
//
// Trailing bytes that do not form a full triple are ignored. An empty buffer
// yields black. When several colors share the highest count, the one with the
// lowest packed r<<16|g<<8|b value wins.
//
// Channels are packed as read, without any bias, so every key is a valid index.
func FromPixels(pix []byte) colorspace.RGB {
	n := len(pix) / 3
	if n == 0 {
		return colorspace.RGB{}
	}

	h, release := acquireHistogram()
	defer release()

	for i := range n {
		p := pix[i*3 : i*3+3 : i*3+3]
		key := uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
		h[key]++
	}

	return colorspace.FromPacked(mode(h[:]))
}

// mode returns the index of the first bucket holding the greatest count.
func mode(histogram []int32) uint32 {
	var best uint32
	var count int32
	for i, c := range histogram {
		if c > count {
			count = c
			best = uint32(i) //nolint:gosec // len(histogram) == HistogramSize
		}
	}
	return best
}
