package dominant

import (
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/albumgallery/internal/colorspace"
)

func repeatPixel(buf []byte, c colorspace.RGB, n int) []byte {
	for range n {
		buf = append(buf, c.R, c.G, c.B)
	}
	return buf
}

func TestFromPixels_StrictMajority(t *testing.T) {
	var pix []byte
	pix = repeatPixel(pix, colorspace.RGB{R: 10, G: 20, B: 30}, 100)
	pix = repeatPixel(pix, colorspace.RGB{R: 200, G: 200, B: 200}, 1)

	assert.Equal(t, colorspace.RGB{R: 10, G: 20, B: 30}, FromPixels(pix))
}

func TestFromPixels_Empty(t *testing.T) {
	assert.Equal(t, colorspace.RGB{}, FromPixels(nil))
	assert.Equal(t, colorspace.RGB{}, FromPixels([]byte{}))
}

func TestFromPixels_IgnoresTrailingBytes(t *testing.T) {
	tests := []struct {
		name string
		pix  []byte
		want colorspace.RGB
	}{
		{name: "fewer than one pixel", pix: []byte{255, 255}, want: colorspace.RGB{}},
		{name: "one pixel plus one byte", pix: []byte{1, 2, 3, 9}, want: colorspace.RGB{R: 1, G: 2, B: 3}},
		{name: "one pixel plus two bytes", pix: []byte{4, 5, 6, 9, 9}, want: colorspace.RGB{R: 4, G: 5, B: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromPixels(tt.pix))
		})
	}
}

func TestFromPixels_TieBreaksOnLowestPackedValue(t *testing.T) {
	var pix []byte
	pix = repeatPixel(pix, colorspace.RGB{R: 0, G: 0, B: 9}, 5)
	pix = repeatPixel(pix, colorspace.RGB{R: 0, G: 0, B: 3}, 5)
	pix = repeatPixel(pix, colorspace.RGB{R: 1, G: 0, B: 0}, 5)

	assert.Equal(t, colorspace.RGB{R: 0, G: 0, B: 3}, FromPixels(pix))
}

func TestFromPixels_ExtremeChannels(t *testing.T) {
	var pix []byte
	pix = repeatPixel(pix, colorspace.RGB{R: 255, G: 255, B: 255}, 3)
	pix = repeatPixel(pix, colorspace.RGB{}, 2)

	assert.Equal(t, colorspace.RGB{R: 255, G: 255, B: 255}, FromPixels(pix))
}

func TestFromPixels_NoStateBetweenCalls(t *testing.T) {
	first := repeatPixel(nil, colorspace.RGB{R: 50, G: 60, B: 70}, 10)
	second := repeatPixel(nil, colorspace.RGB{R: 1, G: 1, B: 1}, 2)

	assert.Equal(t, colorspace.RGB{R: 50, G: 60, B: 70}, FromPixels(first))
	assert.Equal(t, colorspace.RGB{R: 1, G: 1, B: 1}, FromPixels(second))
}

func TestFromPixels_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Go(func() {
			want := colorspace.RGB{R: uint8(i), G: uint8(i * 2), B: uint8(i * 3)}
			pix := repeatPixel(nil, want, 4)
			pix = repeatPixel(pix, colorspace.RGB{R: 255}, 1)
			if got := FromPixels(pix); got != want {
				t.Errorf("FromPixels() = %+v, want %+v", got, want)
			}
		})
	}
	wg.Wait()
}

func TestFromPixels_WaitsForFreeHistogram(t *testing.T) {
	for range maxHistograms {
		histogramSlots <- struct{}{}
	}

	done := make(chan colorspace.RGB)
	go func() {
		done <- FromPixels([]byte{7, 8, 9})
	}()

	select {
	case <-done:
		t.Fatal("FromPixels ran while every histogram was in use")
	case <-time.After(50 * time.Millisecond):
	}

	for range maxHistograms {
		<-histogramSlots
	}

	select {
	case got := <-done:
		if got != (colorspace.RGB{R: 7, G: 8, B: 9}) {
			t.Errorf("FromPixels() = %+v, want {7 8 9}", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("FromPixels did not resume after a histogram was released")
	}
}

func TestFromImage_MedianCutMajority(t *testing.T) {
	img := twoToneImage(color.NRGBA{R: 10, G: 20, B: 30, A: 255}, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	if got := FromImage(img, MedianCut); got != (colorspace.RGB{R: 10, G: 20, B: 30}) {
		t.Errorf("FromImage(MedianCut) = %+v, want {10 20 30}", got)
	}
}

// twoToneImage fills a 10x10 image with major, except the last row.
func twoToneImage(major, minor color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := range 10 {
		for x := range 10 {
			c := major
			if y == 9 {
				c = minor
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFromImage_Histogram(t *testing.T) {
	img := twoToneImage(color.NRGBA{R: 10, G: 20, B: 30, A: 255}, color.NRGBA{R: 250, A: 255})

	assert.Equal(t, colorspace.RGB{R: 10, G: 20, B: 30}, FromImage(img, Histogram))
}

func TestFromImage_LibraryMethods(t *testing.T) {
	want := colorspace.RGB{R: 200, G: 40, B: 40}
	img := twoToneImage(color.NRGBA{R: want.R, G: want.G, B: want.B, A: 255}, color.NRGBA{B: 250, A: 255})

	for _, m := range []Method{KMeans, MedianCut} {
		t.Run(m.String(), func(t *testing.T) {
			got := FromImage(img, m)
			assert.InDelta(t, float64(want.R), float64(got.R), 8)
			assert.InDelta(t, float64(want.G), float64(got.G), 8)
			assert.InDelta(t, float64(want.B), float64(got.B), 8)
		})
	}
}

func TestFromImage_EmptyFallsBack(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 0, 0))

	for _, m := range []Method{Histogram, DominantColor, KMeans, MedianCut} {
		t.Run(m.String(), func(t *testing.T) {
			assert.Equal(t, colorspace.RGB{}, FromImage(img, m))
		})
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input string
		want  Method
	}{
		{"", Histogram},
		{"histogram", Histogram},
		{"Mode", Histogram},
		{"dominantcolor", DominantColor},
		{"kmeans", KMeans},
		{" median ", MedianCut},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseMethod("average")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestMethodString(t *testing.T) {
	for _, m := range []Method{Histogram, DominantColor, KMeans, MedianCut} {
		parsed, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}
