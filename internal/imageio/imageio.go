// Package imageio decodes cover images and flattens them into RGB bytes for
// color analysis.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder for covers
	_ "image/jpeg" // JPEG decoder for covers
	_ "image/png"  // PNG decoder for covers
	"io"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp" // WebP decoder for covers
)

// DefaultSize is the edge length covers are scaled to before analysis.
const DefaultSize = 256

// Load opens and decodes an image file, then scales it to fit in size x size.
// A size of zero keeps the original dimensions.
func Load(path string, size uint) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f, size)
}

// Decode decodes an image from r and scales it to fit in size x size,
// keeping its aspect ratio. Images already within bounds are not enlarged.
func Decode(r io.Reader, size uint) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode %s image: empty bounds", format)
	}
	if size == 0 {
		return img, nil
	}

	// Nearest neighbour keeps source colors intact, which the histogram relies on.
	return resize.Thumbnail(size, size, img, resize.NearestNeighbor), nil
}

// RGBBytes flattens an image into r, g, b triples in row-major order.
// Alpha is dropped.
func RGBBytes(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)

	if src, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				out = append(out, row[i], row[i+1], row[i+2])
			}
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, _ := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out, c.R, c.G, c.B)
		}
	}

	return out
}
