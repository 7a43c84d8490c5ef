// Package reproject resamples an exposure onto the pixel grid of a
// reference exposure, so that the two line up pixel for pixel on the
// sky. Astronomical mosaics are big; the reference grid is processed
// in row bands, so that only one band's worth of floats is ever held.
package reproject

import(
	"fmt"
	"image"
	"log"

	"github.com/abworrall/skycomposite/pkg/emath"
	"github.com/abworrall/skycomposite/pkg/wcs"
)

const DefaultMaxPixelsPerChunk = 50000000

type Reprojector struct {
	Resampler
	MaxPixelsPerChunk int
	Verbosity         int
	Name              string   // for logging
}

func New(maxPixels int) Reprojector {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixelsPerChunk
	}
	return Reprojector{Resampler: Bilinear{}, MaxPixelsPerChunk: maxPixels}
}

// Stream resamples src onto the w*h reference grid one band at a time,
// quantizing each to 8-bit, and hands them to fn in order, top to
// bottom. Each band image has bounds (0,band.Start)-(w,band.End). fn
// must not hold on to the image if it wants bounded memory.
func (r Reprojector)Stream(src emath.FloatGrid, srcFrame, ref wcs.Frame, w, h int, fn func(Band, *image.Gray) error) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("reproject %s: bad reference size %dx%d", r.Name, w, h)
	}
	if src.Dx() == 0 || src.Dy() == 0 {
		return fmt.Errorf("reproject %s: empty source", r.Name)
	}

	resampler := r.Resampler
	if resampler == nil {
		resampler = Bilinear{}
	}

	it := Bands(w, h, r.MaxPixelsPerChunk)
	for i := 1; it.Next(); i++ {
		b := it.Band()
		if r.Verbosity > 0 {
			log.Printf("Reprojecting %s, band %d/%d %s\n", r.Name, i, it.Count(), b)
		}

		grid := resampler.Resample(src, srcFrame, ref.SliceRows(b.Start, b.End), w, b.Height())
		img := grid.ToGray()
		img.Rect = image.Rect(0, b.Start, w, b.End)

		if err := fn(b, img); err != nil {
			return fmt.Errorf("reproject %s %s: %w", r.Name, b, err)
		}
	}
	return nil
}

// Reproject accumulates all the bands into a single w*h image.
func (r Reprojector)Reproject(src emath.FloatGrid, srcFrame, ref wcs.Frame, w, h int) (*image.Gray, error) {
	out := image.NewGray(image.Rect(0, 0, w, h))
	err := r.Stream(src, srcFrame, ref, w, h, func(b Band, img *image.Gray) error {
		copy(out.Pix[out.PixOffset(0, b.Start):], img.Pix)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
