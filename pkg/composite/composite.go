// Package composite screen-blends colored layers into a single image.
package composite

import(
	"errors"
	"fmt"
	"image"

	"github.com/abworrall/skycomposite/pkg/colorize"
)

var(
	ErrShapeMismatch = errors.New("layer shape mismatch")
	ErrNoLayers      = errors.New("no layers to composite")
)

// DefaultBrightness is how much every layer after the first is dimmed
// before being blended in. It is a rule of thumb, not physics: screen
// blending only ever brightens, so more layers need more dimming. At
// 20 layers and beyond it bottoms out at zero.
func DefaultBrightness(nLayers int) float64 {
	if b := 1.0 - 0.05*float64(nLayers); b > 0 {
		return b
	}
	return 0
}

// ScreenBlend inverts both images, multiplies them, and inverts the
// result. The output is never darker than either input. Alpha is
// ignored, and set to opaque.
func ScreenBlend(a, b *image.RGBA) (*image.RGBA, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}

	out := image.NewRGBA(a.Bounds())
	screenInto(out, a, b)
	return out, nil
}

func screenInto(dst, a, b *image.RGBA) {
	bounds := a.Bounds()
	for y:=bounds.Min.Y; y<bounds.Max.Y; y++ {
		pa := a.Pix[a.PixOffset(bounds.Min.X, y):]
		pb := b.Pix[b.PixOffset(b.Bounds().Min.X, y - bounds.Min.Y + b.Bounds().Min.Y):]
		pd := dst.Pix[dst.PixOffset(bounds.Min.X, y):]
		for i:=0; i<4*bounds.Dx(); i+=4 {
			pd[i+0] = screen(pa[i+0], pb[i+0])
			pd[i+1] = screen(pa[i+1], pb[i+1])
			pd[i+2] = screen(pa[i+2], pb[i+2])
			pd[i+3] = 0xFF
		}
	}
}

func screen(a, b uint8) uint8 {
	return uint8(255 - (uint32(255-a) * uint32(255-b)) / 255)
}

// Composite blends the layers, in order. The first is used as-is;
// each later one is scaled by the brightness (or DefaultBrightness)
// and then screen-blended in. The layers are not modified.
func Composite(layers []*image.RGBA, brightness colorize.Maybe) (*image.RGBA, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	for i, l := range layers[1:] {
		if err := sameShape(layers[0], l); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
	}
	if len(layers) == 1 {
		return layers[0], nil
	}

	b := brightness.Or(DefaultBrightness(len(layers)))
	if b < 0 {
		b = 0
	}
	var lut [256]uint8
	for i := range lut {
		v := float64(i) * b
		if v > 255 {
			v = 255
		}
		lut[i] = uint8(v)
	}

	acc := image.NewRGBA(layers[0].Bounds())
	copy(acc.Pix, layers[0].Pix)
	dimmed := image.NewRGBA(layers[0].Bounds())

	for _, l := range layers[1:] {
		dim(dimmed, l, &lut)
		screenInto(acc, acc, dimmed)
	}
	return acc, nil
}

func dim(dst, src *image.RGBA, lut *[256]uint8) {
	bounds := dst.Bounds()
	for y:=0; y<bounds.Dy(); y++ {
		ps := src.Pix[src.PixOffset(src.Bounds().Min.X, src.Bounds().Min.Y + y):]
		pd := dst.Pix[dst.PixOffset(bounds.Min.X, bounds.Min.Y + y):]
		for i:=0; i<4*bounds.Dx(); i+=4 {
			pd[i+0] = lut[ps[i+0]]
			pd[i+1] = lut[ps[i+1]]
			pd[i+2] = lut[ps[i+2]]
			pd[i+3] = 0xFF
		}
	}
}

func sameShape(a, b *image.RGBA) error {
	if a.Bounds().Size() != b.Bounds().Size() {
		return fmt.Errorf("%v vs %v: %w", a.Bounds().Size(), b.Bounds().Size(), ErrShapeMismatch)
	}
	return nil
}
