package reproject

import(
	"fmt"
	"math"

	"github.com/abworrall/skycomposite/pkg/emath"
	"github.com/abworrall/skycomposite/pkg/wcs"
)

// A Resampler produces a w*h grid on dst, by sampling src wherever
// each dst pixel lands on it. Pixels that land outside src are NaN.
type Resampler interface {
	Resample(src emath.FloatGrid, srcFrame, dst wcs.Frame, w, h int) emath.FloatGrid
}

// Bilinear interpolates between the four nearest source pixels.
type Bilinear struct{}

func (Bilinear)Resample(src emath.FloatGrid, srcFrame, dst wcs.Frame, w, h int) emath.FloatGrid {
	out := emath.NewFloatGrid(w, h)
	for y:=0; y<h; y++ {
		row := out.Row(y)
		for x:=0; x<w; x++ {
			a, b := dst.PixelToWorld(float64(x), float64(y))
			sx, sy, ok := srcFrame.WorldToPixel(a, b)
			if !ok {
				row[x] = math.NaN()
				continue
			}
			row[x] = SampleBilinear(src, sx, sy)
		}
	}
	return out
}

// SampleBilinear reads the grid at a fractional position. Positions
// more than half a pixel outside the grid are NaN; inside that margin,
// edge pixels are extended.
func SampleBilinear(g emath.FloatGrid, x, y float64) float64 {
	w, h := float64(g.Dx()), float64(g.Dy())
	if x < -0.5 || y < -0.5 || x > w-0.5 || y > h-0.5 {
		return math.NaN()
	}

	x = math.Max(0, math.Min(x, w-1))
	y = math.Max(0, math.Min(y, h-1))

	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= g.Dx() { x1 = x0 }
	if y1 >= g.Dy() { y1 = y0 }
	fx, fy := x-float64(x0), y-float64(y0)

	top := (1-fx)*g.Get(x0, y0) + fx*g.Get(x1, y0)
	bot := (1-fx)*g.Get(x0, y1) + fx*g.Get(x1, y1)
	return (1-fy)*top + fy*bot
}

// Nearest takes the value of the closest source pixel. It is quicker
// than Bilinear, and keeps hot pixels sharp.
type Nearest struct{}

func (Nearest)Resample(src emath.FloatGrid, srcFrame, dst wcs.Frame, w, h int) emath.FloatGrid {
	out := emath.NewFloatGrid(w, h)
	for y:=0; y<h; y++ {
		row := out.Row(y)
		for x:=0; x<w; x++ {
			a, b := dst.PixelToWorld(float64(x), float64(y))
			sx, sy, ok := srcFrame.WorldToPixel(a, b)
			ix, iy := int(math.Floor(sx+0.5)), int(math.Floor(sy+0.5))
			if !ok || ix < 0 || iy < 0 || ix >= src.Dx() || iy >= src.Dy() {
				row[x] = math.NaN()
				continue
			}
			row[x] = src.Get(ix, iy)
		}
	}
	return out
}

func ListResamplers() string { return "bilinear, nearest" }

func GetResampler(name string) (Resampler, error) {
	switch name {
	case "bilinear", "": return Bilinear{}, nil
	case "nearest":      return Nearest{}, nil
	default:
		return nil, fmt.Errorf("no resampler named '%s' (have %s)", name, ListResamplers())
	}
}
