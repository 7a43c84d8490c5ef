package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
)

// A FloatGrid is a grid of floats, with some operations. Row y=0 is
// the first row of the underlying data; for FITS data that is the
// bottom of the picture.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFloatGridFrom wraps a row-major slice of values; it does not copy.
func NewFloatGridFrom(w, h int, values []float64) (FloatGrid, error) {
	if w <= 0 || h <= 0 || len(values) != w*h {
		return FloatGrid{}, fmt.Errorf("floatgrid %dx%d: have %d values", w, h, len(values))
	}
	return FloatGrid{stride: w, values: values}, nil
}

func (g1 *FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Dy() int                 { if fg.stride == 0 { return 0 }; return len(fg.values) / fg.stride }
func (fg *FloatGrid)Values() []float64       { return fg.values }
func (fg *FloatGrid)Row(y int) []float64     { return fg.values[fg.stride*y : fg.stride*(y+1)] }

// Rescale maps [lo,hi] linearly onto [0,1], and clips. NaNs become 0,
// as does everything when the range is empty.
func (fg *FloatGrid)Rescale(lo, hi float64) FloatGrid {
	g2 := fg.NewFromThis()
	if !(hi > lo) {
		return g2
	}

	scale := 1.0 / (hi - lo)
	for i, v := range fg.values {
		g2.values[i] = Clip01((v - lo) * scale)
	}
	return g2
}

// Clip01 clamps to [0,1], mapping NaN to 0.
func Clip01(v float64) float64 {
	switch {
	case math.IsNaN(v): return 0
	case v < 0:         return 0
	case v > 1:         return 1
	}
	return v
}

// ToUint8 converts a [0,1] float into a byte, rounding half to even.
func ToUint8(v float64) uint8 {
	return uint8(math.RoundToEven(Clip01(v) * 255.0))
}

// ToGray quantizes the grid into 8-bit. Row y of the grid becomes row y of the image.
func (fg *FloatGrid)ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, fg.Dx(), fg.Dy()))
	for y:=0; y<fg.Dy(); y++ {
		row := fg.Row(y)
		pix := img.Pix[y*img.Stride : y*img.Stride + fg.Dx()]
		for x, v := range row {
			pix[x] = ToUint8(v)
		}
	}
	return img
}

func (fg *FloatGrid)Stats() string {
	min := math.MaxFloat64
	max := -1.0  * min
	nans := 0

	for i:=0 ; i<len(fg.values) ; i++ {
		if math.IsNaN(fg.values[i]) { nans++; continue }
		if fg.values[i] > max { max = fg.values[i] }
		if fg.values[i] < min { min = fg.values[i] }
	}
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}, %d NaN]", fg.Dx(), fg.Dy(), min, max, nans)
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision. It is flipped, so FITS data comes out the right way up.
func (fg *FloatGrid)ToImg(title, filename string) error {
	min, max := math.MaxFloat64, -math.MaxFloat64
	for i:=0; i<len(fg.values); i++ {
		if math.IsNaN(fg.values[i]) { continue }
		if fg.values[i] > max { max = fg.values[i] }
		if fg.values[i] < min { min = fg.values[i] }
	}
	if !(max > min) {
		max = min + 1
	}

	img := image.NewRGBA64(image.Rectangle{Max:image.Point{fg.Dx(), fg.Dy()}})
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			lum := Clip01((fg.Get(x,y) - min) / (max - min))
			gray := uint16(GammaExpand_F64(lum) * 65535.0)
			img.Set(x, fg.Dy()-1-y, color.RGBA64{gray, gray, gray, 0xFFFF})
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1,1,0)
	dc.DrawString(title, 20, 20)
	return dc.SavePNG(filename)
}
