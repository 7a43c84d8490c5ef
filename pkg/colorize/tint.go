package colorize

import(
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// Tint multiplies a grayscale image by the RGB equivalent of the
// color, truncating to bytes.
func Tint(gray *image.Gray, c HSV) *image.RGBA {
	col := c.Color()
	var lut [3][256]uint8
	for i:=0; i<256; i++ {
		lut[0][i] = uint8(float64(i) * col.R)
		lut[1][i] = uint8(float64(i) * col.G)
		lut[2][i] = uint8(float64(i) * col.B)
	}

	b := gray.Bounds()
	out := image.NewRGBA(b)
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		src := gray.Pix[gray.PixOffset(b.Min.X, y):]
		dst := out.Pix[out.PixOffset(b.Min.X, y):]
		for x:=0; x<b.Dx(); x++ {
			g := src[x]
			dst[4*x+0] = lut[0][g]
			dst[4*x+1] = lut[1][g]
			dst[4*x+2] = lut[2][g]
			dst[4*x+3] = 0xFF
		}
	}
	return out
}

// Smooth applies a gaussian blur to a layer, to knock back noise
// before it gets tinted. A radius of zero does nothing.
func Smooth(gray *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return gray
	}

	blurred := blur.Gaussian(gray, radius)

	b := blurred.Bounds()
	out := image.NewGray(gray.Bounds())
	for y:=0; y<b.Dy(); y++ {
		src := blurred.Pix[y*blurred.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x:=0; x<b.Dx(); x++ {
			dst[x] = src[4*x] // gray in, so R==G==B
		}
	}
	return out
}
