package skycomp

// A few helper routines for golang's image libraries

import(
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/abworrall/skycomposite/pkg/colorize"
)

const JPEGQuality = 95

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

func WriteJPEG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: JPEGQuality})
	}
}

// WriteImage picks the encoder from the filename's extension.
func WriteImage(img image.Image, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":          return WritePNG(img, filename)
	case ".jpg", ".jpeg": return WriteJPEG(img, filename)
	default:
		return fmt.Errorf("'%s': unsupported output format, want .png, .jpg or .jpeg", filename)
	}
}

// FlipVertical returns a copy with the rows in reverse order, turning
// FITS orientation (row 0 at the bottom) into image orientation.
func FlipVertical(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y:=0; y<b.Dy(); y++ {
		srcRow := src.Pix[src.PixOffset(b.Min.X, b.Max.Y-1-y):]
		copy(dst.Pix[dst.PixOffset(0, y):dst.PixOffset(0, y+1)], srcRow[:b.Dx()])
	}
	return dst
}

// Preview scales the image down to the given width, keeping the
// aspect ratio. Images already narrow enough are returned as-is.
func Preview(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || width >= b.Dx() {
		return img
	}

	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// PreviewFilename turns "out.png" into "out-preview.png".
func PreviewFilename(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "-preview" + ext
}

// DrawLegend writes each layer's name in the bottom left corner, in
// its hue at full brightness. The input image is left untouched.
func DrawLegend(img *image.RGBA, layers []*Layer) *image.RGBA {
	dc := gg.NewContextForImage(img)
	lineHeight := dc.FontHeight() * 1.5
	y := float64(img.Bounds().Dy()) - 10 - lineHeight*float64(len(layers)-1)

	for _, l := range layers {
		col := colorize.HSV{H: l.HSV.H, S: l.HSV.S, V: 1}.Color()
		dc.SetRGB(col.R, col.G, col.B)
		dc.DrawString(l.Name, 10, y)
		y += lineHeight
	}

	if out, ok := dc.Image().(*image.RGBA); ok {
		return out
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return out
}
