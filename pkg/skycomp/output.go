package skycomp

import(
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/skycomposite/pkg/colorspec"
	"github.com/abworrall/skycomposite/pkg/emath"
)

// Write saves the composite, and a preview if Config.PreviewWidth is set.
func (c *Composite)Write(filename string) error {
	if c.Image == nil {
		return fmt.Errorf("write '%s': nothing composited yet", filename)
	}

	if err := WriteImage(c.Image, filename); err != nil {
		return err
	}
	log.Printf("Wrote %s (%dx%d)\n", filename, c.Image.Bounds().Dx(), c.Image.Bounds().Dy())

	if c.PreviewWidth > 0 {
		previewFilename := PreviewFilename(filename)
		if err := WriteImage(Preview(c.Image, c.PreviewWidth), previewFilename); err != nil {
			return err
		}
		log.Printf("Wrote %s\n", previewFilename)
	}

	return nil
}

// WriteLayers saves each grayscale layer into Config.LayersDir, plus
// the enhanced float grid of each exposure if Config.WriteHDRLayers.
func (c *Composite)WriteLayers() error {
	if c.LayersDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.LayersDir, 0755); err != nil {
		return fmt.Errorf("layers dir '%s': %w", c.LayersDir, err)
	}

	for _, l := range c.Layers {
		filename := filepath.Join(c.LayersDir, l.ExportFilename(c.LayerFormat))
		if err := WriteImage(l.Gray, filename); err != nil {
			return fmt.Errorf("layer %s: %w", l.Name, err)
		}
		if c.Verbosity > 0 {
			log.Printf("Wrote layer %s\n", filename)
		}
	}

	if c.WriteHDRLayers {
		for _, e := range c.Exposures {
			l := Layer{Name: e.Name, Prefix: e.Prefix(), Filter: e.Filter}
			filename := filepath.Join(c.LayersDir, l.ExportFilename("hdr"))
			if err := e.WriteToHDR(filename); err != nil {
				return err
			}
			if c.Verbosity > 0 {
				log.Printf("Wrote HDR layer %s\n", filename)
			}
		}
	}

	return nil
}

// ExportColors writes the color of every layer to Config.ExportColorsFile,
// in a form that can be fed back in as Config.ColorsFile.
func (c *Composite)ExportColors() error {
	if c.ExportColorsFile == "" {
		return nil
	}
	if err := colorspec.WriteFile(c.ExportColorsFile, c.Colors()); err != nil {
		return err
	}
	log.Printf("Exported %d colors to %s\n", len(c.Layers), c.ExportColorsFile)
	return nil
}

// hdrGrid presents a FloatGrid as a gray hdr.Image, flipped into image
// orientation. NaN pixels come out black.
type hdrGrid struct {
	emath.FloatGrid
}

// Implement image.Image
func (g hdrGrid)ColorModel() color.Model { return hdrcolor.RGBModel }
func (g hdrGrid)Bounds() image.Rectangle { return image.Rect(0, 0, g.Dx(), g.Dy()) }
func (g hdrGrid)At(x, y int) color.Color { return g.HDRAt(x, y) }

// Implement hdr.Image
func (g hdrGrid)HDRAt(x, y int) hdrcolor.Color {
	v := emath.Clip01(g.Get(x, g.Dy()-1-y))
	return hdrcolor.RGB{R: v, G: v, B: v}
}
func (g hdrGrid)Size() int { return g.Dx() * g.Dy() }

// WriteToHDR outputs the exposure's current float grid as a Radiance
// HDR image. After processing that is the contrast enhanced data.
func (e *Exposure)WriteToHDR(filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("Exposure.WriteToHDR, open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		if err := rgbe.Encode(writer, hdrGrid{e.Grid}); err != nil {
			return fmt.Errorf("Exposure.WriteToHDR, encoding RGBE file: %w", err)
		}
		return nil
	}
}
