package skycomp

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/abworrall/skycomposite/pkg/filters"
	"github.com/abworrall/skycomposite/pkg/fits"
	"github.com/abworrall/skycomposite/pkg/wcs"
)

func (c *Composite)LoadFilesAndDirs(args ...string) (error) {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %w", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %w", arg, err)
			}
			for _, content := range contents {
				if err := c.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return err
				}
			}

		default: // is a file, load it
			if err := c.loadFile(arg); err != nil {
				return fmt.Errorf("loadfile %s: %w", arg, err)
			}
		}
	}

	return nil
}

func (c *Composite)loadFile(filename string) error {
	ext := filepath.Ext(filename)

	switch strings.ToLower(ext) {

	case ".fits", ".fit", ".fts":
		e, err := LoadExposure(filename, c.catalog())
		if err != nil {
			return fmt.Errorf("Loading %s as FITS failed: %w", filename, err)
		}
		c.AddExposure(e)
		log.Printf("Loaded %s\n", e)

	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		l, err := LoadLayer(filename, c.catalog())
		if err != nil {
			return fmt.Errorf("Loading %s as a layer image failed: %w", filename, err)
		}
		c.AddLayer(l)
		log.Printf("Loaded %s\n", l)

	case ".yaml":
		cfg, err := loadConfig(filename)
		if err != nil {
			return fmt.Errorf("Loading %s as config YAML failed: %w", filename, err)
		}
		c.Config = cfg
		log.Printf("Loaded base configuration from %s\n", filename)
	}

	return nil
}

func loadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %w", filename, err)
	}

	return newConfigFromYaml(contents)
}

// LoadExposure reads the first image HDU of a FITS file, and works
// out its filter and its world coordinate frame. A nil catalog means
// filters.JWST.
func LoadExposure(filename string, cat *filters.Catalog) (*Exposure, error) {
	if cat == nil {
		cat = filters.JWST
	}

	f, err := fits.Open(filename)
	if err != nil {
		return nil, err
	}

	hdu, err := f.Image()
	if err != nil {
		return nil, err
	}

	frame, err := wcs.FromHeader(hdu.Header)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", filename, err)
	}

	e := &Exposure{
		LoadFilename: filename,
		Grid:         hdu.Data,
		Frame:        frame,
		Filter:       filterFromFITS(filename, f.Primary(), hdu.Header, cat),
	}

	if e.Filter != nil {
		e.Name = e.Filter.Name
	} else {
		e.Name = strings.TrimSuffix(e.Filename(), filepath.Ext(filename))
	}

	return e, nil
}

// filterFromFITS tries the INSTRUME/PUPIL/FILTER cards first, then the
// FILENAME card, then the name of the file itself.
func filterFromFITS(filename string, primary, img fits.Header, cat *filters.Catalog) *filters.Filter {
	for _, h := range []fits.Header{primary, img} {
		inst := h.GetString("INSTRUME")
		for _, key := range []string{"PUPIL", "FILTER"} {
			if name := h.GetString(key); inst != "" && name != "" {
				if f, err := cat.Lookup(inst, name); err == nil {
					return &f
				}
			}
		}
	}

	for _, candidate := range []string{primary.GetString("FILENAME"), filename} {
		if candidate == "" {
			continue
		}
		if f, ok := cat.InferFromFilename(candidate); ok {
			return &f
		}
		if f, ok := cat.MatchInFilename(candidate); ok {
			return &f
		}
	}

	return nil
}

// LoadLayer reads a PNG, JPEG or TIFF as an 8-bit grayscale layer.
func LoadLayer(filename string, cat *filters.Catalog) (*Layer, error) {
	if cat == nil {
		cat = filters.JWST
	}

	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r img '%s': %w", filename, err)
	}
	defer reader.Close()

	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("image decode '%s': %w", filename, err)
	}

	l := &Layer{
		Name:       strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		SourcePath: filename,
		Gray:       toGray(img),
	}
	l.Prefix = l.Name

	if f, ok := cat.InferFromFilename(filename); ok {
		l.Filter = &f
		l.Prefix = l.Name[:strings.LastIndex(l.Name, "_")]
	} else if f, ok := filterFromLayerFile(filename, cat); ok {
		l.Filter = &f
	}

	return l, nil
}

func filterFromLayerFile(filename string, cat *filters.Catalog) (filters.Filter, bool) {
	if f, ok := cat.MatchInFilename(filename); ok {
		return f, true
	}
	if desc := exifDescription(filename); desc != "" {
		return cat.MatchInFilename(desc)
	}
	return filters.Filter{}, false
}

// exifDescription returns the ImageDescription tag, if the file has
// one. Layers exported by other tools sometimes note the filter there.
func exifDescription(filename string) string {
	reader, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return ""
	}
	tag, err := ex.Get(exif.ImageDescription)
	if err != nil {
		return ""
	}
	desc, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(desc, string(filepath.Separator), " ")
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}
