package skycomp

import(
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/abworrall/skycomposite/pkg/colorize"
	"github.com/abworrall/skycomposite/pkg/emath"
	"github.com/abworrall/skycomposite/pkg/filters"
	"github.com/abworrall/skycomposite/pkg/wcs"
)

// An Exposure holds the float data loaded from a FITS file, with
// enough metadata to place it on the sky and give it a color.
type Exposure struct {
	LoadFilename string
	Name         string
	Filter       *filters.Filter   // nil if we couldn't work it out
	Frame        wcs.Frame

	Grid         emath.FloatGrid   // Raw intensities; replaced by the enhanced [0,1] values once processed
	Gray         *image.Gray       // On the reference grid, in display orientation; nil until processed
}

func (e *Exposure)Width() int      { return e.Grid.Dx() }
func (e *Exposure)Height() int     { return e.Grid.Dy() }
func (e *Exposure)Resolution() int { return e.Width() * e.Height() }

func (e *Exposure)String() string {
	filt := "no filter"
	if e.Filter != nil {
		filt = e.Filter.FullName()
	}
	return fmt.Sprintf("%s: %dx%d, %s, frame %v", e.Name, e.Width(), e.Height(), filt, e.Frame)
}

func (e *Exposure)Filename() string {
	return filepath.Base(e.LoadFilename)
}

// Prefix is the leading part of the filename, up to the first '-' or
// '.', which for JWST products is the program ID ("jw02731").
func (e *Exposure)Prefix() string {
	base := e.Filename()
	if i := strings.IndexAny(base, "-."); i > 0 {
		return base[:i]
	}
	return base
}

// A Layer is one grayscale image on the shared reference grid, and the
// color it gets in the composite.
type Layer struct {
	Name       string
	SourcePath string            // the file the layer came from; used to look up color overrides
	Prefix     string            // used when naming exported layer files
	Filter     *filters.Filter

	Gray       *image.Gray
	HSV        colorize.HSV
	Colored    *image.RGBA
}

func (l *Layer)String() string {
	return fmt.Sprintf("%s: %v, HSV%s", l.Name, l.Gray.Bounds(), l.HSV)
}

// ExportFilename is "<prefix>_<INSTRUMENT>-<FILTER>.<ext>" if the
// filter is known, else "<prefix>_<name>.<ext>".
func (l *Layer)ExportFilename(ext string) string {
	if l.Filter != nil {
		return filters.LayerFilename(l.Prefix, *l.Filter, ext)
	}
	return fmt.Sprintf("%s_%s.%s", l.Prefix, l.Name, strings.TrimPrefix(ext, "."))
}
