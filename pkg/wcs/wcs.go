// Package wcs maps between pixel positions and positions on the sky.
//
// Pixel coordinates are zero-based, with (0,0) the centre of the first
// pixel of the first row; FITS headers count from one, and that offset
// is handled here. Sky positions are in degrees.
package wcs

import(
	"fmt"
	"math"
	"strings"

	"github.com/abworrall/skycomposite/pkg/emath"
	"github.com/abworrall/skycomposite/pkg/fits"
)

// A Frame ties a pixel grid to the sky.
type Frame interface {
	PixelToWorld(x, y float64) (float64, float64)
	WorldToPixel(a, b float64) (float64, float64, bool)  // false if the point can't be projected

	// SliceRows returns the frame for the sub-grid of rows [start,end).
	SliceRows(start, end int) Frame
}

// TAN is the gnomonic projection, which JWST mosaics use.
type TAN struct {
	CRVal1, CRVal2 float64     // the tangent point, (RA,Dec) degrees
	ToPlane        emath.Aff3  // zero-based pixel -> intermediate world coords, degrees
	FromPlane      emath.Aff3
}

func NewTAN(crpix1, crpix2, crval1, crval2 float64, cd [4]float64) (*TAN, error) {
	m := emath.Aff3{cd[0], cd[1], 0,   cd[2], cd[3], 0}.Translate(1-crpix1, 1-crpix2)
	inv, err := m.Invert()
	if err != nil {
		return nil, fmt.Errorf("wcs CD matrix: %w", err)
	}
	return &TAN{CRVal1: crval1, CRVal2: crval2, ToPlane: m, FromPlane: inv}, nil
}

// FromHeader reads a TAN frame from the usual header keywords, taking
// the linear part from CDi_j if present, else from PCi_j and CDELTi.
func FromHeader(h fits.Header) (*TAN, error) {
	for _, k := range []string{"CTYPE1", "CTYPE2"} {
		if ct := h.GetString(k); !strings.HasSuffix(ct, "-TAN") {
			return nil, fmt.Errorf("wcs %s='%s': only TAN projections are supported", k, ct)
		}
	}

	get := func(k string, def float64) float64 {
		if v, ok := h.GetFloat(k); ok {
			return v
		}
		return def
	}

	var cd [4]float64
	if _, ok := h.GetFloat("CD1_1"); ok {
		cd = [4]float64{get("CD1_1", 0), get("CD1_2", 0), get("CD2_1", 0), get("CD2_2", 0)}
	} else {
		cdelt1, cdelt2 := get("CDELT1", 1), get("CDELT2", 1)
		cd = [4]float64{
			cdelt1 * get("PC1_1", 1), cdelt1 * get("PC1_2", 0),
			cdelt2 * get("PC2_1", 0), cdelt2 * get("PC2_2", 1),
		}
	}

	return NewTAN(get("CRPIX1", 0), get("CRPIX2", 0), get("CRVAL1", 0), get("CRVAL2", 0), cd)
}

const deg = math.Pi / 180.0

func (t *TAN)PixelToWorld(x, y float64) (float64, float64) {
	xi, eta := t.ToPlane.Apply(x, y)
	xi, eta = xi*deg, eta*deg

	a0, d0 := t.CRVal1*deg, t.CRVal2*deg
	den := math.Cos(d0) - eta*math.Sin(d0)

	ra := a0 + math.Atan2(xi, den)
	dec := math.Atan2(eta*math.Cos(d0) + math.Sin(d0), math.Hypot(xi, den))

	ra = math.Mod(ra/deg, 360)
	if ra < 0 {
		ra += 360
	}
	return ra, dec/deg
}

func (t *TAN)WorldToPixel(ra, dec float64) (float64, float64, bool) {
	a, d := ra*deg, dec*deg
	a0, d0 := t.CRVal1*deg, t.CRVal2*deg

	cosc := math.Sin(d0)*math.Sin(d) + math.Cos(d0)*math.Cos(d)*math.Cos(a-a0)
	if cosc <= 0 {
		return 0, 0, false // the far hemisphere
	}

	xi := math.Cos(d) * math.Sin(a-a0) / cosc
	eta := (math.Cos(d0)*math.Sin(d) - math.Sin(d0)*math.Cos(d)*math.Cos(a-a0)) / cosc

	x, y := t.FromPlane.Apply(xi/deg, eta/deg)
	return x, y, true
}

func (t *TAN)SliceRows(start, end int) Frame {
	t2 := *t
	t2.ToPlane = t.ToPlane.Translate(0, float64(start))
	t2.FromPlane = emath.Identity().Translate(0, -float64(start)).Mult(t.FromPlane)
	return &t2
}

func (t *TAN)String() string {
	return fmt.Sprintf("TAN[(%.6f,%.6f), %s]", t.CRVal1, t.CRVal2, t.ToPlane)
}

// Affine is a flat frame, where world coords are an affine function of
// pixel coords. Handy for images that are already roughly registered.
type Affine struct {
	M   emath.Aff3
	inv emath.Aff3
}

func NewAffine(m emath.Aff3) (*Affine, error) {
	inv, err := m.Invert()
	if err != nil {
		return nil, err
	}
	return &Affine{M: m, inv: inv}, nil
}

func (f *Affine)PixelToWorld(x, y float64) (float64, float64) { return f.M.Apply(x, y) }

func (f *Affine)WorldToPixel(a, b float64) (float64, float64, bool) {
	x, y := f.inv.Apply(a, b)
	return x, y, true
}

func (f *Affine)SliceRows(start, end int) Frame {
	return &Affine{
		M:   f.M.Translate(0, float64(start)),
		inv: emath.Identity().Translate(0, -float64(start)).Mult(f.inv),
	}
}
