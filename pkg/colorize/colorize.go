// Package colorize gives each exposure a false color. The hue comes
// from where the filter's wavelength sits in its instrument's range
// (short is blue, long is red), and the saturation from how narrow
// the filter is.
package colorize

import(
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/skycomposite/pkg/filters"
)

var ErrConfiguration = errors.New("configuration error")

const(
	HueMin = 0.0
	HueMax = 240.0 / 360.0  // blue; going further would wrap round to magenta
)

// HSV components are all in [0,1]; hue is a fraction of the full circle.
type HSV struct {
	H, S, V float64
}

func (c HSV)Color() colorful.Color { return colorful.Hsv(c.H*360.0, c.S, c.V) }
func (c HSV)Hex() string           { return c.Color().Clamped().Hex() }

// String is in degrees and percent, as in colors files.
func (c HSV)String() string {
	return fmt.Sprintf("(%.0f, %.0f, %.0f)", c.H*360, c.S*100, c.V*100)
}

func (c HSV)Validate() error {
	if c.H < 0 || c.H >= 1 || c.S < 0 || c.S > 1 || c.V < 0 || c.V > 1 {
		return fmt.Errorf("HSV %v out of range: %w", [3]float64{c.H, c.S, c.V}, ErrConfiguration)
	}
	return nil
}

// A Resolution is what ResolveHSV could work out; hue and saturation
// may still be missing.
type Resolution struct {
	H, S Maybe
	V    float64
}

// HSV fills in anything missing with the gray of HueSaturationOf(nil).
func (r Resolution)HSV() HSV {
	return HSV{H: r.H.Or(0), S: r.S.Or(0), V: r.V}
}

// ResolveHSV decides a layer's color. Explicit values win; then values
// derived from the filter, if there is one. Value defaults to 1.0. In
// strict mode, a hue or saturation that is still missing is an error.
func ResolveHSV(h, s, v Maybe, f *filters.Filter, cat *filters.Catalog, strict bool) (Resolution, error) {
	derivedH, derivedS := None, None
	if f != nil {
		fh, fs, err := HueSaturationOf(f, cat)
		if err != nil {
			return Resolution{}, err
		}
		derivedH, derivedS = Some(fh), Some(fs)
	}

	r := Resolution{
		H: First(h, derivedH),
		S: First(s, derivedS),
		V: v.Or(1.0),
	}

	if strict && (!r.H.IsSet() || !r.S.IsSet()) {
		return r, fmt.Errorf("no filter, and no hue/saturation given (h=%s, s=%s): %w", r.H, r.S, ErrConfiguration)
	}
	if err := r.HSV().Validate(); err != nil {
		return r, err
	}
	return r, nil
}

// HueSaturationOf maps a filter to a hue and saturation, relative to
// the other filters on the same instrument. No filter means gray. A
// nil catalog means filters.JWST.
func HueSaturationOf(f *filters.Filter, cat *filters.Catalog) (float64, float64, error) {
	if f == nil {
		return 0, 0, nil
	}
	if cat == nil {
		cat = filters.JWST
	}

	wlMin, wlMax, err1 := cat.RangeOf(f.Instrument, filters.Wavelength)
	bwMin, bwMax, err2 := cat.RangeOf(f.Instrument, filters.Bandwidth)
	if err := errors.Join(err1, err2); err != nil {
		return 0, 0, fmt.Errorf("filter %s: %v: %w", f.FullName(), err, ErrConfiguration)
	}

	wlProp := proportion(f.WavelengthMicrons, wlMin, wlMax)
	hue := HueMax - sCurve(wlProp)*(HueMax-HueMin)

	sat := 1.0 - proportion(f.BandwidthMicrons, bwMin, bwMax)

	return hue, sat, nil
}

func proportion(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// sCurve pushes proportions away from the middle, so that the ends of
// the wavelength range get more distinct hues. It is undefined at 0
// and 1, where the rounded input is used.
func sCurve(p float64) float64 {
	if p <= 0 || p >= 1 {
		return math.Round(p)
	}
	return 1.0 / (1.0 + math.Pow(p/(1.0-p), -2))
}
