// Package contrast stretches raw exposure intensities so that faint
// structure is visible: a percentile clip, followed by adaptive
// histogram equalization.
package contrast

import(
	"fmt"

	"github.com/abworrall/skycomposite/pkg/emath"
)

type Options struct {
	LowPercentile  float64  // maps to 0.0
	HighPercentile float64  // maps to 1.0
	ClipLimit      float64  // CLAHE clip limit, as a fraction of the tile area
	Bins           int      // CLAHE histogram bins
	KernelW        int      // CLAHE tile size; 0 means 1/8 of the image
	KernelH        int
	Percentiler    string   // see emath.GetPercentiler
}

func DefaultOptions() Options {
	return Options{
		LowPercentile:  15,
		HighPercentile: 99.85,
		ClipLimit:      0.02,
		Bins:           256,
		Percentiler:    "numpy",
	}
}

// Enhance returns a new grid, the same shape as g, with values in [0,1].
func Enhance(g emath.FloatGrid, opts Options) (emath.FloatGrid, error) {
	if g.Dx() == 0 || g.Dy() == 0 {
		return emath.FloatGrid{}, fmt.Errorf("contrast: empty grid")
	}

	pFunc, err := emath.GetPercentiler(opts.Percentiler)
	if err != nil {
		return emath.FloatGrid{}, fmt.Errorf("contrast: %w", err)
	}

	p, err := pFunc(g.Values(), opts.LowPercentile, opts.HighPercentile)
	if err != nil {
		return emath.FloatGrid{}, fmt.Errorf("contrast: %w", err)
	}

	stretched := g.Rescale(p[0], p[1])
	return CLAHE(stretched, opts), nil
}
