package emath

import(
	"fmt"
	"math"
	"sort"

	"github.com/codahale/hdrhistogram"
	"gonum.org/v1/gonum/stat"
)

// A Percentiler returns the requested percentiles (0-100) of the
// finite values in vals.
type Percentiler func(vals []float64, percentiles ...float64) ([]float64, error)

func ListPercentilers() string { return "numpy, gonum, approx" }

func GetPercentiler(name string) (Percentiler, error) {
	switch name {
	case "numpy", "": return NumpyPercentiles, nil
	case "gonum":     return GonumPercentiles, nil
	case "approx":    return ApproxPercentiles, nil
	default:
		return nil, fmt.Errorf("no percentile strategy named '%s' (have %s)", name, ListPercentilers())
	}
}

func sortedFinite(vals []float64) ([]float64, error) {
	sorted := Finite(vals)
	if len(sorted) == 0 {
		return nil, fmt.Errorf("percentile: no finite values in %d", len(vals))
	}
	sort.Float64s(sorted)
	return sorted, nil
}

// NumpyPercentiles interpolates linearly between the closest ranks,
// putting the p'th percentile at index p/100*(n-1). This is what
// numpy.percentile does by default.
func NumpyPercentiles(vals []float64, percentiles ...float64) ([]float64, error) {
	sorted, err := sortedFinite(vals)
	if err != nil {
		return nil, err
	}

	ret := make([]float64, len(percentiles))
	for i, p := range percentiles {
		h := math.Max(0, math.Min(1, p/100.0)) * float64(len(sorted)-1)
		lo := int(math.Floor(h))
		if lo >= len(sorted)-1 {
			ret[i] = sorted[len(sorted)-1]
			continue
		}
		ret[i] = sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
	}
	return ret, nil
}

// GonumPercentiles uses the linear interpolation of the empirical CDF.
func GonumPercentiles(vals []float64, percentiles ...float64) ([]float64, error) {
	sorted, err := sortedFinite(vals)
	if err != nil {
		return nil, err
	}

	ret := make([]float64, len(percentiles))
	for i, p := range percentiles {
		ret[i] = stat.Quantile(math.Max(0, math.Min(1, p/100.0)), stat.LinInterp, sorted, nil)
	}
	return ret, nil
}

// approxResolution is the number of fixed-point steps the value range
// is divided into.
const approxResolution = 1000000

// ApproxPercentiles streams the values through a HDR histogram, and
// doesn't need to sort (or copy) them. Results are within a few parts
// per thousand of the value range.
func ApproxPercentiles(vals []float64, percentiles ...float64) ([]float64, error) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) { continue }
		if v < min { min = v }
		if v > max { max = v }
	}
	if math.IsInf(min, 1) {
		return nil, fmt.Errorf("percentile: no finite values in %d", len(vals))
	}

	ret := make([]float64, len(percentiles))
	if max == min {
		for i := range ret {
			ret[i] = min
		}
		return ret, nil
	}

	scale := approxResolution / (max - min)
	h := hdrhistogram.New(0, approxResolution, 3)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) { continue }
		if err := h.RecordValue(int64((v - min) * scale)); err != nil {
			return nil, fmt.Errorf("percentile: record %f: %v", v, err)
		}
	}

	for i, p := range percentiles {
		ret[i] = min + float64(h.ValueAtQuantile(p)) / scale
		if ret[i] > max {
			ret[i] = max
		}
	}
	return ret, nil
}
