package contrast

import(
	"math"

	"github.com/abworrall/skycomposite/pkg/emath"
)

// CLAHE does contrast limited adaptive histogram equalization. The
// image is cut into tiles; each tile gets its own equalizing lookup
// table, built from a histogram whose peaks have been clipped (and the
// excess shared out) so near-uniform tiles don't get their noise
// amplified. Each pixel is then mapped through the tables of the four
// nearest tile centres, interpolated bilinearly.
//
// Input values are expected in [0,1]; so are the outputs.
func CLAHE(g emath.FloatGrid, opts Options) emath.FloatGrid {
	w, h := g.Dx(), g.Dy()
	nbins := opts.Bins
	if nbins < 2 {
		nbins = 256
	}

	kw, kh := opts.KernelW, opts.KernelH
	if kw <= 0 { kw = w / 8 }
	if kh <= 0 { kh = h / 8 }
	if kw < 1  { kw = 1 }
	if kh < 1  { kh = 1 }

	tilesX := (w + kw - 1) / kw
	tilesY := (h + kh - 1) / kh

	clim := int(opts.ClipLimit * float64(kw*kh))
	if clim < 1 {
		clim = 1
	}

	bins := binIndices(g, nbins)

	luts := make([][]float64, tilesX*tilesY)
	hist := make([]int, nbins)
	for ty:=0; ty<tilesY; ty++ {
		for tx:=0; tx<tilesX; tx++ {
			for i := range hist { hist[i] = 0 }
			n := 0
			for y:=ty*kh; y<(ty+1)*kh && y<h; y++ {
				for x:=tx*kw; x<(tx+1)*kw && x<w; x++ {
					hist[bins[y*w+x]]++
					n++
				}
			}
			clipHistogram(hist, clim)
			luts[ty*tilesX + tx] = mapHistogram(hist, n)
		}
	}

	out := g.NewFromThis()
	for y:=0; y<h; y++ {
		y0, y1, wy := neighbours(y, kh, tilesY)
		for x:=0; x<w; x++ {
			x0, x1, wx := neighbours(x, kw, tilesX)
			b := bins[y*w+x]

			top := (1-wx)*luts[y0*tilesX + x0][b] + wx*luts[y0*tilesX + x1][b]
			bot := (1-wx)*luts[y1*tilesX + x0][b] + wx*luts[y1*tilesX + x1][b]
			out.Set(x, y, (1-wy)*top + wy*bot)
		}
	}

	return out
}

// binIndices stretches the grid to its full [0,1] range, and assigns each value to a bin.
func binIndices(g emath.FloatGrid, nbins int) []int {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range g.Values() {
		if v < lo { lo = v }
		if v > hi { hi = v }
	}
	scale := 0.0
	if hi > lo {
		scale = 1.0 / (hi - lo)
	}

	bins := make([]int, len(g.Values()))
	for i, v := range g.Values() {
		bins[i] = int(math.RoundToEven(emath.Clip01((v-lo)*scale) * float64(nbins-1)))
	}
	return bins
}

// neighbours finds the two tiles whose centres bracket pixel p, and how
// far p sits between them. Past the outermost centres, both are the
// edge tile.
func neighbours(p, k, nTiles int) (int, int, float64) {
	pos := (float64(p) + 0.5) / float64(k) - 0.5
	i0 := int(math.Floor(pos))
	frac := pos - float64(i0)

	if i0 < 0 {
		return 0, 0, 0
	}
	if i0 >= nTiles-1 {
		return nTiles-1, nTiles-1, 0
	}
	return i0, i0+1, frac
}

// clipHistogram caps every bin at clim, and shares the excess evenly
// among the bins, never pushing one over the cap.
func clipHistogram(hist []int, clim int) {
	excess := 0
	for i, n := range hist {
		if n > clim {
			excess += n - clim
			hist[i] = clim
		}
	}

	incr := excess / len(hist)
	upper := clim - incr
	for i, n := range hist {
		if n > upper {
			excess -= clim - n
			hist[i] = clim
		} else {
			excess -= incr
			hist[i] += incr
		}
	}

	for excess > 0 {
		prev := excess
		for i := 0; i < len(hist) && excess > 0; i++ {
			if hist[i] < clim {
				hist[i]++
				excess--
			}
		}
		if excess == prev {
			break
		}
	}
}

// mapHistogram turns a histogram into a cumulative lookup table over [0,1].
func mapHistogram(hist []int, n int) []float64 {
	lut := make([]float64, len(hist))
	if n == 0 {
		return lut
	}
	cum := 0
	for i, c := range hist {
		cum += c
		lut[i] = math.Min(1.0, float64(cum) / float64(n))
	}
	return lut
}
