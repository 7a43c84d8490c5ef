package reproject

import "fmt"

// A Band is the half-open row range [Start,End) of the reference grid.
type Band struct {
	Start int
	End   int
}

func (b Band)Height() int { return b.End - b.Start }

func (b Band)String() string { return fmt.Sprintf("rows[%d,%d)", b.Start, b.End) }

// BandIterator walks the reference grid top to bottom (in row order),
// in bands of at most maxPixels pixels, but never less than one row.
//
//   for it := Bands(w, h, maxPixels); it.Next(); {
//     b := it.Band()
//   }
type BandIterator struct {
	height     int
	bandHeight int
	cur        Band
}

func Bands(width, height, maxPixels int) *BandIterator {
	bandHeight := 1
	if width > 0 && maxPixels/width > 1 {
		bandHeight = maxPixels / width
	}
	return &BandIterator{height: height, bandHeight: bandHeight}
}

func (it *BandIterator)Next() bool {
	if it.cur.End >= it.height {
		return false
	}
	it.cur.Start = it.cur.End
	it.cur.End += it.bandHeight
	if it.cur.End > it.height {
		it.cur.End = it.height
	}
	return true
}

func (it *BandIterator)Band() Band { return it.cur }

func (it *BandIterator)BandHeight() int { return it.bandHeight }

// Count is the total number of bands the iterator yields.
func (it *BandIterator)Count() int {
	return (it.height + it.bandHeight - 1) / it.bandHeight
}
