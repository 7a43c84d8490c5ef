package reproject

import(
	"errors"
	"image"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/skycomposite/pkg/emath"
	"github.com/abworrall/skycomposite/pkg/wcs"
)

func ramp(w, h int) emath.FloatGrid {
	g := emath.NewFloatGrid(w, h)
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			g.Set(x, y, 0.5 + 0.5*math.Sin(float64(x)/7.0)*math.Cos(float64(y)/5.0))
		}
	}
	return g
}

func affine(t *testing.T, m emath.Aff3) wcs.Frame {
	f, err := wcs.NewAffine(m)
	require.NoError(t, err)
	return f
}

func TestBands(t *testing.T) {
	collect := func(it *BandIterator) []Band {
		bands := []Band{}
		for it.Next() {
			bands = append(bands, it.Band())
		}
		return bands
	}

	t.Run("last band shorter", func(t *testing.T) {
		it := Bands(100, 25, 1000)
		assert.Equal(t, 10, it.BandHeight())
		assert.Equal(t, 3, it.Count())
		assert.Equal(t, []Band{{0, 10}, {10, 20}, {20, 25}}, collect(it))
	})

	t.Run("one band", func(t *testing.T) {
		assert.Equal(t, []Band{{0, 25}}, collect(Bands(100, 25, DefaultMaxPixelsPerChunk)))
	})

	t.Run("chunk smaller than a row", func(t *testing.T) {
		it := Bands(100, 3, 10)
		assert.Equal(t, 1, it.BandHeight())
		assert.Equal(t, []Band{{0, 1}, {1, 2}, {2, 3}}, collect(it))
	})
}

func TestReprojectChunkSizeDoesNotMatter(t *testing.T) {
	src := ramp(90, 70)
	srcFrame := affine(t, emath.Identity())
	ref := affine(t, emath.Identity().Translate(3.25, -2.5).Rotate(10).Scale(0.8, 0.8))

	small, err := New(1000).Reproject(src, srcFrame, ref, 120, 101)
	require.NoError(t, err)
	big, err := New(10000000).Reproject(src, srcFrame, ref, 120, 101)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 120, 101), small.Bounds())
	if diff := cmp.Diff(big.Pix, small.Pix); diff != "" {
		t.Errorf("banded output differs (-big +small):\n%s", diff)
	}

	// some of the reference grid falls outside the source, and is black
	assert.Equal(t, uint8(0), small.GrayAt(119, 100).Y)
}

func TestReprojectIdentity(t *testing.T) {
	src := ramp(40, 30)
	frame := affine(t, emath.Identity())

	got, err := New(100).Reproject(src, frame, frame, 40, 30)
	require.NoError(t, err)
	assert.Equal(t, src.ToGray().Pix, got.Pix)
}

func TestReprojectDownsample(t *testing.T) {
	// The source has twice the resolution of the reference
	src := ramp(64, 48)
	srcFrame := affine(t, emath.Identity())
	ref := affine(t, emath.Identity().Scale(2, 2))

	got, err := New(0).Reproject(src, srcFrame, ref, 32, 24)
	require.NoError(t, err)
	assert.Equal(t, 32, got.Bounds().Dx())
	assert.Equal(t, 24, got.Bounds().Dy())
	assert.Equal(t, emath.ToUint8(src.Get(10, 20)), got.GrayAt(5, 10).Y)
}

func TestStream(t *testing.T) {
	src := ramp(20, 20)
	frame := affine(t, emath.Identity())

	seen := []Band{}
	err := New(20*6).Stream(src, frame, frame, 20, 20, func(b Band, img *image.Gray) error {
		seen = append(seen, b)
		assert.Equal(t, image.Rect(0, b.Start, 20, b.End), img.Bounds())
		assert.Equal(t, emath.ToUint8(src.Get(4, b.Start)), img.GrayAt(4, b.Start).Y)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []Band{{0, 6}, {6, 12}, {12, 18}, {18, 20}}, seen)

	stop := errors.New("stop")
	err = New(20*6).Stream(src, frame, frame, 20, 20, func(b Band, img *image.Gray) error { return stop })
	assert.True(t, errors.Is(err, stop))
}

func TestReprojectErrors(t *testing.T) {
	frame := affine(t, emath.Identity())
	_, err := New(0).Reproject(ramp(4, 4), frame, frame, 0, 4)
	assert.Error(t, err)
	_, err = New(0).Reproject(emath.FloatGrid{}, frame, frame, 4, 4)
	assert.Error(t, err)
}

func TestSampleBilinear(t *testing.T) {
	g, _ := emath.NewFloatGridFrom(2, 2, []float64{0, 1, 2, 3})

	assert.Equal(t, 1.5, SampleBilinear(g, 0.5, 0.5))
	assert.Equal(t, 0.0, SampleBilinear(g, -0.4, 0))   // extended edge
	assert.Equal(t, 3.0, SampleBilinear(g, 1.4, 1.4))
	assert.True(t, math.IsNaN(SampleBilinear(g, -0.6, 0)))
	assert.True(t, math.IsNaN(SampleBilinear(g, 0, 1.6)))
}

func TestNearest(t *testing.T) {
	src := ramp(64, 48)
	srcFrame := affine(t, emath.Identity())
	ref := affine(t, emath.Identity().Translate(0.2, -0.3).Scale(2, 2))

	r := New(0)
	r.Resampler = Nearest{}
	got, err := r.Reproject(src, srcFrame, ref, 32, 24)
	require.NoError(t, err)
	assert.Equal(t, emath.ToUint8(src.Get(10, 20)), got.GrayAt(5, 10).Y)

	// Off the top-left edge of the source
	off := affine(t, emath.Identity().Translate(-3, -3))
	got, err = r.Reproject(src, srcFrame, off, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), got.GrayAt(0, 0).Y)
}

func TestGetResampler(t *testing.T) {
	for name, want := range map[string]Resampler{"": Bilinear{}, "bilinear": Bilinear{}, "nearest": Nearest{}} {
		r, err := GetResampler(name)
		require.NoError(t, err)
		assert.Equal(t, want, r)
	}

	_, err := GetResampler("lanczos")
	assert.Error(t, err)
}
