package colorize

import(
	"errors"
	"image"
	"image/color"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/skycomposite/pkg/filters"
)

func lookup(t *testing.T, inst, name string) *filters.Filter {
	f, err := filters.JWST.Lookup(inst, name)
	require.NoError(t, err)
	return &f
}

func TestHueSaturationOfNone(t *testing.T) {
	h, s, err := HueSaturationOf(nil, filters.JWST)
	require.NoError(t, err)
	assert.Equal(t, 0.0, h)
	assert.Equal(t, 0.0, s)
}

func TestHueSaturationOfEndpoints(t *testing.T) {
	h, s, err := HueSaturationOf(lookup(t, "NIRCAM", "F070W"), filters.JWST)
	require.NoError(t, err)
	assert.InDelta(t, 240.0/360.0, h, 1e-12)   // shortest wavelength is blue
	assert.InDelta(t, 1-(0.128-0.020)/(1.339-0.020), s, 1e-12)

	h, _, err = HueSaturationOf(lookup(t, "NIRCAM", "F480M"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, h)                       // longest is red

	_, s, err = HueSaturationOf(lookup(t, "NIRCAM", "F164N"), filters.JWST)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s)                       // narrowest is fully saturated

	_, s, err = HueSaturationOf(lookup(t, "MIRI", "FND"), filters.JWST)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)
}

func TestHueSaturationOfMidpoint(t *testing.T) {
	cat := filters.NewCatalog(filters.InstrumentTable{Instrument: "TEST", Filters: []filters.Filter{
		{Name: "A", WavelengthMicrons: 1, BandwidthMicrons: 1},
		{Name: "B", WavelengthMicrons: 2, BandwidthMicrons: 2},
		{Name: "C", WavelengthMicrons: 3, BandwidthMicrons: 3},
	}})
	f, err := cat.Lookup("TEST", "B")
	require.NoError(t, err)

	h, s, err := HueSaturationOf(&f, cat)
	require.NoError(t, err)
	assert.InDelta(t, 120.0/360.0, h, 1e-12)  // the S-curve leaves the middle alone
	assert.InDelta(t, 0.5, s, 1e-12)

	assert.InDelta(t, 0.1, sCurve(0.25), 1e-12) // 1/(1+9)
	assert.InDelta(t, 0.9, sCurve(0.75), 1e-12)
}

func TestHueSaturationOfIsMonotonic(t *testing.T) {
	for _, inst := range filters.JWST.Instruments() {
		t.Run(inst, func(t *testing.T) {
			fs := filters.JWST.Filters(inst)

			sort.Slice(fs, func(i, j int) bool { return fs[i].WavelengthMicrons < fs[j].WavelengthMicrons })
			prevH := 2.0
			for i := range fs {
				h, _, err := HueSaturationOf(&fs[i], filters.JWST)
				require.NoError(t, err)
				assert.LessOrEqual(t, h, prevH, fs[i].Name)
				if i > 0 && fs[i].WavelengthMicrons > fs[i-1].WavelengthMicrons {
					assert.Less(t, h, prevH, fs[i].Name)
				}
				prevH = h
			}

			sort.Slice(fs, func(i, j int) bool { return fs[i].BandwidthMicrons < fs[j].BandwidthMicrons })
			prevS := 2.0
			for i := range fs {
				_, s, err := HueSaturationOf(&fs[i], filters.JWST)
				require.NoError(t, err)
				assert.LessOrEqual(t, s, prevS, fs[i].Name)
				prevS = s
			}
		})
	}
}

func TestHueSaturationOfUnknownInstrument(t *testing.T) {
	f := filters.Filter{Name: "F200LP", Instrument: "NIRISS"}
	_, _, err := HueSaturationOf(&f, filters.JWST)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestResolveHSV(t *testing.T) {
	f090w := lookup(t, "NIRCAM", "F090W")
	fh, fs, err := HueSaturationOf(f090w, filters.JWST)
	require.NoError(t, err)

	t.Run("strict with nothing to go on", func(t *testing.T) {
		_, err := ResolveHSV(None, None, None, nil, filters.JWST, true)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})

	t.Run("lenient with nothing to go on", func(t *testing.T) {
		r, err := ResolveHSV(None, None, None, nil, filters.JWST, false)
		require.NoError(t, err)
		assert.False(t, r.H.IsSet())
		assert.False(t, r.S.IsSet())
		assert.Equal(t, 1.0, r.V)
		assert.Equal(t, HSV{0, 0, 1}, r.HSV())
	})

	t.Run("from the filter", func(t *testing.T) {
		r, err := ResolveHSV(None, None, None, f090w, filters.JWST, true)
		require.NoError(t, err)
		assert.Equal(t, HSV{fh, fs, 1}, r.HSV())
	})

	t.Run("explicit beats filter", func(t *testing.T) {
		r, err := ResolveHSV(Some(0.1), None, Some(0.5), f090w, filters.JWST, true)
		require.NoError(t, err)
		assert.Equal(t, HSV{0.1, fs, 0.5}, r.HSV())
	})

	t.Run("explicit only", func(t *testing.T) {
		r, err := ResolveHSV(Some(200.0/360.0), Some(0.87), None, nil, filters.JWST, true)
		require.NoError(t, err)
		assert.Equal(t, HSV{200.0/360.0, 0.87, 1}, r.HSV())
	})

	t.Run("half explicit is still not enough when strict", func(t *testing.T) {
		_, err := ResolveHSV(Some(0.3), None, None, nil, filters.JWST, true)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := ResolveHSV(Some(1.0), Some(0.5), None, nil, filters.JWST, true)
		assert.True(t, errors.Is(err, ErrConfiguration))
		_, err = ResolveHSV(Some(0.5), Some(0.5), Some(1.5), nil, filters.JWST, false)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})
}

func TestTint(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.Pix[0], gray.Pix[1] = 200, 201

	tests := []struct {
		name string
		hsv  HSV
		want []uint8
	}{
		{"red",  HSV{0, 1, 1},     []uint8{200, 0, 0, 255,     201, 0, 0, 255}},
		{"gray", HSV{0, 0, 1},     []uint8{200, 200, 200, 255, 201, 201, 201, 255}},
		{"dim cyan, truncated", HSV{0.5, 1, 0.5}, []uint8{0, 100, 100, 255, 0, 100, 100, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Tint(gray, tt.hsv)
			assert.Equal(t, gray.Bounds(), out.Bounds())
			assert.Equal(t, tt.want, out.Pix)
		})
	}
}

func TestSmooth(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 9, 9))
	gray.SetGray(4, 4, color.Gray{Y: 255})

	assert.Same(t, gray, Smooth(gray, 0))

	out := Smooth(gray, 2)
	assert.Equal(t, gray.Bounds(), out.Bounds())
	assert.Less(t, out.GrayAt(4, 4).Y, uint8(255))
	assert.Greater(t, out.GrayAt(3, 4).Y, uint8(0))
}

func TestMaybe(t *testing.T) {
	v := 0.25
	assert.Equal(t, Some(0.25), FromPtr(&v))
	assert.Equal(t, None, FromPtr(nil))
	assert.Equal(t, 3.0, None.Or(3))
	assert.Equal(t, Some(2), First(None, Some(2), Some(3)))
	assert.Equal(t, "none", None.String())
}
