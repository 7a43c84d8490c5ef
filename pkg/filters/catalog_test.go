package filters

import(
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("case insensitive", func(t *testing.T) {
		f, err := JWST.Lookup("nircam", "f090w")
		require.NoError(t, err)
		assert.Equal(t, "F090W", f.Name)
		assert.Equal(t, NIRCAM, f.Instrument)
		assert.Equal(t, 0.901, f.WavelengthMicrons)
		assert.Equal(t, 0.194, f.BandwidthMicrons)
		assert.False(t, f.IsPupilWheel)
	})

	t.Run("pupil wheel flag", func(t *testing.T) {
		f, err := JWST.Lookup(NIRCAM, "F405N")
		require.NoError(t, err)
		assert.True(t, f.IsPupilWheel)
	})

	t.Run("unknown filter", func(t *testing.T) {
		_, err := JWST.Lookup(NIRCAM, "F999W")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("filter on the wrong instrument", func(t *testing.T) {
		_, err := JWST.Lookup(MIRI, "F090W")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestRangeOf(t *testing.T) {
	lo, hi, err := JWST.RangeOf(NIRCAM, Wavelength)
	require.NoError(t, err)
	assert.Equal(t, 0.704, lo)
	assert.Equal(t, 4.834, hi)

	lo, hi, err = JWST.RangeOf(NIRCAM, Bandwidth)
	require.NoError(t, err)
	assert.Equal(t, 0.020, lo)
	assert.Equal(t, 1.339, hi)

	lo, hi, err = JWST.RangeOf(MIRI, Wavelength)
	require.NoError(t, err)
	assert.Equal(t, 5.6, lo)
	assert.Equal(t, 25.5, hi)

	_, _, err = JWST.RangeOf("NIRSPEC", Wavelength)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFiltersIsACopy(t *testing.T) {
	fs := JWST.Filters(MIRI)
	require.Len(t, fs, 11)
	fs[0].Name = "mangled"

	f, err := JWST.Lookup(MIRI, "F560W")
	require.NoError(t, err)
	assert.Equal(t, "F560W", f.Name)
	assert.Equal(t, []string{NIRCAM, MIRI}, JWST.Instruments())
}

func TestMatchInFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		found    bool
	}{
		{"jw02731-o001_t017_nircam_clear-f090w_i2d.fits", "F090W", true},
		{"/some/dir/JW02731_F444W.FITS", "F444W", true},
		{"jw01234_nircam_f444w-f470n_i2d.fits", "F470N", true},
		{"jw01234_nircam_f405n-f444w_i2d.fits", "F405N", true},   // pupil wheel, even when further left
		{"jw01234_nircam_f115w-f200w_i2d.fits", "F200W", true},   // rightmost
		{"jw01234_nircam_f150w2-f140m_i2d.fits", "F140M", true},
		{"jw01234_nircam_clear-f150w2_i2d.fits", "F150W2", true}, // longer name at the same spot
		{"jw01234_miri_f2550wr_i2d.fits", "F2550WR", true},
		{"jw01234_miri_f770w_i2d.fits", "F770W", true},
		{"jw01234_nircam_clear_i2d.fits", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			f, ok := JWST.MatchInFilename(tt.filename)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, f.Name)
		})
	}
}

func TestInferFromFilename(t *testing.T) {
	f, ok := JWST.InferFromFilename("/tmp/layers/carina_NIRCAM-F187N.png")
	require.True(t, ok)
	assert.Equal(t, "F187N", f.Name)
	assert.Equal(t, NIRCAM, f.Instrument)

	f, ok = JWST.InferFromFilename("pillars_miri-f1130w.jpg")
	require.True(t, ok)
	assert.Equal(t, "F1130W", f.Name)

	_, ok = JWST.InferFromFilename("carina_NIRCAM-F999W.png")
	assert.False(t, ok)

	_, ok = JWST.InferFromFilename("carina.png")
	assert.False(t, ok)
}

func TestLayerFilenameRoundTrip(t *testing.T) {
	for _, inst := range JWST.Instruments() {
		for _, f := range JWST.Filters(inst) {
			name := LayerFilename("jw02731", f, ".png")
			got, ok := JWST.InferFromFilename(name)
			require.True(t, ok, name)
			assert.Equal(t, f, got)
		}
	}
}
