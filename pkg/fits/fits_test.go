package fits

import(
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/skycomposite/pkg/emath"
)

func TestRoundTrip(t *testing.T) {
	grid, err := emath.NewFloatGridFrom(3, 2, []float64{1, 2, 3, 4.5, -1, math.NaN()})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = Encode(&buf,
		HDU{Header: Header{"FILENAME": "jw02731_nircam_f090w_i2d.fits", "INSTRUME": "NIRCAM", "FILTER": "F090W"}},
		HDU{Header: Header{"EXTNAME": "SCI", "CRPIX1": "1.5", "CD1_1": "-1.2E-05"}, Width: 3, Height: 2, Data: grid},
	)
	require.NoError(t, err)
	assert.Equal(t, 0, buf.Len() % blockSize)

	f, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, f.HDUs, 2)

	assert.Equal(t, "jw02731_nircam_f090w_i2d.fits", f.Primary().GetString("filename"))
	assert.False(t, f.HDUs[0].HasImage())

	img, err := f.Image()
	require.NoError(t, err)
	assert.Equal(t, "SCI", img.GetString("EXTNAME"))
	v, ok := img.GetFloat("CD1_1")
	assert.True(t, ok)
	assert.Equal(t, -1.2e-5, v)

	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 2, img.Height)
	got := img.Data.Values()
	assert.True(t, math.IsNaN(got[5]))
	if diff := cmp.Diff([]float64{1, 2, 3, 4.5, -1}, got[:5]); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
}

// int16Fits builds a single-HDU file by hand, with scaled integers.
func int16Fits(w, h int, vals []int16, bzero, bscale float64) []byte {
	var buf bytes.Buffer
	cards := []string{
		"SIMPLE  =                    T",
		"BITPIX  =                   16",
		"NAXIS   =                    2",
		fmt.Sprintf("NAXIS1  = %20d", w),
		fmt.Sprintf("NAXIS2  = %20d", h),
		fmt.Sprintf("BZERO   = %20g / offset", bzero),
		fmt.Sprintf("BSCALE  = %20g", bscale),
		"OBJECT  = 'it''s M16'          / quoted",
		"END",
	}
	for _, c := range cards {
		buf.WriteString(fmt.Sprintf("%-80s", c))
	}
	for buf.Len() % blockSize != 0 {
		buf.WriteByte(' ')
	}
	for _, v := range vals {
		binary.Write(&buf, binary.BigEndian, v)
	}
	for buf.Len() % blockSize != 0 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func TestDecodeScaledIntegers(t *testing.T) {
	data := int16Fits(2, 2, []int16{-32768, 0, 1, 32767}, 32768, 2)

	f, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	img, err := f.Image()
	require.NoError(t, err)
	assert.Equal(t, []float64{-32768, 32768, 32770, 98302}, img.Data.Values())
	assert.Equal(t, "it's M16", img.GetString("OBJECT"))
	bz, _ := img.GetFloat("BZERO")
	assert.Equal(t, 32768.0, bz)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil))
	assert.Error(t, err)

	data := int16Fits(2, 2, []int16{1, 2, 3, 4}, 0, 1)
	_, err = Decode(bytes.NewReader(data[:blockSize+10]))
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, HDU{Header: Header{"OBJECT": "nothing"}}))
	f, err := Decode(&buf)
	require.NoError(t, err)
	_, err = f.Image()
	assert.True(t, errors.Is(err, ErrNoImage))
}

func TestOpen(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "m16.fits")
	require.NoError(t, os.WriteFile(filename, int16Fits(1, 1, []int16{7}, 0, 1), 0644))

	f, err := Open(filename)
	require.NoError(t, err)
	assert.Equal(t, filename, f.Filename)

	_, err = Open(filepath.Join(t.TempDir(), "missing.fits"))
	assert.Error(t, err)
}
