// Package fits reads (and, for fixtures and exports, writes) the
// subset of FITS that telescope image products use: a primary header,
// followed by image extensions. Only the first two axes of any image
// are kept.
package fits

import(
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/abworrall/skycomposite/pkg/emath"
)

const(
	blockSize  = 2880
	cardSize   = 80
)

var ErrNoImage = errors.New("no image HDU")

// Header holds the header cards of one HDU, with string values unquoted.
type Header map[string]string

func (h Header)GetString(key string) string {
	return h[strings.ToUpper(key)]
}

func (h Header)GetFloat(key string) (float64, bool) {
	v, ok := h[strings.ToUpper(key)]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(v, "D", "E", 1), 64)
	return f, err == nil
}

func (h Header)GetInt(key string) (int, bool) {
	v, ok := h[strings.ToUpper(key)]
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	return i, err == nil
}

// An HDU is one header+data unit. Data is nil-sized when the HDU carries no image.
type HDU struct {
	Header
	Width  int
	Height int
	Data   emath.FloatGrid
}

func (hdu HDU)HasImage() bool { return hdu.Width > 0 && hdu.Height > 0 }

type File struct {
	Filename string
	HDUs     []HDU
}

func Open(filename string) (*File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r '%s': %w", filename, err)
	}
	defer f.Close()

	ff, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("fits '%s': %w", filename, err)
	}
	ff.Filename = filename
	return ff, nil
}

// Primary is the first HDU's header.
func (f *File)Primary() Header {
	if len(f.HDUs) == 0 {
		return Header{}
	}
	return f.HDUs[0].Header
}

// Image returns the first HDU holding a 2D image. For JWST products
// that is the SCI extension, since the primary HDU has no data.
func (f *File)Image() (HDU, error) {
	for _, hdu := range f.HDUs {
		if hdu.HasImage() {
			return hdu, nil
		}
	}
	return HDU{}, ErrNoImage
}

// Decode reads HDUs until the input runs out.
func Decode(r io.Reader) (*File, error) {
	f := &File{}
	for {
		hdr, err := readHeader(r)
		if err == io.EOF && len(f.HDUs) > 0 {
			return f, nil
		} else if err != nil {
			return nil, fmt.Errorf("HDU %d header: %w", len(f.HDUs), err)
		}

		hdu, err := readData(r, hdr)
		if err != nil {
			return nil, fmt.Errorf("HDU %d data: %w", len(f.HDUs), err)
		}
		f.HDUs = append(f.HDUs, hdu)
	}
}

func readHeader(r io.Reader) (Header, error) {
	hdr := Header{}
	block := make([]byte, blockSize)

	for nBlocks := 0; ; nBlocks++ {
		if _, err := io.ReadFull(r, block); err != nil {
			if err == io.EOF && nBlocks == 0 {
				return nil, io.EOF
			}
			return nil, err
		}

		for i:=0; i<blockSize; i+=cardSize {
			card := string(block[i:i+cardSize])
			keyword := strings.TrimSpace(card[:8])

			if keyword == "END" {
				return hdr, nil
			}
			if len(card) > 10 && card[8] == '=' && card[9] == ' ' {
				hdr[strings.ToUpper(keyword)] = parseValue(card[10:])
			}
		}
	}
}

// parseValue strips comments and quotes from the value part of a card.
func parseValue(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "'") {
		// Quoted string; '' is an escaped quote
		var b strings.Builder
		for i:=1; i<len(s); i++ {
			if s[i] == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					b.WriteByte('\'')
					i++
					continue
				}
				break
			}
			b.WriteByte(s[i])
		}
		return strings.TrimRight(b.String(), " ")
	}

	if idx := strings.Index(s, "/"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func readData(r io.Reader, hdr Header) (HDU, error) {
	hdu := HDU{Header: hdr}

	bitpix, _ := hdr.GetInt("BITPIX")
	naxis, _ := hdr.GetInt("NAXIS")
	if naxis == 0 {
		return hdu, nil
	}

	nElems := 1
	dims := make([]int, naxis)
	for i := range dims {
		dims[i], _ = hdr.GetInt(fmt.Sprintf("NAXIS%d", i+1))
		nElems *= dims[i]
	}
	gcount, ok := hdr.GetInt("GCOUNT")
	if !ok {
		gcount = 1
	}
	pcount, _ := hdr.GetInt("PCOUNT")

	bytesPerElem := bitpix / 8
	if bytesPerElem < 0 {
		bytesPerElem = -bytesPerElem
	}
	if bytesPerElem == 0 {
		return hdu, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}

	nBytes := bytesPerElem * gcount * (pcount + nElems)
	padded := (nBytes + blockSize - 1) / blockSize * blockSize
	raw := make([]byte, padded)
	if _, err := io.ReadFull(r, raw); err != nil {
		return hdu, err
	}

	if naxis < 2 || dims[0] == 0 || dims[1] == 0 {
		return hdu, nil
	}

	w, h := dims[0], dims[1]
	bzero, ok := hdr.GetFloat("BZERO")
	if !ok {
		bzero = 0
	}
	bscale, ok := hdr.GetFloat("BSCALE")
	if !ok {
		bscale = 1
	}

	vals := make([]float64, w*h)
	for i := range vals {
		b := raw[i*bytesPerElem:]
		var v float64
		switch bitpix {
		case   8: v = float64(b[0])
		case  16: v = float64(int16(binary.BigEndian.Uint16(b)))
		case  32: v = float64(int32(binary.BigEndian.Uint32(b)))
		case  64: v = float64(int64(binary.BigEndian.Uint64(b)))
		case -32: v = float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
		case -64: v = math.Float64frombits(binary.BigEndian.Uint64(b))
		default:
			return hdu, fmt.Errorf("unsupported BITPIX %d", bitpix)
		}
		vals[i] = bzero + bscale*v
	}

	grid, err := emath.NewFloatGridFrom(w, h, vals)
	if err != nil {
		return hdu, err
	}
	hdu.Width, hdu.Height, hdu.Data = w, h, grid
	return hdu, nil
}

// Encode writes the HDUs; images are stored as BITPIX -32. Header
// keys other than the structural ones are written in sorted order.
func Encode(w io.Writer, hdus ...HDU) error {
	for i, hdu := range hdus {
		var buf bytes.Buffer
		if i == 0 {
			writeCard(&buf, "SIMPLE", "T")
		} else {
			writeCard(&buf, "XTENSION", "'IMAGE   '")
		}
		writeCard(&buf, "BITPIX", "-32")
		if hdu.HasImage() {
			writeCard(&buf, "NAXIS", "2")
			writeCard(&buf, "NAXIS1", strconv.Itoa(hdu.Width))
			writeCard(&buf, "NAXIS2", strconv.Itoa(hdu.Height))
		} else {
			writeCard(&buf, "NAXIS", "0")
		}
		if i > 0 {
			writeCard(&buf, "PCOUNT", "0")
			writeCard(&buf, "GCOUNT", "1")
		}

		keys := []string{}
		for k := range hdu.Header {
			switch {
			case k == "SIMPLE", k == "XTENSION", k == "BITPIX", k == "PCOUNT", k == "GCOUNT":
			case strings.HasPrefix(k, "NAXIS"), k == "BZERO", k == "BSCALE":
			default:
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			writeCard(&buf, k, formatValue(hdu.Header[k]))
		}
		buf.WriteString(fmt.Sprintf("%-80s", "END"))
		pad(&buf, ' ')

		if hdu.HasImage() {
			b := make([]byte, 4)
			for _, v := range hdu.Data.Values() {
				binary.BigEndian.PutUint32(b, math.Float32bits(float32(v)))
				buf.Write(b)
			}
			pad(&buf, 0)
		}

		if _, err := w.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("fits encode HDU %d: %w", i, err)
		}
	}
	return nil
}

func writeCard(buf *bytes.Buffer, key, val string) {
	buf.WriteString(fmt.Sprintf("%-8s= %-70s", key, val)[:cardSize])
}

func formatValue(v string) string {
	if v == "T" || v == "F" {
		return v
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func pad(buf *bytes.Buffer, b byte) {
	for buf.Len() % blockSize != 0 {
		buf.WriteByte(b)
	}
}
