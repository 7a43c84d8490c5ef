package filters

import(
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var ErrNotFound = errors.New("filter not found")

// A Filter describes one optical filter on an instrument.
type Filter struct {
	Name              string
	Instrument        string
	WavelengthMicrons float64   // pivot wavelength
	BandwidthMicrons  float64
	IsPupilWheel      bool
}

func (f Filter)String() string {
	return fmt.Sprintf("%s-%s[%.3fum, bw %.3fum]", f.Instrument, f.Name, f.WavelengthMicrons, f.BandwidthMicrons)
}

// FullName is the "<INSTRUMENT>-<FILTER>" form used in layer filenames.
func (f Filter)FullName() string {
	return f.Instrument + "-" + f.Name
}

type Attribute int

const(
	Wavelength Attribute = iota
	Bandwidth
)

func (a Attribute)of(f Filter) float64 {
	if a == Bandwidth {
		return f.BandwidthMicrons
	}
	return f.WavelengthMicrons
}

// InstrumentTable is the raw input to NewCatalog.
type InstrumentTable struct {
	Instrument string
	Filters    []Filter
}

// A Catalog is an immutable registry of filters, grouped by
// instrument. Nothing mutates it once NewCatalog returns, so it is
// safe to share between goroutines.
type Catalog struct {
	instruments []string
	byInst      map[string][]Filter
}

func NewCatalog(tables ...InstrumentTable) *Catalog {
	c := &Catalog{byInst: map[string][]Filter{}}
	for _, t := range tables {
		inst := strings.ToUpper(t.Instrument)
		fs := make([]Filter, len(t.Filters))
		for i, f := range t.Filters {
			f.Instrument = inst
			fs[i] = f
		}
		c.instruments = append(c.instruments, inst)
		c.byInst[inst] = fs
	}
	return c
}

func (c *Catalog)Instruments() []string {
	return append([]string{}, c.instruments...)
}

// Filters returns a copy of the instrument's table, in table order.
func (c *Catalog)Filters(instrument string) []Filter {
	return append([]Filter{}, c.byInst[strings.ToUpper(instrument)]...)
}

func (c *Catalog)Lookup(instrument, name string) (Filter, error) {
	for _, f := range c.byInst[strings.ToUpper(instrument)] {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return Filter{}, fmt.Errorf("lookup %s-%s: %w", instrument, name, ErrNotFound)
}

// RangeOf returns the min and max of an attribute across all the
// filters of one instrument.
func (c *Catalog)RangeOf(instrument string, attr Attribute) (float64, float64, error) {
	fs := c.byInst[strings.ToUpper(instrument)]
	if len(fs) == 0 {
		return 0, 0, fmt.Errorf("range of instrument '%s': %w", instrument, ErrNotFound)
	}

	lo, hi := attr.of(fs[0]), attr.of(fs[0])
	for _, f := range fs[1:] {
		if v := attr.of(f); v < lo {
			lo = v
		} else if v > hi {
			hi = v
		}
	}
	return lo, hi, nil
}

// MatchInFilename looks for filter names inside a filename, ignoring
// case. If several match, pupil-wheel filters win; otherwise the
// match furthest to the right wins. Two names matching at the same
// spot (F150W inside F150W2) resolve to the longer one.
func (c *Catalog)MatchInFilename(filename string) (Filter, bool) {
	upper := strings.ToUpper(filepath.Base(filename))

	best, bestIdx := Filter{}, -1
	better := func(f Filter, idx int) bool {
		switch {
		case bestIdx == -1:                       return true
		case f.IsPupilWheel != best.IsPupilWheel: return f.IsPupilWheel
		case idx != bestIdx:                      return idx > bestIdx
		default:                                  return len(f.Name) > len(best.Name)
		}
	}

	for _, inst := range c.instruments {
		for _, f := range c.byInst[inst] {
			if idx := strings.LastIndex(upper, f.Name); idx != -1 && better(f, idx) {
				best, bestIdx = f, idx
			}
		}
	}

	return best, bestIdx != -1
}

var layerFilenameRE = regexp.MustCompile(`^(.*)_([A-Za-z0-9]+)-([A-Za-z0-9]+)\.[^.]+$`)

// InferFromFilename parses names of the form "<prefix>_<INSTRUMENT>-<FILTER>.<ext>".
func (c *Catalog)InferFromFilename(path string) (Filter, bool) {
	m := layerFilenameRE.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return Filter{}, false
	}
	f, err := c.Lookup(m[2], m[3])
	return f, err == nil
}

// LayerFilename is the inverse of InferFromFilename.
func LayerFilename(prefix string, f Filter, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, f.FullName(), strings.TrimPrefix(ext, "."))
}
