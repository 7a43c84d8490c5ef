// Package colorspec reads and writes colors files, which pin the color
// of individual layers. Each line looks like
//
//   "/path/to/layer.png" (200, 87, 100)
//
// giving hue in degrees [0,360], and saturation and value in percent
// [0,100]. Any component can instead be an inclusive range like
// "180-220", in which case a value is picked at random when the file
// is loaded.
package colorspec

import(
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/abworrall/skycomposite/pkg/colorize"
)

var ErrParse = errors.New("colors file parse error")

type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError)Error() string {
	return fmt.Sprintf("colors line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *ParseError)Unwrap() error { return ErrParse }

// A Range is an inclusive range of integers; Lo==Hi is a fixed value.
type Range struct {
	Lo, Hi int
}

func (r Range)pick(rng *rand.Rand) int {
	if r.Hi <= r.Lo {
		return r.Lo
	}
	if rng == nil {
		return r.Lo + rand.Intn(r.Hi-r.Lo+1)
	}
	return r.Lo + rng.Intn(r.Hi-r.Lo+1)
}

func (r Range)String() string {
	if r.Lo == r.Hi {
		return strconv.Itoa(r.Lo)
	}
	return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
}

type Entry struct {
	Path       string
	Hue        Range  // degrees
	Saturation Range  // percent
	Value      Range  // percent
}

// Resolve picks concrete values. A nil rng uses the global source.
func (e Entry)Resolve(rng *rand.Rand) Resolved {
	return Resolved{
		Path:       e.Path,
		Hue:        e.Hue.pick(rng),
		Saturation: e.Saturation.pick(rng),
		Value:      e.Value.pick(rng),
	}
}

// Resolved is the color a layer actually got, in degrees and percent.
type Resolved struct {
	Path       string
	Hue        int
	Saturation int
	Value      int
}

func (r Resolved)HSV() colorize.HSV {
	return colorize.HSV{
		H: float64(r.Hue % 360) / 360.0,
		S: float64(r.Saturation) / 100.0,
		V: float64(r.Value) / 100.0,
	}
}

func (r Resolved)String() string {
	return fmt.Sprintf("\"%s\" (%d, %d, %d)", r.Path, r.Hue, r.Saturation, r.Value)
}

// FromHSV is the inverse of Resolved.HSV, up to rounding.
func FromHSV(path string, c colorize.HSV) Resolved {
	return Resolved{
		Path:       path,
		Hue:        int(math.Round(c.H * 360)),
		Saturation: int(math.Round(c.S * 100)),
		Value:      int(math.Round(c.V * 100)),
	}
}

var(
	lineRE      = regexp.MustCompile(`^"([^"]+)"\s*\((.*)\)$`)
	componentRE = regexp.MustCompile(`^(\d+)(?:\s*-\s*(\d+))?$`)
)

// Parse reads every entry. Blank lines, and lines starting with '#',
// are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	entries := []Entry{}
	scanner := bufio.NewScanner(r)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		e, reason := parseLine(text)
		if reason != "" {
			return nil, &ParseError{Line: lineNo, Text: text, Reason: reason}
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("colors read: %w", err)
	}
	return entries, nil
}

func parseLine(text string) (Entry, string) {
	m := lineRE.FindStringSubmatch(text)
	if m == nil {
		return Entry{}, `want "<path>" (<h>, <s>, <v>)`
	}

	parts := strings.Split(m[2], ",")
	if len(parts) != 3 {
		return Entry{}, fmt.Sprintf("want 3 components, have %d", len(parts))
	}

	e := Entry{Path: m[1]}
	fields := []*Range{&e.Hue, &e.Saturation, &e.Value}
	names := []string{"hue", "saturation", "value"}
	maxes := []int{360, 100, 100}

	for i, part := range parts {
		cm := componentRE.FindStringSubmatch(strings.TrimSpace(part))
		if cm == nil {
			return Entry{}, fmt.Sprintf("%s '%s' is not an integer or lo-hi range", names[i], strings.TrimSpace(part))
		}

		lo, _ := strconv.Atoi(cm[1])
		hi := lo
		if cm[2] != "" {
			hi, _ = strconv.Atoi(cm[2])
		}
		if lo > hi {
			return Entry{}, fmt.Sprintf("%s range %d-%d is backwards", names[i], lo, hi)
		}
		if hi > maxes[i] {
			return Entry{}, fmt.Sprintf("%s %d is over %d", names[i], hi, maxes[i])
		}
		*fields[i] = Range{lo, hi}
	}

	return e, ""
}

// Export writes the colors in the same format Parse reads.
func Export(w io.Writer, colors []Resolved) error {
	for _, c := range colors {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return fmt.Errorf("colors export: %w", err)
		}
	}
	return nil
}

func WriteFile(filename string, colors []Resolved) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return Export(writer, colors)
	}
}

// Overrides maps Key(path) to a resolved color.
type Overrides map[string]Resolved

// Key normalizes paths, so that the same file matches however it was named.
func Key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return strings.ToUpper(path)
}

func (o Overrides)Lookup(path string) (Resolved, bool) {
	r, ok := o[Key(path)]
	return r, ok
}

// Load parses a colors file, and resolves any ranges right away.
func Load(filename string, rng *rand.Rand) (Overrides, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r '%s': %w", filename, err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("colors file '%s': %w", filename, err)
	}

	o := Overrides{}
	for _, e := range entries {
		o[Key(e.Path)] = e.Resolve(rng)
	}
	return o, nil
}
