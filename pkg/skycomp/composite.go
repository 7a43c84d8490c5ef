// Package skycomp turns a set of telescope exposures, or of grayscale
// layer images, into a single false-color composite.
//
// Each exposure is contrast enhanced, reprojected onto the pixel grid
// of the highest resolution exposure, tinted according to its filter,
// and then everything is screen-blended together.
package skycomp

import(
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abworrall/skycomposite/pkg/colorize"
	"github.com/abworrall/skycomposite/pkg/colorspec"
	"github.com/abworrall/skycomposite/pkg/composite"
	"github.com/abworrall/skycomposite/pkg/contrast"
	"github.com/abworrall/skycomposite/pkg/filters"
	"github.com/abworrall/skycomposite/pkg/wcs"
)

var ErrMissingReference = errors.New("no exposures to pick a reference from")

// Composite holds the inputs, and blends them into a single image.
type Composite struct {
	Config
	Catalog   *filters.Catalog     // nil means filters.JWST

	Exposures []*Exposure          // In load order
	Layers    []*Layer             // In load order; after Run, layers from exposures come first
	Reference *Exposure            // Defines the output grid

	Overrides colorspec.Overrides  // Colors pinned to specific source files
	Image     *image.RGBA          // The final composite
}

func NewComposite() Composite {
	return Composite{
		Config:    NewConfig(),
		Exposures: []*Exposure{},
		Layers:    []*Layer{},
	}
}

func (c Composite)String() string {
	str := "Composite [\n"
	for _, e := range c.Exposures {
		ref := ""
		if e == c.Reference {
			ref = " (reference)"
		}
		str += fmt.Sprintf("  %s%s\n", e, ref)
	}
	for _, l := range c.Layers {
		str += fmt.Sprintf("  %s\n", l)
	}
	return str + "]\n"
}

func (c *Composite)catalog() *filters.Catalog {
	if c.Catalog == nil {
		return filters.JWST
	}
	return c.Catalog
}

// AddExposure appends the exposure, renaming it "<name>-2" etc. if the
// name is already taken.
func (c *Composite)AddExposure(e *Exposure) {
	e.Name = c.uniqueName(e.Name)
	c.Exposures = append(c.Exposures, e)
}

func (c *Composite)AddLayer(l *Layer) {
	l.Name = c.uniqueName(l.Name)
	c.Layers = append(c.Layers, l)
}

func (c *Composite)uniqueName(name string) string {
	taken := map[string]bool{}
	for _, e := range c.Exposures {
		taken[e.Name] = true
	}
	for _, l := range c.Layers {
		taken[l.Name] = true
	}

	if !taken[name] {
		return name
	}
	for i:=2; ; i++ {
		if candidate := fmt.Sprintf("%s-%d", name, i); !taken[candidate] {
			return candidate
		}
	}
}

// SelectReference picks the exposure with the most pixels; the first
// loaded wins a tie.
func (c *Composite)SelectReference() error {
	if len(c.Exposures) == 0 {
		return ErrMissingReference
	}

	c.Reference = c.Exposures[0]
	for _, e := range c.Exposures[1:] {
		if e.Resolution() > c.Reference.Resolution() {
			c.Reference = e
		}
	}

	log.Printf("Reference exposure is %s\n", c.Reference)
	return nil
}

// LoadColors reads Config.ColorsFile into Overrides.
func (c *Composite)LoadColors() error {
	if c.ColorsFile == "" {
		return nil
	}

	o, err := colorspec.Load(c.ColorsFile, c.GetRand())
	if err != nil {
		return err
	}
	c.Overrides = o
	log.Printf("Loaded %d colors from %s\n", len(o), c.ColorsFile)
	return nil
}

// Run processes everything that was loaded, and blends the layers into
// c.Image.
func (c *Composite)Run() error {
	if len(c.Exposures) == 0 && len(c.Layers) == 0 {
		return ErrMissingReference
	}

	if c.Overrides == nil {
		if err := c.LoadColors(); err != nil {
			return err
		}
	}

	if len(c.Exposures) > 0 {
		if err := c.SelectReference(); err != nil {
			return err
		}
		if err := c.ProcessExposures(); err != nil {
			return err
		}
	}

	if err := c.ColorizeLayers(); err != nil {
		return err
	}

	return c.Blend()
}

// ProcessExposures runs the per-exposure stages concurrently, and puts
// the resulting layers, in load order, at the front of c.Layers.
func (c *Composite)ProcessExposures() error {
	if c.Reference == nil {
		return ErrMissingReference
	}

	ref := referenceGrid{
		frame: c.Reference.Frame,
		w:     c.Reference.Width(),
		h:     c.Reference.Height(),
	}
	log.Printf("Processing %d exposures onto a %dx%d grid\n", len(c.Exposures), ref.w, ref.h)

	layers := make([]*Layer, len(c.Exposures))
	err := runConcurrently(c.GetWorkers(), len(c.Exposures), func(i int) error {
		l, err := c.processExposure(c.Exposures[i], ref)
		layers[i] = l
		return err
	})
	if err != nil {
		return err
	}

	c.Layers = append(layers, c.Layers...)
	return nil
}

// The reference's grid gets replaced while its own job runs, so other
// jobs work from this copy.
type referenceGrid struct {
	frame wcs.Frame
	w, h  int
}

func (c *Composite)processExposure(e *Exposure, ref referenceGrid) (*Layer, error) {
	start := time.Now()

	if c.Verbosity > 1 {
		log.Printf("Raw %s: %s\n", e.Name, e.Grid.Stats())
	}
	if c.DebugDir != "" {
		filename := filepath.Join(c.DebugDir, fmt.Sprintf("raw-%s.png", e.Name))
		if err := e.Grid.ToImg(e.Name, filename); err != nil {
			return nil, fmt.Errorf("exposure %s: debug dump: %w", e.Name, err)
		}
	}

	enhanced, err := contrast.Enhance(e.Grid, c.Contrast)
	if err != nil {
		return nil, fmt.Errorf("exposure %s: %w", e.Name, err)
	}
	e.Grid = enhanced

	var gray *image.Gray
	if e == c.Reference {
		gray = e.Grid.ToGray()
	} else {
		r, err := c.GetReprojector(e.Name)
		if err != nil {
			return nil, err
		}
		if gray, err = r.Reproject(e.Grid, e.Frame, ref.frame, ref.w, ref.h); err != nil {
			return nil, fmt.Errorf("exposure %s: %w", e.Name, err)
		}
	}
	e.Gray = FlipVertical(gray)

	l := &Layer{
		Name:       e.Name,
		SourcePath: e.LoadFilename,
		Prefix:     e.Prefix(),
		Filter:     e.Filter,
		Gray:       e.Gray,
	}
	if err := c.colorizeLayer(l); err != nil {
		return nil, err
	}

	if c.Verbosity > 0 {
		log.Printf("Processed %s in %s, enhanced: %s\n", e.Name, time.Since(start), e.Grid.Stats())
	}
	return l, nil
}

// ColorizeLayers tints every layer that isn't tinted yet.
func (c *Composite)ColorizeLayers() error {
	return runConcurrently(c.GetWorkers(), len(c.Layers), func(i int) error {
		if c.Layers[i].Colored != nil {
			return nil
		}
		return c.colorizeLayer(c.Layers[i])
	})
}

func (c *Composite)colorizeLayer(l *Layer) error {
	h, s, v := colorize.None, colorize.None, colorize.None
	if r, ok := c.Overrides.Lookup(l.SourcePath); ok {
		hsv := r.HSV()
		h, s, v = colorize.Some(hsv.H), colorize.Some(hsv.S), colorize.Some(hsv.V)
	}

	res, err := colorize.ResolveHSV(h, s, v, l.Filter, c.catalog(), c.Strict)
	if err != nil {
		return fmt.Errorf("layer %s: %w", l.Name, err)
	}
	l.HSV = res.HSV()

	log.Printf("Colorizing %s with HSV %s\n", l.Name, l.HSV)
	l.Colored = colorize.Tint(colorize.Smooth(l.Gray, c.SmoothRadius), l.HSV)
	return nil
}

// Blend screen-blends the colored layers, in order, into c.Image.
func (c *Composite)Blend() error {
	colored := make([]*image.RGBA, len(c.Layers))
	for i, l := range c.Layers {
		if l.Colored == nil {
			return fmt.Errorf("layer %s has not been colorized", l.Name)
		}
		colored[i] = l.Colored
	}

	log.Printf("Blending %d layers, brightness %s\n", len(colored), c.GetBrightness())
	img, err := composite.Composite(colored, c.GetBrightness())
	if err != nil {
		return err
	}

	if c.Legend {
		img = DrawLegend(img, c.Layers)
	}
	c.Image = img
	return nil
}

// Colors lists the color each layer ended up with, in layer order.
func (c *Composite)Colors() []colorspec.Resolved {
	colors := []colorspec.Resolved{}
	for _, l := range c.Layers {
		colors = append(colors, colorspec.FromHSV(l.SourcePath, l.HSV))
	}
	return colors
}

type job struct {
	Index int
	Err   error
}

// runConcurrently uses a pool of goroutines to call fn for every index
// in [0,nJobs). Once any call fails, jobs not yet started are skipped.
// The error returned is from the lowest failing index, so a run with
// several bad inputs always reports the same one.
func runConcurrently(nWorkers, nJobs int, fn func(i int) error) error {
	var wg sync.WaitGroup
	var failed atomic.Bool
	jobsChan    := make(chan job, nJobs)
	resultsChan := make(chan job, nJobs)

	// Kick off worker pool
	for i:=0; i<nWorkers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			for job := range jobsChan {
				if failed.Load() {
					continue
				}
				if job.Err = fn(job.Index); job.Err != nil {
					failed.Store(true)
				}
				resultsChan<- job
			}
		}()
	}

	// Feed in jobs
	for i:=0; i<nJobs; i++ {
		jobsChan<- job{Index: i}
	}

	close(jobsChan)
	wg.Wait()
	close(resultsChan)

	// results processor
	first := job{Index: nJobs}
	for result := range resultsChan {
		if result.Err != nil && result.Index < first.Index {
			first = result
		}
	}

	return first.Err
}
