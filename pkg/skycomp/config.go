package skycomp

import(
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/skycomposite/pkg/colorize"
	"github.com/abworrall/skycomposite/pkg/contrast"
	"github.com/abworrall/skycomposite/pkg/reproject"
)

const(
	EnvMaxPixels = "SKYCOMP_MAX_PIXELS"
	EnvWorkers   = "SKYCOMP_WORKERS"
)

type Config struct {
	Verbosity         int

	Contrast          contrast.Options
	Resampler         string     // see reproject.GetResampler
	MaxPixelsPerChunk int        // Upper bound on floats held per reprojection band
	Workers           int        // How many exposures to process at once

	Brightness        *float64   // Dimming for all layers but the first; nil means composite.DefaultBrightness
	SmoothRadius      float64    // Gaussian blur on each layer before tinting; 0 is off
	Strict            bool       // Every layer must have a filter, or a color from the colors file

	ColorsFile        string     // Pins colors for specific layers, see pkg/colorspec
	ExportColorsFile  string     // Where to write the colors actually used
	Seed              int64      // For picking colors from ranges in ColorsFile; 0 means use the clock

	LayersDir         string     // If set, every 8-bit layer is written here
	LayerFormat       string     // "png" or "jpg"
	WriteHDRLayers    bool       // Also write the enhanced float grids into LayersDir, as Radiance .hdr

	Legend            bool       // Draw layer names onto the composite, in their colors
	PreviewWidth      int        // If >0, also write a scaled-down copy of the composite

	DebugDir          string     // If set, a quick look at each raw exposure is written here
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

func NewConfig() Config {
	return Config{
		Contrast:          contrast.DefaultOptions(),
		Resampler:         "bilinear",
		MaxPixelsPerChunk: reproject.DefaultMaxPixelsPerChunk,
		Workers:           4,
		LayerFormat:       "png",
	}
}

func (c Config)GetBrightness() colorize.Maybe {
	return colorize.FromPtr(c.Brightness)
}

func (c Config)GetReprojector(name string) (reproject.Reprojector, error) {
	resampler, err := reproject.GetResampler(c.Resampler)
	if err != nil {
		return reproject.Reprojector{}, err
	}

	r := reproject.New(c.MaxPixelsPerChunk)
	r.Resampler = resampler
	r.Verbosity = c.Verbosity
	r.Name = name
	return r, nil
}

func (c Config)GetRand() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (c Config)GetWorkers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}

// ApplyEnv overrides config values from SKYCOMP_* environment variables.
func (c *Config)ApplyEnv() error {
	for _, env := range []struct{
		name  string
		field *int
	}{
		{EnvMaxPixels, &c.MaxPixelsPerChunk},
		{EnvWorkers, &c.Workers},
	} {
		v, ok := os.LookupEnv(env.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s='%s': want a positive integer", env.name, v)
		}
		*env.field = n
	}
	return nil
}
