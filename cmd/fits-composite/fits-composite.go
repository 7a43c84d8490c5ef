package main

import(
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/abworrall/skycomposite/pkg/emath"
	"github.com/abworrall/skycomposite/pkg/reproject"
	"github.com/abworrall/skycomposite/pkg/skycomp"
)

var(
	fVerbosity int
	fOutput string
	fLayersDir string
	fLayerFormat string
	fHDRLayers bool
	fMaxPixels int
	fWorkers int
	fBrightness float64
	fSmooth float64
	fStrict bool
	fColorsFile string
	fExportColorsFile string
	fSeed int64
	fPercentiler string
	fResampler string
	fLegend bool
	fPreviewWidth int
	fDebugDir string
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fOutput, "o", "composite.png", "output image (.png, .jpg)")
	flag.StringVar(&fLayersDir, "layers", "", "if set, write each colorless layer into this dir")
	flag.StringVar(&fLayerFormat, "layerformat", "png", "format for files in -layers (png, jpg)")
	flag.BoolVar(&fHDRLayers, "hdr", false, "also write the enhanced float data into -layers, as Radiance .hdr")

	flag.IntVar(&fMaxPixels, "maxpixels", reproject.DefaultMaxPixelsPerChunk, "max pixels to reproject at once (env "+skycomp.EnvMaxPixels+")")
	flag.IntVar(&fWorkers, "workers", 4, "how many exposures to process at once (env "+skycomp.EnvWorkers+")")
	flag.StringVar(&fPercentiler, "percentiler", "numpy", "how to compute the stretch percentiles: "+emath.ListPercentilers())
	flag.StringVar(&fResampler, "resampler", "bilinear", "how to resample onto the reference grid: "+reproject.ListResamplers())

	flag.Float64Var(&fBrightness, "brightness", 0, "dimming for all but the first layer (default 1 - 0.05*nlayers)")
	flag.Float64Var(&fSmooth, "smooth", 0, "gaussian blur radius applied to each layer before tinting")
	flag.BoolVar(&fStrict, "strict", false, "fail if a layer has no filter and no color in -colors")
	flag.StringVar(&fColorsFile, "colors", "", "file of per-layer colors")
	flag.StringVar(&fExportColorsFile, "exportcolors", "", "write the colors used to this file")
	flag.Int64Var(&fSeed, "seed", 0, "seed for picking colors from ranges in -colors (0 uses the clock)")
	flag.BoolVar(&fLegend, "legend", false, "label the layers on the composite")
	flag.IntVar(&fPreviewWidth, "preview", 0, "if >0, also write a preview this many pixels wide")
	flag.StringVar(&fDebugDir, "debugdir", "", "if set, write a quick look at each raw exposure here")
	flag.Parse()

	log.Printf("fits-composite starting\n")
}

// applyFlags copies only the flags given on the command line, so that
// they override any .yaml config or env var.
func applyFlags(cfg *skycomp.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":            cfg.Verbosity = fVerbosity
		case "layers":       cfg.LayersDir = fLayersDir
		case "layerformat":  cfg.LayerFormat = fLayerFormat
		case "hdr":          cfg.WriteHDRLayers = fHDRLayers
		case "maxpixels":    cfg.MaxPixelsPerChunk = fMaxPixels
		case "workers":      cfg.Workers = fWorkers
		case "percentiler":  cfg.Contrast.Percentiler = fPercentiler
		case "resampler":    cfg.Resampler = fResampler
		case "brightness":   cfg.Brightness = &fBrightness
		case "smooth":       cfg.SmoothRadius = fSmooth
		case "strict":       cfg.Strict = fStrict
		case "colors":       cfg.ColorsFile = fColorsFile
		case "exportcolors": cfg.ExportColorsFile = fExportColorsFile
		case "seed":         cfg.Seed = fSeed
		case "legend":       cfg.Legend = fLegend
		case "preview":      cfg.PreviewWidth = fPreviewWidth
		case "debugdir":     cfg.DebugDir = fDebugDir
		}
	})
}

func main() {
	start := time.Now()

	c := skycomp.NewComposite()
	if err := c.LoadFilesAndDirs(flag.Args()...); err != nil {
		log.Fatal(err)
	}
	if len(c.Exposures) == 0 {
		log.Fatal(skycomp.ErrMissingReference)
	}

	if err := c.Config.ApplyEnv(); err != nil {
		log.Fatal(err)
	}
	applyFlags(&c.Config)

	if c.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", c.Config.AsYaml())
	}

	if err := c.Run(); err != nil {
		log.Fatal(err)
	}
	if err := c.WriteLayers(); err != nil {
		log.Fatal(err)
	}
	if err := c.Write(fOutput); err != nil {
		log.Fatal(err)
	}
	if err := c.ExportColors(); err != nil {
		log.Fatal(err)
	}

	log.Printf("fits-composite: %d exposures composited into %s in %s\n", len(c.Exposures), fOutput, time.Since(start))
}
