package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/imageio"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneName string
	sampling  core.SamplingConfig
	outPath   string
	format    string
	gamma     bool
	thumbnail int
	reference string
	export    string
	logLevel  string
	help      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.sceneName, "scene", "default", "Scene name ("+strings.Join(scene.Names(), ", ")+") or path to a .json scene file")
	fs.IntVar(&opts.sampling.Width, "width", 0, "Image width in pixels (0 = scene default, height follows the aspect ratio)")
	fs.IntVar(&opts.sampling.Height, "height", 0, "Image height in pixels (0 = derived from width)")
	fs.IntVar(&opts.sampling.SamplesPerPixel, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&opts.sampling.MaxDepth, "depth", 0, "Maximum bounces per camera ray (0 = scene default)")
	fs.Int64Var(&opts.sampling.Seed, "seed", 0, "Random seed (0 = scene default)")
	fs.IntVar(&opts.sampling.NumWorkers, "workers", 0, "Number of render goroutines (0 = CPU count)")
	fs.StringVar(&opts.outPath, "out", "", "Output file (default output/<scene>/render_<timestamp>.<format>)")
	fs.StringVar(&opts.format, "format", "", "Output format: png, bmp or tiff (default from -out extension, else png)")
	fs.BoolVar(&opts.gamma, "gamma", true, "Apply gamma-2 correction to the output")
	fs.IntVar(&opts.thumbnail, "thumbnail", 0, "Also save a preview scaled to fit this many pixels")
	fs.StringVar(&opts.reference, "reference", "", "Compare the render against this image and exit 1 on any difference")
	fs.StringVar(&opts.export, "export", "", "Write the selected scene as JSON to this file and exit")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return opts, fs, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Weekend Raytracer")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	fmt.Fprintln(w, "  default       - Diffuse, hollow glass and gold spheres")
	fmt.Fprintln(w, "  three-spheres - Glass and metal spheres on a diffuse plane")
	fmt.Fprintln(w, "  random        - Seeded field of small spheres around three large ones")
	fmt.Fprintln(w, "  <file>.json   - Scene file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output will be saved to output/<scene>/render_<timestamp>.png")
}

// parseLogLevel maps a -log-level value to a slog level
func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, core.ErrInvalidConfig)
	}
	return level, nil
}

// createScene builds the named scene, passing the seed to seeded layouts
func createScene(name string, seed int64) (*scene.Scene, error) {
	if seed == 0 {
		seed = core.DefaultSamplingConfig().Seed
	}
	return scene.New(name, seed)
}

// outputTarget resolves the output path and format from the flags
func outputTarget(opts *options, sceneName string, now time.Time, logger *slog.Logger) (string, imageio.Format, error) {
	format := imageio.PNG
	if opts.format != "" {
		f, err := imageio.ParseFormat(opts.format)
		if err != nil {
			return "", "", err
		}
		format = f
	} else if opts.outPath != "" {
		if f, ok := imageio.FormatFromPath(opts.outPath); ok {
			format = f
		} else {
			logger.Warn("unknown output extension, writing png", slog.String("path", opts.outPath))
		}
	}

	if opts.outPath != "" {
		return opts.outPath, format, nil
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", sceneName, "render_"+timestamp+format.Extension()), format, nil
}

// thumbnailPath places the preview next to the full image
func thumbnailPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_thumb" + ext
}

// progressLogger logs every 10% of completed rows
func progressLogger(logger *slog.Logger) renderer.ProgressFunc {
	lastDecile := 0
	return func(done, total int) {
		decile := done * 10 / total
		if decile > lastDecile {
			lastDecile = decile
			logger.Info("render progress", slog.Int("percent", decile*10), slog.Int("rows", done), slog.Int("total", total))
		}
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if opts.help {
		printUsage(stdout, fs)
		return 0
	}

	level, err := parseLogLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	core.SetLogger(logger)
	defer core.SetLogger(nil)

	selectedScene, err := createScene(opts.sceneName, opts.sampling.Seed)
	if err != nil {
		logger.Error("failed to create scene", slog.Any("error", err))
		return 1
	}
	if err := selectedScene.Configure(opts.sampling); err != nil {
		logger.Error("invalid render settings", slog.Any("error", err))
		return 1
	}

	if opts.export != "" {
		if err := scene.Save(opts.export, selectedScene); err != nil {
			logger.Error("failed to export scene", slog.Any("error", err))
			return 1
		}
		logger.Info("scene exported", slog.String("path", opts.export))
		return 0
	}

	outPath, format, err := outputTarget(opts, selectedScene.Name, time.Now(), logger)
	if err != nil {
		logger.Error("invalid output format", slog.Any("error", err))
		return 1
	}

	config := selectedScene.SamplingConfig
	raytracer, err := renderer.NewRaytracer(selectedScene, config)
	if err != nil {
		logger.Error("failed to create raytracer", slog.Any("error", err))
		return 1
	}
	raytracer.SetProgress(progressLogger(logger))

	logger.Info("rendering",
		slog.String("scene", selectedScene.Name),
		slog.Int("primitives", selectedScene.GetPrimitiveCount()),
		slog.Int("width", config.Width),
		slog.Int("height", config.Height),
		slog.Int("samples", config.SamplesPerPixel),
		slog.Int("depth", config.MaxDepth),
		slog.Int64("seed", config.Seed))

	frame, stats, err := raytracer.Render(ctx)
	if err != nil {
		logger.Error("render failed", slog.Any("error", err))
		return 1
	}
	img := frame.Image(opts.gamma)

	if err := imageio.Save(outPath, img, format); err != nil {
		logger.Error("failed to save image", slog.Any("error", err))
		return 1
	}
	logger.Info("render saved", slog.String("path", outPath), slog.String("stats", stats.Summary()))

	if opts.thumbnail > 0 {
		thumbPath := thumbnailPath(outPath)
		if err := imageio.Save(thumbPath, imageio.Thumbnail(img, opts.thumbnail), format); err != nil {
			logger.Error("failed to save thumbnail", slog.Any("error", err))
			return 1
		}
		logger.Info("thumbnail saved", slog.String("path", thumbPath))
	}

	if opts.reference != "" {
		reference, err := imageio.LoadImage(opts.reference)
		if err != nil {
			logger.Error("failed to load reference", slog.Any("error", err))
			return 1
		}
		diff, err := imageio.Compare(img, reference)
		if err != nil {
			logger.Error("failed to compare with reference", slog.Any("error", err))
			return 1
		}
		if !diff.Identical() {
			logger.Error("render differs from reference",
				slog.String("reference", opts.reference),
				slog.Int("pixels", diff.DifferentPixels),
				slog.Int("maxDelta", int(diff.MaxChannelDelta)))
			return 1
		}
		logger.Info("render matches reference", slog.String("reference", opts.reference))
	}

	return 0
}
