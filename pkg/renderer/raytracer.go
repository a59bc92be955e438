package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
)

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *geometry.Camera
	GetWorld() geometry.Shape
	GetBackground() integrator.Background
}

// ProgressFunc is called after each completed row with the number of rows done
type ProgressFunc func(rowsDone, totalRows int)

// Raytracer renders a scene into a Frame
type Raytracer struct {
	scene      Scene
	config     core.SamplingConfig
	integrator integrator.Integrator
	progress   ProgressFunc
}

// NewRaytracer creates a raytracer for scene, rejecting an invalid sampling config
func NewRaytracer(scene Scene, config core.SamplingConfig) (*Raytracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if scene.GetCamera() == nil {
		return nil, fmt.Errorf("scene has no camera: %w", core.ErrInvalidConfig)
	}
	return &Raytracer{
		scene:      scene,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(scene.GetBackground()),
	}, nil
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(i integrator.Integrator) {
	rt.integrator = i
}

// SetProgress installs a callback invoked as rows complete. It is never called concurrently.
func (rt *Raytracer) SetProgress(fn ProgressFunc) {
	rt.progress = fn
}

// Config returns the sampling configuration
func (rt *Raytracer) Config() core.SamplingConfig {
	return rt.config
}

// rowSeed derives an independent seed for one image row so the result does
// not depend on which worker renders it
func rowSeed(seed int64, row int) int64 {
	return int64(uint64(seed) ^ (uint64(row)+1)*0x9E3779B97F4A7C15)
}

// RenderRow samples every pixel of image row y into dst
func (rt *Raytracer) RenderRow(y int, dst []PixelStats) {
	random := rand.New(rand.NewSource(rowSeed(rt.config.Seed, y)))
	camera := rt.scene.GetCamera()
	world := rt.scene.GetWorld()

	width, height := rt.config.Width, rt.config.Height
	sDenom := float64(max(width-1, 1))
	tDenom := float64(max(height-1, 1))

	// Image row 0 is the top; the viewport is scanned from the bottom
	j := height - 1 - y

	for i := 0; i < width; i++ {
		ps := &dst[i]
		for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
			s := (float64(i) + random.Float64()) / sDenom
			t := (float64(j) + random.Float64()) / tDenom

			ray := camera.GetRay(s, t, random)
			ps.AddSample(rt.integrator.RayColor(ray, world, random, rt.config.MaxDepth))
		}
	}
}

// Render samples the whole image in parallel. Cancelling ctx stops the render
// between rows and returns the context error.
func (rt *Raytracer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	start := time.Now()
	width, height := rt.config.Width, rt.config.Height
	frame := NewFrame(width, height)

	pool := NewWorkerPool(rt, frame, rt.config.Workers())
	logger := core.Logger()
	logger.Debug("render starting",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Int("samples", rt.config.SamplesPerPixel),
		slog.Int("depth", rt.config.MaxDepth),
		slog.Int("workers", pool.GetNumWorkers()))

	pool.Start()
	for y := 0; y < height; y++ {
		pool.SubmitTask(RowTask{Ctx: ctx, Row: y})
	}

	var firstErr error
	done := 0
	for n := 0; n < height; n++ {
		result, _ := pool.GetResult()
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		done++
		if rt.progress != nil {
			rt.progress(done, height)
		}
	}
	pool.Stop()

	if firstErr != nil {
		logger.Warn("render aborted", slog.Int("rowsDone", done), slog.Any("error", firstErr))
		return nil, RenderStats{}, fmt.Errorf("render aborted after %d of %d rows: %w", done, height, firstErr)
	}

	stats := RenderStats{
		Width:           width,
		Height:          height,
		TotalPixels:     width * height,
		TotalSamples:    width * height * rt.config.SamplesPerPixel,
		SamplesPerPixel: rt.config.SamplesPerPixel,
		MaxDepth:        rt.config.MaxDepth,
		Workers:         pool.GetNumWorkers(),
		Duration:        time.Since(start),
	}
	stats.AverageLuminance = CalculateAverageLuminance(frame.Image(false))

	logger.Info("render complete", slog.String("stats", stats.Summary()))
	return frame, stats, nil
}
