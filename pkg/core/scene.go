package core

import (
	"fmt"
	"runtime"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int   `json:"width"`           // Image width in pixels
	Height          int   `json:"height"`          // Image height in pixels
	SamplesPerPixel int   `json:"samplesPerPixel"` // Number of rays per pixel
	MaxDepth        int   `json:"maxDepth"`        // Maximum ray bounce depth
	Seed            int64 `json:"seed"`            // Base seed for the per-row random streams
	NumWorkers      int   `json:"numWorkers"`      // Parallel workers (0 = use CPU count)
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            42,
	}
}

// Validate rejects settings that cannot produce an image. It runs once before a
// render so the recursion never sees a non-positive depth budget.
func (c SamplingConfig) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("image size %dx%d: %w", c.Width, c.Height, ErrInvalidConfig)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel %d: %w", c.SamplesPerPixel, ErrInvalidConfig)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth %d: %w", c.MaxDepth, ErrInvalidConfig)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("workers %d: %w", c.NumWorkers, ErrInvalidConfig)
	}
	return nil
}

// Workers resolves the worker count, substituting the CPU count for zero
func (c SamplingConfig) Workers() int {
	if c.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return c.NumWorkers
}

// Merge returns c with every non-zero field of overrides applied
func (c SamplingConfig) Merge(overrides SamplingConfig) SamplingConfig {
	if overrides.Width != 0 {
		c.Width = overrides.Width
	}
	if overrides.Height != 0 {
		c.Height = overrides.Height
	}
	if overrides.SamplesPerPixel != 0 {
		c.SamplesPerPixel = overrides.SamplesPerPixel
	}
	if overrides.MaxDepth != 0 {
		c.MaxDepth = overrides.MaxDepth
	}
	if overrides.Seed != 0 {
		c.Seed = overrides.Seed
	}
	if overrides.NumWorkers != 0 {
		c.NumWorkers = overrides.NumWorkers
	}
	return c
}
