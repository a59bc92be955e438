package scene

import (
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// NewRandomScene creates the cover scene: a field of small random spheres around
// three large ones. The layout is fixed by seed, and every glass sphere shares
// one material.
func NewRandomScene(seed int64, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	cameraConfig := geometry.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   3.0 / 2.0,
		VFov:          20.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}

	sampling := core.DefaultSamplingConfig()
	sampling.Width = 600
	sampling.Height = 400
	sampling.SamplesPerPixel = 50

	s, err := newScene("random", cameraConfig, sampling, cameraOverrides)
	if err != nil {
		return nil, err
	}

	random := rand.New(rand.NewSource(seed))
	glass := material.NewDielectric(1.5)

	b := builder{scene: s}
	b.sphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	clearing := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for c := -11; c < 11; c++ {
			chooseMat := random.Float64()
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(c)+0.9*random.Float64())
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(random, 0, 1).MultiplyVec(core.RandomVec3(random, 0, 1))
				b.sphere(center, 0.2, material.NewLambertian(albedo))
			case chooseMat < 0.95:
				albedo := core.RandomVec3(random, 0.5, 1)
				fuzz := 0.5 * random.Float64()
				b.sphere(center, 0.2, material.NewMetal(albedo, fuzz))
			default:
				b.sphere(center, 0.2, glass)
			}
		}
	}

	b.sphere(core.NewVec3(0, 1, 0), 1.0, glass)
	b.sphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	b.sphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))
	return b.done()
}
