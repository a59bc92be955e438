package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// NewDefaultScene creates a default scene with spheres, ground, and camera
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:      core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   16.0 / 9.0,
		VFov:          30.0,
		Aperture:      0.1, // Slight depth of field
		FocusDistance: 0.0, // Auto-calculate focus distance
	}

	s, err := newScene("default", defaultCameraConfig, core.DefaultSamplingConfig(), cameraOverrides)
	if err != nil {
		return nil, err
	}

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.5)
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	b := builder{scene: s}
	b.sphere(core.NewVec3(0, -100.5, -1), 100, ground)
	b.sphere(core.NewVec3(0, 0, -1), 0.5, center)

	// Hollow glass: the inner sphere's negative radius flips its normals
	b.sphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	b.sphere(core.NewVec3(-1, 0, -1), -0.45, glass)

	b.sphere(core.NewVec3(1, 0, -1), 0.5, gold)
	return b.done()
}

// NewThreeSphereScene creates the small regression scene: a diffuse ground
// plane with a glass sphere and a brushed metal sphere, seen by a pinhole camera
func NewThreeSphereScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	cameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: 4.0 / 3.0,
		VFov:        90.0,
	}

	sampling := core.DefaultSamplingConfig()
	sampling.Width = 320
	sampling.Height = 240

	s, err := newScene("three-spheres", cameraConfig, sampling, cameraOverrides)
	if err != nil {
		return nil, err
	}

	b := builder{scene: s}
	b.plane(core.NewVec3(0, -0.5, 0), core.NewVec3(0, 1, 0), material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	b.sphere(core.NewVec3(-0.6, 0, -1.2), 0.5, material.NewDielectric(1.5))
	b.sphere(core.NewVec3(0.6, 0, -1.2), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3))
	return b.done()
}
