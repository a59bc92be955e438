package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// ErrInvalidScene is returned for scene contents that cannot be rendered
var ErrInvalidScene = errors.New("invalid scene")

// Scene contains all the elements needed for rendering. It is read-only while a
// render is running.
type Scene struct {
	Name           string
	Camera         *geometry.Camera
	World          *geometry.List // Objects in the scene
	SamplingConfig core.SamplingConfig
	CameraConfig   geometry.CameraConfig
	Background     integrator.Background
}

// GetCamera returns the camera built from CameraConfig
func (s *Scene) GetCamera() *geometry.Camera {
	return s.Camera
}

// GetWorld returns every object in the scene as one shape
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetBackground returns the sky gradient
func (s *Scene) GetBackground() integrator.Background {
	return s.Background
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// newScene assembles a scene and builds its camera for the sampling config's aspect ratio
func newScene(name string, cameraConfig geometry.CameraConfig, sampling core.SamplingConfig, cameraOverrides []geometry.CameraConfig) (*Scene, error) {
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}
	s := &Scene{
		Name:           name,
		World:          geometry.NewList(),
		SamplingConfig: sampling,
		CameraConfig:   cameraConfig,
		Background:     integrator.DefaultBackground(),
	}
	if err := s.Configure(core.SamplingConfig{}); err != nil {
		return nil, err
	}
	return s, nil
}

// Configure applies sampling overrides and rebuilds the camera to match the
// image size. Overriding only the width keeps the camera's aspect ratio.
func (s *Scene) Configure(overrides core.SamplingConfig) error {
	config := s.SamplingConfig.Merge(overrides)
	if overrides.Width != 0 && overrides.Height == 0 && s.CameraConfig.AspectRatio > 0 {
		config.Height = max(1, int(float64(config.Width)/s.CameraConfig.AspectRatio))
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}

	cameraConfig := s.CameraConfig
	cameraConfig.AspectRatio = float64(config.Width) / float64(config.Height)
	camera, err := geometry.NewCamera(cameraConfig)
	if err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}

	s.SamplingConfig = config
	s.CameraConfig = cameraConfig
	s.Camera = camera
	return nil
}

// AddSphere validates and adds a sphere. A negative radius is allowed and
// flips the normals inward, which makes the inner wall of hollow glass.
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat *material.Material) error {
	if radius == 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("sphere at %v with radius %g: %w", center, radius, ErrInvalidScene)
	}
	if mat == nil {
		return fmt.Errorf("sphere at %v has no material: %w", center, ErrInvalidScene)
	}
	if err := mat.Validate(); err != nil {
		return fmt.Errorf("sphere at %v: %w", center, err)
	}
	s.World.Add(geometry.NewSphere(center, radius, mat))
	return nil
}

// AddPlane validates and adds an infinite plane
func (s *Scene) AddPlane(point, normal core.Vec3, mat *material.Material) error {
	if mat == nil {
		return fmt.Errorf("plane through %v has no material: %w", point, ErrInvalidScene)
	}
	if err := mat.Validate(); err != nil {
		return fmt.Errorf("plane through %v: %w", point, err)
	}
	plane, err := geometry.NewPlane(point, normal, mat)
	if err != nil {
		return fmt.Errorf("plane through %v: %w", point, err)
	}
	s.World.Add(plane)
	return nil
}

// builder keeps the first error from a sequence of Add calls
type builder struct {
	scene *Scene
	err   error
}

func (b *builder) sphere(center core.Vec3, radius float64, mat *material.Material) {
	if b.err == nil {
		b.err = b.scene.AddSphere(center, radius, mat)
	}
}

func (b *builder) plane(point, normal core.Vec3, mat *material.Material) {
	if b.err == nil {
		b.err = b.scene.AddPlane(point, normal, mat)
	}
}

func (b *builder) done() (*Scene, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.scene, nil
}
