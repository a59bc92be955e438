package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// File is the JSON form of a scene. Materials are declared once by name and
// referenced from shapes, so several shapes can share one material.
type File struct {
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Group       string                 `json:"group,omitempty"`
	Camera      geometry.CameraConfig  `json:"camera"`
	Sampling    core.SamplingConfig    `json:"sampling"`
	Background  *integrator.Background `json:"background,omitempty"`
	Materials   map[string]MaterialCfg `json:"materials"`
	Spheres     []SphereCfg            `json:"spheres,omitempty"`
	Planes      []PlaneCfg             `json:"planes,omitempty"`
}

// MaterialCfg describes one named material
type MaterialCfg struct {
	Type            string    `json:"type"` // lambertian, metal or dielectric
	Albedo          core.Vec3 `json:"albedo"`
	Fuzz            float64   `json:"fuzz,omitempty"`
	RefractiveIndex float64   `json:"refractiveIndex,omitempty"`
}

// SphereCfg places a sphere; a negative radius makes a hollow shell's inner wall
type SphereCfg struct {
	Center   core.Vec3 `json:"center"`
	Radius   float64   `json:"radius"`
	Material string    `json:"material"`
}

// PlaneCfg places an infinite plane
type PlaneCfg struct {
	Point    core.Vec3 `json:"point"`
	Normal   core.Vec3 `json:"normal"`
	Material string    `json:"material"`
}

// Build validates and constructs the runtime material. Out of range values are
// rejected rather than clamped.
func (mc MaterialCfg) Build() (*material.Material, error) {
	kind, err := material.ParseKind(mc.Type)
	if err != nil {
		return nil, err
	}
	m := &material.Material{
		Kind:            kind,
		Albedo:          mc.Albedo,
		Fuzz:            mc.Fuzz,
		RefractiveIndex: mc.RefractiveIndex,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads a scene from a JSON file
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes and builds a scene from JSON. Unknown fields are rejected so
// typos in hand-written files surface as errors.
func Parse(r io.Reader) (*Scene, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	// Fields the file leaves out keep the defaults. A zero vector in the file
	// is a real position, so the camera is not merged after decoding.
	file := File{Camera: geometry.DefaultCameraConfig()}
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return file.Build()
}

// Build validates the file and constructs the scene. The camera is used as
// given; Parse fills in defaults for a camera the file only partly describes.
func (file *File) Build() (*Scene, error) {
	sampling := core.DefaultSamplingConfig().Merge(file.Sampling)

	s, err := newScene(file.Name, file.Camera, sampling, nil)
	if err != nil {
		return nil, err
	}
	if file.Background != nil {
		s.Background = *file.Background
	}

	materials := make(map[string]*material.Material, len(file.Materials))
	for name, mc := range file.Materials {
		m, err := mc.Build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
	}
	lookup := func(name string) (*material.Material, error) {
		m, ok := materials[name]
		if !ok {
			return nil, fmt.Errorf("unknown material %q: %w", name, ErrInvalidScene)
		}
		return m, nil
	}

	for i, sc := range file.Spheres {
		m, err := lookup(sc.Material)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		if err := s.AddSphere(sc.Center, sc.Radius, m); err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
	}
	for i, pc := range file.Planes {
		m, err := lookup(pc.Material)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		if err := s.AddPlane(pc.Point, pc.Normal, m); err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
	}

	return s, nil
}

// Export converts a scene to its JSON form. Shared materials stay shared.
func (s *Scene) Export() *File {
	background := s.Background
	file := &File{
		Name:       s.Name,
		Camera:     s.CameraConfig,
		Sampling:   s.SamplingConfig,
		Background: &background,
		Materials:  make(map[string]MaterialCfg),
	}

	names := make(map[*material.Material]string)
	nameOf := func(m *material.Material) string {
		if name, ok := names[m]; ok {
			return name
		}
		name := fmt.Sprintf("%s%d", m.Kind, len(names))
		names[m] = name
		file.Materials[name] = MaterialCfg{
			Type:            m.Kind.String(),
			Albedo:          m.Albedo,
			Fuzz:            m.Fuzz,
			RefractiveIndex: m.RefractiveIndex,
		}
		return name
	}

	for _, shape := range s.World.Shapes {
		switch obj := shape.(type) {
		case *geometry.Sphere:
			file.Spheres = append(file.Spheres, SphereCfg{Center: obj.Center, Radius: obj.Radius, Material: nameOf(obj.Material)})
		case *geometry.Plane:
			file.Planes = append(file.Planes, PlaneCfg{Point: obj.Point, Normal: obj.Normal, Material: nameOf(obj.Material)})
		}
	}
	return file
}

// Save writes a scene to a JSON file
func Save(path string, s *Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Export()); err != nil {
		f.Close()
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close scene: %w", err)
	}
	return nil
}
