package material

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Kind identifies one of the fixed material variants
type Kind uint8

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

// String returns the name used in scene files
func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return "unknown"
	}
}

// ParseKind maps a scene file material name to its Kind
func ParseKind(name string) (Kind, error) {
	for _, k := range []Kind{KindLambertian, KindMetal, KindDielectric} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("material type %q: %w", name, ErrInvalidMaterial)
}

// Material describes how a surface scatters light. The set of kinds is closed,
// so Scatter dispatches with a switch instead of an interface call.
// Materials are stateless and may be shared by any number of shapes.
type Material struct {
	Kind            Kind
	Albedo          core.Vec3 // Reflected color (lambertian, metal)
	Fuzz            float64   // Metal roughness in [0,1]
	RefractiveIndex float64   // Dielectric index of refraction
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// Scatter computes the outgoing ray for rayIn hitting the surface described by hit.
// It returns false when the surface absorbs the ray.
func (m *Material) Scatter(rayIn core.Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(hit, random)
	case KindMetal:
		return m.scatterMetal(rayIn, hit, random)
	case KindDielectric:
		return m.scatterDielectric(rayIn, hit, random)
	default:
		return ScatterResult{}, false
	}
}

// ErrInvalidMaterial is returned by Validate for parameters outside a material's domain
var ErrInvalidMaterial = errors.New("invalid material")

// Validate checks the parameters of a material built outside the constructors,
// such as one decoded from a scene file
func (m *Material) Validate() error {
	if m.Albedo.X < 0 || m.Albedo.Y < 0 || m.Albedo.Z < 0 {
		return fmt.Errorf("%s albedo %v: %w", m.Kind, m.Albedo, ErrInvalidMaterial)
	}
	switch m.Kind {
	case KindLambertian:
		return nil
	case KindMetal:
		if m.Fuzz < 0 || m.Fuzz > 1 || math.IsNaN(m.Fuzz) {
			return fmt.Errorf("metal fuzz %g not in [0,1]: %w", m.Fuzz, ErrInvalidMaterial)
		}
		return nil
	case KindDielectric:
		if !(m.RefractiveIndex > 0) {
			return fmt.Errorf("dielectric refractive index %g: %w", m.RefractiveIndex, ErrInvalidMaterial)
		}
		return nil
	default:
		return fmt.Errorf("kind %d: %w", m.Kind, ErrInvalidMaterial)
	}
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Unit surface normal, always facing against the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
	Material  *Material // Material of the hit object, owned by the scene
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
