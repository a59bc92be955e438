package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

func TestMetalPerfectReflection(t *testing.T) {
	albedo := core.NewVec3(0.8, 0.6, 0.2)
	metal := NewMetal(albedo, 0.0)

	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		FrontFace: true,
		Material:  metal,
	}

	tests := []struct {
		name     string
		incoming core.Vec3
		expected core.Vec3
	}{
		{"head on", core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0)},
		{"45 degrees", core.NewVec3(1, -1, 0), core.NewVec3(1, 1, 0).Normalize()},
		{"unnormalized input", core.NewVec3(0, -5, 5), core.NewVec3(0, 1, 1).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 1, 0), tt.incoming)
			result, scattered := metal.Scatter(ray, hit, nil)
			if !scattered {
				t.Fatal("Expected mirror reflection to scatter")
			}
			if result.Scattered.Direction.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected direction %v, got %v", tt.expected, result.Scattered.Direction)
			}
			if result.Attenuation != albedo {
				t.Errorf("Expected attenuation %v, got %v", albedo, result.Attenuation)
			}
		})
	}
}

func TestMetalFuzzClamping(t *testing.T) {
	if m := NewMetal(core.NewVec3(1, 1, 1), 2.5); m.Fuzz != 1.0 {
		t.Errorf("Expected fuzz clamped to 1.0, got %f", m.Fuzz)
	}
	if m := NewMetal(core.NewVec3(1, 1, 1), -0.5); m.Fuzz != 0.0 {
		t.Errorf("Expected fuzz clamped to 0.0, got %f", m.Fuzz)
	}
}

func TestMetalFuzzyAbsorption(t *testing.T) {
	// A grazing ray on a very rough metal is often pushed into the surface
	metal := NewMetal(core.NewVec3(0.9, 0.9, 0.9), 1.0)
	hit := HitRecord{Normal: core.NewVec3(0, 1, 0), FrontFace: true, Material: metal}
	ray := core.NewRay(core.NewVec3(-1, 0.01, 0), core.NewVec3(1, -0.01, 0))
	random := rand.New(rand.NewSource(42))

	absorbed, reflected := 0, 0
	for i := 0; i < 1000; i++ {
		result, scattered := metal.Scatter(ray, hit, random)
		if scattered {
			reflected++
			if result.Scattered.Direction.Dot(hit.Normal) <= 0 {
				t.Fatalf("Scattered ray %v points into the surface", result.Scattered.Direction)
			}
		} else {
			absorbed++
		}
	}

	if absorbed == 0 || reflected == 0 {
		t.Errorf("Expected a mix of absorption and reflection, got %d absorbed, %d reflected", absorbed, reflected)
	}
}

func TestMetalEnergyConservation(t *testing.T) {
	albedo := core.NewVec3(0.7, 0.2, 0.95)
	metal := NewMetal(albedo, 0.4)
	hit := HitRecord{Normal: core.NewVec3(0, 0, 1), FrontFace: true, Material: metal}
	random := rand.New(rand.NewSource(5))

	for i := 0; i < 500; i++ {
		dir := core.RandomUnitVector(random)
		if dir.Z > 0 {
			dir.Z = -dir.Z
		}
		result, scattered := metal.Scatter(core.NewRay(core.NewVec3(0, 0, 1), dir), hit, random)
		if !scattered {
			continue
		}
		a := result.Attenuation
		if a.X > albedo.X || a.Y > albedo.Y || a.Z > albedo.Z {
			t.Fatalf("Attenuation %v exceeds albedo %v", a, albedo)
		}
		if math.IsNaN(result.Scattered.Direction.Length()) {
			t.Fatal("Scattered direction is NaN")
		}
	}
}
