package material

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

func TestLambertianScatter(t *testing.T) {
	albedo := core.NewVec3(0.8, 0.3, 0.1)
	lambertian := NewLambertian(albedo)

	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		T:         1.0,
		FrontFace: true,
		Material:  lambertian,
	}
	ray := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1))
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		result, scattered := lambertian.Scatter(ray, hit, random)
		if !scattered {
			t.Fatal("Lambertian material should always scatter")
		}

		// Diffuse bounces leave from the hit point into the normal's hemisphere
		if result.Scattered.Origin != hit.Point {
			t.Errorf("Scattered ray should start at hit point, got %v", result.Scattered.Origin)
		}
		if result.Scattered.Direction.Dot(hit.Normal) < 0 {
			t.Errorf("Scattered direction %v points below the surface", result.Scattered.Direction)
		}
		if result.Attenuation != albedo {
			t.Errorf("Expected attenuation %v, got %v", albedo, result.Attenuation)
		}
	}
}

func TestLambertianEnergyConservation(t *testing.T) {
	albedos := []core.Vec3{
		core.NewVec3(0.5, 0.5, 0.5),
		core.NewVec3(1.0, 0.0, 0.2),
		core.NewVec3(0.0, 0.0, 0.0),
	}
	hit := HitRecord{Normal: core.NewVec3(0, 0, 1), FrontFace: true}
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	random := rand.New(rand.NewSource(1))

	for _, albedo := range albedos {
		m := NewLambertian(albedo)
		for i := 0; i < 100; i++ {
			result, _ := m.Scatter(ray, hit, random)
			a := result.Attenuation
			if a.X > albedo.X || a.Y > albedo.Y || a.Z > albedo.Z {
				t.Fatalf("Attenuation %v exceeds albedo %v", a, albedo)
			}
		}
	}
}

func TestMaterialValidate(t *testing.T) {
	tests := []struct {
		name     string
		material *Material
		wantErr  bool
	}{
		{"lambertian", NewLambertian(core.NewVec3(0.5, 0.5, 0.5)), false},
		{"negative albedo", NewLambertian(core.NewVec3(-0.1, 0.5, 0.5)), true},
		{"metal", NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.3), false},
		{"metal fuzz above one", &Material{Kind: KindMetal, Fuzz: 1.5}, true},
		{"glass", NewDielectric(1.5), false},
		{"zero index", NewDielectric(0), true},
		{"unknown kind", &Material{Kind: Kind(42)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.material.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if KindDielectric.String() != "dielectric" || KindMetal.String() != "metal" || KindLambertian.String() != "lambertian" {
		t.Error("Unexpected kind names")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindLambertian, KindMetal, KindDielectric} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}

	if _, err := ParseKind("plastic"); !errors.Is(err, ErrInvalidMaterial) {
		t.Errorf("Expected ErrInvalidMaterial for unknown type, got %v", err)
	}
}
