package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestRandomInUnitSphere(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	var sum Vec3
	const n = 10000
	for i := 0; i < n; i++ {
		p := RandomInUnitSphere(random)
		if p.LengthSquared() >= 1.0 {
			t.Fatalf("Sample %v lies outside the unit sphere", p)
		}
		sum = sum.Add(p)
	}

	// Uniform samples should be centered on the origin
	mean := sum.Multiply(1.0 / n)
	if mean.Length() > 0.05 {
		t.Errorf("Expected mean near origin, got %v", mean)
	}
}

func TestRandomUnitVector(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		v := RandomUnitVector(random)
		if math.Abs(v.Length()-1.0) > 1e-9 {
			t.Fatalf("Expected unit length, got %f for %v", v.Length(), v)
		}
	}
}

func TestRandomInUnitDisk(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		p := RandomInUnitDisk(random)
		if p.Z != 0 {
			t.Fatalf("Disk sample should lie in the z=0 plane, got %v", p)
		}
		if p.LengthSquared() >= 1.0 {
			t.Fatalf("Sample %v lies outside the unit disk", p)
		}
	}
}

func TestRandomVec3_Range(t *testing.T) {
	random := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		v := RandomVec3(random, 0.5, 1.0)
		for _, c := range []float64{v.X, v.Y, v.Z} {
			if c < 0.5 || c >= 1.0 {
				t.Fatalf("Component %f outside [0.5, 1)", c)
			}
		}
	}
}

func TestSampling_Deterministic(t *testing.T) {
	a := rand.New(rand.NewSource(99))
	b := rand.New(rand.NewSource(99))
	for i := 0; i < 100; i++ {
		if RandomUnitVector(a) != RandomUnitVector(b) {
			t.Fatal("Equal seeds should produce equal sample streams")
		}
	}
}
