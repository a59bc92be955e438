package core

import (
	"errors"
	"math"
	"testing"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	tests := []struct {
		name     string
		result   Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(5, -3, 9)},
		{"Subtract", a.Subtract(b), NewVec3(-3, 7, -3)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"Divide", b.Divide(2), NewVec3(2, -2.5, 3)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(4, -10, 18)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"Cross", NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)), NewVec3(0, 0, 1)},
		{"Clamp", NewVec3(-1, 0.5, 2).Clamp(0, 1), NewVec3(0, 0.5, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.result)
			}
		})
	}

	if dot := a.Dot(b); dot != 12 {
		t.Errorf("Expected dot product 12, got %f", dot)
	}
	if ls := a.LengthSquared(); ls != 14 {
		t.Errorf("Expected squared length 14, got %f", ls)
	}
	if l := NewVec3(3, 4, 0).Length(); l != 5 {
		t.Errorf("Expected length 5, got %f", l)
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(0, 3, 4).Normalize()
	if math.Abs(v.Length()-1) > 1e-12 {
		t.Errorf("Expected unit length, got %f", v.Length())
	}
	if math.Abs(v.Y-0.6) > 1e-12 || math.Abs(v.Z-0.8) > 1e-12 {
		t.Errorf("Expected (0, 0.6, 0.8), got %v", v)
	}

	if zero := (Vec3{}).Normalize(); zero != (Vec3{}) {
		t.Errorf("Expected zero vector to stay zero, got %v", zero)
	}
}

func TestVec3_UnitVector(t *testing.T) {
	u, err := NewVec3(2, 0, 0).UnitVector()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if u != NewVec3(1, 0, 0) {
		t.Errorf("Expected (1, 0, 0), got %v", u)
	}

	_, err = Vec3{}.UnitVector()
	if !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector, got %v", err)
	}
}

func TestVec3_NearZero(t *testing.T) {
	if !NewVec3(1e-9, -1e-9, 0).NearZero() {
		t.Error("Expected tiny vector to be near zero")
	}
	if NewVec3(1e-9, 1e-3, 0).NearZero() {
		t.Error("Expected vector with a 1e-3 component not to be near zero")
	}
}

func TestReflect(t *testing.T) {
	// 45 degree ray hitting a floor bounces back up
	v := NewVec3(1, -1, 0)
	n := NewVec3(0, 1, 0)
	r := Reflect(v, n)
	if r != NewVec3(1, 1, 0) {
		t.Errorf("Expected (1, 1, 0), got %v", r)
	}
}

func TestRefract(t *testing.T) {
	n := NewVec3(0, 1, 0)

	// Head-on rays pass straight through regardless of the index ratio
	straight := Refract(NewVec3(0, -1, 0), n, 1.0/1.5)
	if straight.Subtract(NewVec3(0, -1, 0)).Length() > 1e-12 {
		t.Errorf("Expected undeviated ray, got %v", straight)
	}

	// Snell's law: sin(theta') = ratio * sin(theta)
	uv := NewVec3(1, -1, 0).Normalize()
	ratio := 1.0 / 1.5
	refracted := Refract(uv, n, ratio)

	if math.Abs(refracted.Length()-1) > 1e-9 {
		t.Errorf("Expected refracted direction of unit length, got %f", refracted.Length())
	}
	sinIn := math.Sqrt(0.5)
	sinOut := refracted.X
	if math.Abs(sinOut-ratio*sinIn) > 1e-9 {
		t.Errorf("Expected sin(theta')=%f, got %f", ratio*sinIn, sinOut)
	}
	if refracted.Y >= 0 {
		t.Errorf("Refracted ray should continue below the surface, got %v", refracted)
	}
}

func TestRay_At(t *testing.T) {
	r := NewRay(NewVec3(1, 0, 0), NewVec3(0, 2, 0))
	if p := r.At(1.5); p != NewVec3(1, 3, 0) {
		t.Errorf("Expected (1, 3, 0), got %v", p)
	}
}
