package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

func newTestPlane(t *testing.T) *Plane {
	t.Helper()
	plane, err := NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 2, 0), testMaterial)
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	return plane
}

func TestPlane_Hit_BasicIntersection(t *testing.T) {
	plane := newTestPlane(t)

	// Ray shooting down from above
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	hit, isHit := plane.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected t=1, got t=%f", hit.T)
	}
	if !vecNear(hit.Point, core.NewVec3(0, 0, 0), 1e-9) {
		t.Errorf("Expected hit point at origin, got %v", hit.Point)
	}
	if !hit.FrontFace || hit.Normal != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected front face with normal (0,1,0), got front=%t normal=%v", hit.FrontFace, hit.Normal)
	}
}

func TestPlane_Hit_FromBelow(t *testing.T) {
	plane := newTestPlane(t)
	ray := core.NewRay(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0))

	hit, isHit := plane.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if hit.FrontFace || hit.Normal != core.NewVec3(0, -1, 0) {
		t.Errorf("Expected back face with normal (0,-1,0), got front=%t normal=%v", hit.FrontFace, hit.Normal)
	}
}

func TestPlane_Hit_ParallelRay(t *testing.T) {
	plane := newTestPlane(t)
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0))

	hit, isHit := plane.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss for parallel ray, but got hit at t=%f", hit.T)
	}
}

func TestPlane_Hit_BehindRay(t *testing.T) {
	plane := newTestPlane(t)
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0))

	hit, isHit := plane.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss for intersection behind ray, but got hit at t=%f", hit.T)
	}
}

func TestNewPlane_DegenerateNormal(t *testing.T) {
	_, err := NewPlane(core.NewVec3(0, 0, 0), core.Vec3{}, testMaterial)
	if !errors.Is(err, core.ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector, got %v", err)
	}
}
