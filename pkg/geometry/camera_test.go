package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

func TestCamera_PinholeRays(t *testing.T) {
	config := CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2.0,
	}
	camera, err := NewCamera(config)
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}

	// vfov 90 at focus distance 1: viewport is 2 high and 4 wide
	tests := []struct {
		name      string
		s, t      float64
		direction core.Vec3
	}{
		{"center", 0.5, 0.5, core.NewVec3(0, 0, -1)},
		{"lower left", 0, 0, core.NewVec3(-2, -1, -1)},
		{"upper right", 1, 1, core.NewVec3(2, 1, -1)},
		{"top middle", 0.5, 1, core.NewVec3(0, 1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.s, tt.t, nil)
			if ray.Origin != config.LookFrom {
				t.Errorf("Pinhole rays should start at the camera, got %v", ray.Origin)
			}
			if !vecNear(ray.Direction, tt.direction, 1e-9) {
				t.Errorf("Expected direction %v, got %v", tt.direction, ray.Direction)
			}
		})
	}
}

func TestCamera_GetCameraForward(t *testing.T) {
	camera, err := NewCamera(CameraConfig{
		LookFrom:    core.NewVec3(1, 1, 1),
		LookAt:      core.NewVec3(1, 1, -4),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        45,
		AspectRatio: 1,
	})
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}

	forward := camera.GetCameraForward()
	if !vecNear(forward, core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("Expected forward direction (0,0,-1), got %v", forward)
	}
}

func TestCamera_DefocusBlur(t *testing.T) {
	config := CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		AspectRatio:   1.5,
		Aperture:      0.5,
		FocusDistance: 3,
	}
	camera, err := NewCamera(config)
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}

	random := rand.New(rand.NewSource(42))
	focusPoint := core.NewVec3(0, 0, -3)
	moved := false

	for i := 0; i < 200; i++ {
		ray := camera.GetRay(0.5, 0.5, random)

		// Origins stay on the lens disk in the camera's z=0 plane
		if ray.Origin.Z != 0 || ray.Origin.Length() >= 0.25 {
			t.Fatalf("Ray origin %v outside lens of radius 0.25", ray.Origin)
		}
		if ray.Origin.Length() > 0 {
			moved = true
		}

		// Every ray through the image center converges on the focal plane
		if !vecNear(ray.At(1), focusPoint, 1e-9) {
			t.Fatalf("Ray should pass through focus point %v, reached %v", focusPoint, ray.At(1))
		}
	}

	if !moved {
		t.Error("Expected lens sampling to jitter ray origins")
	}
}

func TestCamera_GetCenterRay(t *testing.T) {
	camera, err := NewCamera(CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		AspectRatio:   1,
		Aperture:      2,
		FocusDistance: 4,
	})
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}

	ray := camera.GetCenterRay(0.5, 0.5)
	if ray.Origin != (core.Vec3{}) {
		t.Errorf("Center ray should start at the lens center, got %v", ray.Origin)
	}
	if !vecNear(ray.Direction, core.NewVec3(0, 0, -4), 1e-9) {
		t.Errorf("Expected direction to the focal plane center, got %v", ray.Direction)
	}
}

func TestCamera_AutoFocusDistance(t *testing.T) {
	camera, err := NewCamera(CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -10),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 1,
		Aperture:    1,
	})
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}

	random := rand.New(rand.NewSource(1))
	ray := camera.GetRay(0.5, 0.5, random)
	if !vecNear(ray.At(1), core.NewVec3(0, 0, -10), 1e-9) {
		t.Errorf("Zero focus distance should focus on LookAt, reached %v", ray.At(1))
	}
}

func TestNewCamera_InvalidConfig(t *testing.T) {
	valid := DefaultCameraConfig()

	tests := []struct {
		name    string
		modify  func(*CameraConfig)
		wantErr error
	}{
		{"look at self", func(c *CameraConfig) { c.LookAt = c.LookFrom }, core.ErrDegenerateVector},
		{"up parallel to view", func(c *CameraConfig) { c.Up = core.NewVec3(0, 0, 1) }, core.ErrDegenerateVector},
		{"zero fov", func(c *CameraConfig) { c.VFov = 0 }, core.ErrInvalidConfig},
		{"straight fov", func(c *CameraConfig) { c.VFov = 180 }, core.ErrInvalidConfig},
		{"zero aspect", func(c *CameraConfig) { c.AspectRatio = 0 }, core.ErrInvalidConfig},
		{"negative aperture", func(c *CameraConfig) { c.Aperture = -1 }, core.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.modify(&config)
			_, err := NewCamera(config)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMergeCameraConfig(t *testing.T) {
	base := DefaultCameraConfig()
	merged := MergeCameraConfig(base, CameraConfig{VFov: 20, Aperture: 0.1})

	if merged.VFov != 20 || merged.Aperture != 0.1 {
		t.Errorf("Overrides not applied: %+v", merged)
	}
	if merged.LookAt != base.LookAt || merged.AspectRatio != base.AspectRatio {
		t.Errorf("Zero overrides should keep base values: %+v", merged)
	}
	if math.IsNaN(merged.FocusDistance) {
		t.Error("Unexpected NaN focus distance")
	}
}
