package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNew(t *testing.T) {
	target := r3.Vec{X: 2, Y: 2, Z: 2}
	cam := New(target, 6)

	if cam.Target != target {
		t.Errorf("expected target %v, got %v", target, cam.Target)
	}
	if cam.Distance != 6 {
		t.Errorf("expected distance 6, got %f", cam.Distance)
	}
	if cam.Pitch <= 0 {
		t.Errorf("expected a downward-looking default pitch, got %f", cam.Pitch)
	}
	pos := cam.Position()
	if pos.Y <= target.Y {
		t.Errorf("expected the camera above the target, got y=%f", pos.Y)
	}
}

func TestPositionKeepsDistance(t *testing.T) {
	cam := New(r3.Vec{X: 2, Y: 0, Z: 2}, 6)

	angles := []struct{ yaw, pitch float64 }{
		{0, 0},
		{math.Pi / 3, math.Pi / 4},
		{-math.Pi / 2, -math.Pi / 8},
		{math.Pi, math.Pi / 2.2},
	}
	for _, a := range angles {
		cam.Yaw = a.yaw
		cam.Pitch = a.pitch
		d := r3.Norm(r3.Sub(cam.Position(), cam.Target))
		if math.Abs(d-cam.Distance) > 1e-9 {
			t.Errorf("yaw=%f pitch=%f: expected distance %f, got %f", a.yaw, a.pitch, cam.Distance, d)
		}
	}
}

func TestOrbitWrapsYaw(t *testing.T) {
	cam := New(r3.Vec{}, 5)

	start := cam.Yaw
	cam.Orbit(2*math.Pi, 0)
	if math.Abs(cam.Yaw-start) > 1e-12 {
		t.Errorf("expected a full turn to wrap back to %f, got %f", start, cam.Yaw)
	}

	cam.Orbit(math.Pi, 0)
	if cam.Yaw < -math.Pi || cam.Yaw > math.Pi {
		t.Errorf("expected yaw in [-pi, pi], got %f", cam.Yaw)
	}
}

func TestOrbitClampsPitch(t *testing.T) {
	cam := New(r3.Vec{}, 5)

	cam.Orbit(0, 10)
	if cam.Pitch != cam.MaxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", cam.MaxPitch, cam.Pitch)
	}

	cam.Orbit(0, -20)
	if cam.Pitch != cam.MinPitch {
		t.Errorf("expected pitch clamped to %f, got %f", cam.MinPitch, cam.Pitch)
	}
}

func TestDollyClampsDistance(t *testing.T) {
	cam := New(r3.Vec{}, 6)

	cam.Dolly(0.5)
	if cam.Distance != 3 {
		t.Errorf("expected distance 3, got %f", cam.Distance)
	}

	cam.Dolly(1e-9)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MinDistance, cam.Distance)
	}

	cam.Dolly(1e9)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MaxDistance, cam.Distance)
	}

	before := cam.Distance
	cam.Dolly(0)
	if cam.Distance != before {
		t.Errorf("expected zero factor to be ignored, got %f", cam.Distance)
	}
}

func TestPanMovesInCameraPlane(t *testing.T) {
	cam := New(r3.Vec{}, 5)
	cam.Yaw = 0

	cam.Pan(1, 0)
	if cam.Target.X != 1 || cam.Target.Z != 0 {
		t.Errorf("expected right pan along +X, got %v", cam.Target)
	}

	cam.Pan(0, 1)
	if cam.Target.X != 1 || cam.Target.Z != -1 {
		t.Errorf("expected forward pan along -Z, got %v", cam.Target)
	}
	if cam.Target.Y != 0 {
		t.Errorf("expected pan to stay on the ground plane, got y=%f", cam.Target.Y)
	}
}

func TestReset(t *testing.T) {
	cam := New(r3.Vec{X: 2, Y: 2, Z: 2}, 6)
	cam.Orbit(1, 0.3)
	cam.Dolly(2)
	cam.Pan(3, -1)

	cam.Reset()

	if cam.Target != (r3.Vec{X: 2, Y: 2, Z: 2}) {
		t.Errorf("expected target restored, got %v", cam.Target)
	}
	if cam.Yaw != math.Pi/4 || cam.Pitch != math.Pi/6 {
		t.Errorf("expected angles restored, got yaw=%f pitch=%f", cam.Yaw, cam.Pitch)
	}
	if cam.Distance != 6 {
		t.Errorf("expected distance restored, got %f", cam.Distance)
	}
}
