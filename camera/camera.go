// Package camera provides an orbital 3D camera for viewport control.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera orbits a target point at a fixed distance. Yaw rotates around
// the world Y axis, pitch tilts above the horizontal plane. The camera
// holds no raylib state; callers convert Position/Target to their
// renderer's types each frame.
type Camera struct {
	// Target is the look-at point in world coordinates.
	Target r3.Vec

	// Yaw is the horizontal orbit angle in radians, wrapped to [-pi, pi].
	Yaw float64

	// Pitch is the elevation angle in radians, clamped to
	// [MinPitch, MaxPitch].
	Pitch float64

	// Distance from the target.
	Distance float64

	// Vertical field of view in degrees.
	FovY float64

	// Constraints
	MinDistance, MaxDistance float64
	MinPitch, MaxPitch       float64

	// Home state restored by Reset.
	homeTarget   r3.Vec
	homeYaw      float64
	homePitch    float64
	homeDistance float64
}

// New creates a camera orbiting target at the given distance, looking
// slightly down from a three-quarter angle.
func New(target r3.Vec, distance float64) *Camera {
	c := &Camera{
		Target:      target,
		Yaw:         math.Pi / 4,
		Pitch:       math.Pi / 6,
		Distance:    distance,
		FovY:        45,
		MinDistance: distance * 0.1,
		MaxDistance: distance * 10,
		MinPitch:    -math.Pi/2 + 0.05,
		MaxPitch:    math.Pi/2 - 0.05,
	}
	c.homeTarget = c.Target
	c.homeYaw = c.Yaw
	c.homePitch = c.Pitch
	c.homeDistance = c.Distance
	return c
}

// Position returns the camera eye point in world coordinates.
func (c *Camera) Position() r3.Vec {
	cp := math.Cos(c.Pitch)
	return r3.Vec{
		X: c.Target.X + c.Distance*cp*math.Sin(c.Yaw),
		Y: c.Target.Y + c.Distance*math.Sin(c.Pitch),
		Z: c.Target.Z + c.Distance*cp*math.Cos(c.Yaw),
	}
}

// Orbit rotates the camera around the target by the given deltas in
// radians. Yaw wraps, pitch clamps.
func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw = wrapAngle(c.Yaw + dyaw)
	c.Pitch = clamp(c.Pitch+dpitch, c.MinPitch, c.MaxPitch)
}

// Dolly scales the orbit distance by the given factor, clamped to the
// distance constraints. Factors below 1 move closer.
func (c *Camera) Dolly(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = clamp(c.Distance*factor, c.MinDistance, c.MaxDistance)
}

// Pan translates the target in the camera's horizontal plane: dx moves
// along the screen-right axis, dz along the forward axis projected onto
// the ground.
func (c *Camera) Pan(dx, dz float64) {
	sy, cy := math.Sin(c.Yaw), math.Cos(c.Yaw)
	// Right axis is (cos yaw, 0, -sin yaw), ground-forward is
	// (-sin yaw, 0, -cos yaw) for a camera looking at the target.
	c.Target.X += dx*cy - dz*sy
	c.Target.Z += -dx*sy - dz*cy
}

// Reset returns the camera to its initial target, angles, and distance.
func (c *Camera) Reset() {
	c.Target = c.homeTarget
	c.Yaw = c.homeYaw
	c.Pitch = c.homePitch
	c.Distance = c.homeDistance
}

// wrapAngle wraps angle to [-pi, pi].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
