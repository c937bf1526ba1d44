package scene

import (
	"math"

	"github.com/lumenforge/lux/math3"
)

// Camera is spec.md §3's pinhole/thin-lens perspective camera, held by the
// scene under the "scene.camera.*" property namespace. Eye/LookAt/Up
// describe the view in world space; FOV is the vertical field of view in
// radians. LensRadius is 0 for a pinhole camera and nonzero for thin-lens
// depth of field, focused at FocalDistance (NewCamera sets it to 1).
type Camera struct {
	Eye, LookAt   math3.Point3
	Up            math3.Vec3
	FOV           float32
	LensRadius    float32
	FocalDistance float32

	right, up, forward math3.Vec3
	built               bool
}

// NewCamera returns a pinhole camera looking from eye toward lookAt.
func NewCamera(eye, lookAt math3.Point3, up math3.Vec3, fovRadians float32) *Camera {
	c := &Camera{Eye: eye, LookAt: lookAt, Up: up, FOV: fovRadians, FocalDistance: 1}
	c.buildBasis()
	return c
}

// buildBasis derives the camera's orthonormal (right, up, forward) frame
// from Eye/LookAt/Up. Called lazily so a Camera value can be constructed
// as a struct literal (e.g. deserialized from config) and still work.
func (c *Camera) buildBasis() {
	forward := c.LookAt.Sub(c.Eye).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()
	c.forward, c.right, c.up = forward, right, up
	c.built = true
}

// GenerateRay returns the camera ray through normalized film coordinates
// sx, sy in [-1,1]x[-1,1] (sy pointing up), per spec.md §4's "pinhole
// perspective camera generating primary rays from a resolved film
// coordinate". u1, u2 are lens samples in [0,1) used only when
// LensRadius > 0 (depth of field).
func (c *Camera) GenerateRay(sx, sy, u1, u2 float32) math3.Ray {
	if !c.built {
		c.buildBasis()
	}
	halfHeight := float32(math.Tan(float64(c.FOV) / 2))
	halfWidth := halfHeight // aspect is applied by the caller scaling sx

	dir := c.forward.
		Add(c.right.Mul(sx * halfWidth)).
		Add(c.up.Mul(sy * halfHeight)).
		Normalize()

	if c.LensRadius <= 0 {
		return math3.NewRay(c.Eye, dir)
	}

	focalPoint := c.Eye.Add(dir.Mul(c.FocalDistance))
	lensU, lensV := concentricSampleDisk(u1, u2)
	lensOrigin := c.Eye.
		Add(c.right.Mul(lensU * c.LensRadius)).
		Add(c.up.Mul(lensV * c.LensRadius))
	newDir := focalPoint.Sub(lensOrigin).Normalize()
	return math3.NewRay(lensOrigin, newDir)
}

// concentricSampleDisk maps a unit-square sample to a unit disk using
// Shirley's concentric mapping, the standard low-distortion construction
// for thin-lens sampling.
func concentricSampleDisk(u1, u2 float32) (float32, float32) {
	ox := 2*u1 - 1
	oy := 2*u2 - 1
	if ox == 0 && oy == 0 {
		return 0, 0
	}
	var r, theta float32
	if absf(ox) > absf(oy) {
		r = ox
		theta = (math.Pi / 4) * (oy / ox)
	} else {
		r = oy
		theta = math.Pi/2 - (math.Pi/4)*(ox/oy)
	}
	return r * float32(math.Cos(float64(theta))), r * float32(math.Sin(float64(theta)))
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
