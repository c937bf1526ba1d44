// Package math3 provides the 3-space math primitives shared by every other
// package in lux: vectors, points, normals, affine transforms, rays and
// bounding boxes.
//
// Types are value types with methods, mirroring the teacher convention of
// small immutable structs (e.g. gg.Vec2) rather than pointer-heavy math
// objects. Components are float32 to match the spec's storage width for
// mesh and image data; intermediate computation inside methods uses
// float64 where precision matters (normalization, transform inversion).
package math3

import "math"

// Vec3 is a 3D displacement (direction + magnitude). It carries no
// unit-length invariant; callers that need a unit vector call Normalize
// explicitly.
type Vec3 struct {
	X, Y, Z float32
}

// V3 constructs a Vec3.
func V3(x, y, z float32) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Div returns the vector divided by a scalar.
func (v Vec3) Div(s float32) Vec3 { return Vec3{v.X / s, v.Y / s, v.Z / s} }

// Neg returns the negated vector.
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float32 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean length of the vector.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// LengthSq returns the squared length, cheaper than Length when only
// comparing magnitudes.
func (v Vec3) LengthSq() float32 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }

// Normalize returns a unit vector in the same direction. Returns the zero
// vector if v has zero length; callers that require a unit-length
// invariant must check IsZero first.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Div(l)
}

// Lerp linearly interpolates between v (t=0) and w (t=1).
func (v Vec3) Lerp(w Vec3, t float32) Vec3 {
	return Vec3{
		v.X + (w.X-v.X)*t,
		v.Y + (w.Y-v.Y)*t,
		v.Z + (w.Z-v.Z)*t,
	}
}

// IsZero reports whether v is the zero vector.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Approx reports whether v and w are equal within epsilon per component.
func (v Vec3) Approx(w Vec3, epsilon float32) bool {
	return absf(v.X-w.X) < epsilon && absf(v.Y-w.Y) < epsilon && absf(v.Z-w.Z) < epsilon
}

// Abs returns a vector with the absolute value of each component.
func (v Vec3) Abs() Vec3 { return Vec3{absf(v.X), absf(v.Y), absf(v.Z)} }

// MaxComponent returns the largest of the three components.
func (v Vec3) MaxComponent() float32 { return max(v.X, max(v.Y, v.Z)) }

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// Point3 is a position in space. It is represented identically to Vec3 but
// kept as a distinct type so that position/displacement mix-ups are caught
// by the compiler.
type Point3 struct {
	X, Y, Z float32
}

// P3 constructs a Point3.
func P3(x, y, z float32) Point3 { return Point3{X: x, Y: y, Z: z} }

// Add translates a point by a vector.
func (p Point3) Add(v Vec3) Point3 { return Point3{p.X + v.X, p.Y + v.Y, p.Z + v.Z} }

// Sub returns the displacement from w to p.
func (p Point3) Sub(w Point3) Vec3 { return Vec3{p.X - w.X, p.Y - w.Y, p.Z - w.Z} }

// DistanceSq returns the squared distance between two points.
func (p Point3) DistanceSq(w Point3) float32 { return p.Sub(w).LengthSq() }

// Distance returns the distance between two points.
func (p Point3) Distance(w Point3) float32 { return p.Sub(w).Length() }

// Lerp linearly interpolates between p (t=0) and w (t=1).
func (p Point3) Lerp(w Point3, t float32) Point3 {
	return Point3{
		p.X + (w.X-p.X)*t,
		p.Y + (w.Y-p.Y)*t,
		p.Z + (w.Z-p.Z)*t,
	}
}

// ToVec3 reinterprets the point as a displacement from the origin.
func (p Point3) ToVec3() Vec3 { return Vec3(p) }

// Normal3 is a surface normal. Per the data model it carries a unit-length
// invariant only after an explicit Normalize call; intermediate non-unit
// normals (e.g. from interpolation) are tolerated.
type Normal3 struct {
	X, Y, Z float32
}

// N3 constructs a Normal3.
func N3(x, y, z float32) Normal3 { return Normal3{X: x, Y: y, Z: z} }

// Normalize returns the unit-length normal.
func (n Normal3) Normalize() Normal3 {
	v := Vec3(n).Normalize()
	return Normal3(v)
}

// Dot returns the dot product with a vector.
func (n Normal3) Dot(v Vec3) float32 { return n.X*v.X + n.Y*v.Y + n.Z*v.Z }

// DotNormal returns the dot product with another normal.
func (n Normal3) DotNormal(m Normal3) float32 { return n.X*m.X + n.Y*m.Y + n.Z*m.Z }

// Neg returns the negated normal.
func (n Normal3) Neg() Normal3 { return Normal3{-n.X, -n.Y, -n.Z} }

// Vec3 converts a Normal3 to a Vec3 for use in vector arithmetic.
func (n Normal3) Vec3() Vec3 { return Vec3(n) }

// FaceForward flips n so that it lies in the same hemisphere as v.
func (n Normal3) FaceForward(v Vec3) Normal3 {
	if n.Dot(v) < 0 {
		return n.Neg()
	}
	return n
}
