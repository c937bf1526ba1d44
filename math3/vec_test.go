package math3

import "testing"

func TestVec3_Add(t *testing.T) {
	tests := []struct {
		name   string
		v, w   Vec3
		expect Vec3
	}{
		{"zero+zero", V3(0, 0, 0), V3(0, 0, 0), V3(0, 0, 0)},
		{"positive", V3(1, 2, 3), V3(4, 5, 6), V3(5, 7, 9)},
		{"mixed", V3(1, -2, 3), V3(-3, 4, -6), V3(-2, 2, -3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Add(tt.w); got != tt.expect {
				t.Errorf("Add() = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestVec3_Cross(t *testing.T) {
	x, y, z := V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)
	if got := x.Cross(y); got != z {
		t.Errorf("X cross Y = %v, want %v", got, z)
	}
	if got := y.Cross(x); got != z.Neg() {
		t.Errorf("Y cross X = %v, want %v", got, z.Neg())
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := V3(3, 4, 0).Normalize()
	if !v.Approx(V3(0.6, 0.8, 0), 1e-6) {
		t.Errorf("Normalize() = %v, want (0.6, 0.8, 0)", v)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize() of zero vector = %v, want zero", got)
	}
}

func TestVec3_DotOrthogonal(t *testing.T) {
	if d := V3(1, 0, 0).Dot(V3(0, 1, 0)); d != 0 {
		t.Errorf("Dot() of orthogonal vectors = %v, want 0", d)
	}
}

func TestNormal3_FaceForward(t *testing.T) {
	n := N3(0, 1, 0)
	v := V3(0, -1, 0)
	got := n.FaceForward(v)
	if got.Dot(v) < 0 {
		t.Errorf("FaceForward result %v still opposes %v", got, v)
	}
}

func TestPoint3_DistanceSq(t *testing.T) {
	a, b := P3(0, 0, 0), P3(3, 4, 0)
	if got := a.DistanceSq(b); got != 25 {
		t.Errorf("DistanceSq() = %v, want 25", got)
	}
}
