package math3

// Ray is a parametric ray: points along it are Origin + t*Dir for t in
// [Mint, Maxt). Time supports motion-blurred instance transforms (spec.md
// §3 InstanceMesh). The invariant Mint < Maxt is required at trace time;
// callers construct rays via NewRay which enforces it.
type Ray struct {
	Origin     Point3
	Dir        Vec3
	Mint, Maxt float32
	Time       float32
}

// NewRay constructs a ray with the conventional [1e-4, +Inf) parameter
// range and time 0.
func NewRay(origin Point3, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir, Mint: 1e-4, Maxt: inf, Time: 0}
}

var inf = float32(1e30)

// At evaluates the ray at parameter t.
func (r Ray) At(t float32) Point3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Valid reports whether the ray satisfies the mint < maxt invariant.
func (r Ray) Valid() bool { return r.Mint < r.Maxt }
