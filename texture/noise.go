package texture

import "math"

// Perlin noise, grounded on Ken Perlin's reference lattice-gradient
// algorithm (improved 2002 variant) — there is no noise-function precedent
// anywhere in the example corpus, so this follows the textbook
// permutation-table construction rather than any pack file.
var perlinPerm = buildPerlinPermutation()

func buildPerlinPermutation() [512]int {
	base := [256]int{
		151, 160, 137, 91, 90, 15, 131, 13, 201, 95, 96, 53, 194, 233, 7, 225,
		140, 36, 103, 30, 69, 142, 8, 99, 37, 240, 21, 10, 23, 190, 6, 148,
		247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219, 203, 117, 35, 11, 32,
		57, 177, 33, 88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175,
		74, 165, 71, 134, 139, 48, 27, 166, 77, 146, 158, 231, 83, 111, 229, 122,
		60, 211, 133, 230, 220, 105, 92, 41, 55, 46, 245, 40, 244, 102, 143, 54,
		65, 25, 63, 161, 1, 216, 80, 73, 209, 76, 132, 187, 208, 89, 18, 169,
		200, 196, 135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173, 186, 3, 64,
		52, 217, 226, 250, 124, 123, 5, 202, 38, 147, 118, 126, 255, 82, 85, 212,
		207, 206, 59, 227, 47, 16, 58, 17, 182, 189, 28, 42, 223, 183, 170, 213,
		119, 248, 152, 2, 44, 154, 163, 70, 221, 153, 101, 155, 167, 43, 172, 9,
		129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232, 178, 185, 112, 104,
		218, 246, 97, 228, 251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162, 241,
		81, 51, 145, 235, 249, 14, 239, 107, 49, 192, 214, 31, 181, 199, 106, 157,
		184, 84, 204, 176, 115, 121, 50, 45, 127, 4, 150, 254, 138, 236, 205, 93,
		222, 114, 67, 29, 24, 72, 243, 141, 128, 195, 78, 66, 215, 61, 156, 180,
	}
	var p [512]int
	for i := 0; i < 512; i++ {
		p[i] = base[i&255]
	}
	return p
}

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }
func lerpf(t, a, b float64) float64 { return a + t*(b-a) }

func grad3(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	switch {
	case h < 4:
		v = z
	case h == 12 || h == 14:
		v = x
	}
	result := 0.0
	if h&1 == 0 {
		result = u
	} else {
		result = -u
	}
	if h&2 == 0 {
		result += v
	} else {
		result -= v
	}
	return result
}

// Perlin3 evaluates classic 3-D Perlin noise in roughly [-1, 1].
func Perlin3(x, y, z float64) float64 {
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255
	Z := int(math.Floor(z)) & 255
	x -= math.Floor(x)
	y -= math.Floor(y)
	z -= math.Floor(z)
	u, v, w := fade(x), fade(y), fade(z)

	p := perlinPerm
	a := p[X] + Y
	aa := p[a] + Z
	ab := p[a+1] + Z
	b := p[X+1] + Y
	ba := p[b] + Z
	bb := p[b+1] + Z

	return lerpf(w,
		lerpf(v,
			lerpf(u, grad3(p[aa], x, y, z), grad3(p[ba], x-1, y, z)),
			lerpf(u, grad3(p[ab], x, y-1, z), grad3(p[bb], x-1, y-1, z))),
		lerpf(v,
			lerpf(u, grad3(p[aa+1], x, y, z-1), grad3(p[ba+1], x-1, y, z-1)),
			lerpf(u, grad3(p[ab+1], x, y-1, z-1), grad3(p[bb+1], x-1, y-1, z-1))))
}

// FBM accumulates octaves of Perlin3 noise (fractional Brownian motion),
// used by the cloud/marble/wood procedurals below.
func FBM(x, y, z float64, octaves int, lacunarity, gain float64) float64 {
	sum, amp, freq := 0.0, 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * Perlin3(x*freq, y*freq, z*freq)
		freq *= lacunarity
		amp *= gain
	}
	return sum
}

// Musgrave evaluates a multifractal noise, the standard generalization of
// fBm with per-octave persistence driven by the running signal amplitude
// (spec.md §4.4 "Musgrave").
func Musgrave(x, y, z float64, octaves int, lacunarity, h, offset float64) float64 {
	freq := 1.0
	weight := 1.0
	sum := 0.0
	for i := 0; i < octaves; i++ {
		increment := (Perlin3(x*freq, y*freq, z*freq) + offset) * math.Pow(freq, -h)
		sum += increment * weight
		weight = clampf64(increment*weight, 0, 1)
		freq *= lacunarity
	}
	return sum
}

func clampf64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// VoronoiMetric selects the distance-ranking output of Voronoi, per
// spec.md §4.4 "Voronoi F1..F4/F2-F1/crackle".
type VoronoiMetric int

const (
	VoronoiF1 VoronoiMetric = iota
	VoronoiF2
	VoronoiF3
	VoronoiF4
	VoronoiF2MinusF1
	VoronoiCrackle
)

// Voronoi returns the requested distance metric over a unit feature-point
// lattice (one random point per cell, jittered), the textbook Worley-noise
// construction.
func Voronoi(x, y, z float64, metric VoronoiMetric) float64 {
	cx, cy, cz := math.Floor(x), math.Floor(y), math.Floor(z)
	var dists [4]float64
	for i := range dists {
		dists[i] = math.MaxFloat64
	}
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				cellX, cellY, cellZ := cx+float64(dx), cy+float64(dy), cz+float64(dz)
				px, py, pz := cellHash3(cellX, cellY, cellZ)
				fx, fy, fz := cellX+px-x, cellY+py-y, cellZ+pz-z
				d := fx*fx + fy*fy + fz*fz
				insertSorted(&dists, d)
			}
		}
	}
	f1, f2, f3, f4 := math.Sqrt(dists[0]), math.Sqrt(dists[1]), math.Sqrt(dists[2]), math.Sqrt(dists[3])
	switch metric {
	case VoronoiF1:
		return f1
	case VoronoiF2:
		return f2
	case VoronoiF3:
		return f3
	case VoronoiF4:
		return f4
	case VoronoiF2MinusF1:
		return f2 - f1
	case VoronoiCrackle:
		return f2 - f1 // crackle returns the same F2-F1 ridge value; no further remap is applied
	default:
		return f1
	}
}

func insertSorted(dists *[4]float64, d float64) {
	for i := 0; i < 4; i++ {
		if d < dists[i] {
			for j := 3; j > i; j-- {
				dists[j] = dists[j-1]
			}
			dists[i] = d
			return
		}
	}
}

// cellHash3 derives a deterministic pseudo-random jitter point inside the
// unit cell at integer coordinates, via a simple integer hash (no RNG
// library dependency needed for a stateless per-cell hash).
func cellHash3(x, y, z float64) (float64, float64, float64) {
	ix := int64(x)*73856093 ^ int64(y)*19349663 ^ int64(z)*83492791
	h := uint64(ix)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	r1 := float64(h&0xffff) / 65535.0
	r2 := float64((h>>16)&0xffff) / 65535.0
	r3 := float64((h>>32)&0xffff) / 65535.0
	return r1, r2, r3
}

// DistortedNoise warps the sample point by a secondary noise field before
// evaluating Perlin3, per spec.md §4.4 "distorted noise".
func DistortedNoise(x, y, z, distortion float64) float64 {
	ox := Perlin3(x+13.5, y, z) * distortion
	oy := Perlin3(x, y+13.5, z) * distortion
	oz := Perlin3(x, y, z+13.5) * distortion
	return Perlin3(x+ox, y+oy, z+oz)
}

// WoodWaveform is the radial profile applied around the wood-grain rings.
type WoodWaveform int

const (
	WaveSaw WoodWaveform = iota
	WaveSine
	WaveTriangle
)

func waveform(w WoodWaveform, t float64) float64 {
	switch w {
	case WaveSine:
		return 0.5 + 0.5*math.Sin(t*2*math.Pi)
	case WaveTriangle:
		frac := t - math.Floor(t)
		if frac < 0.5 {
			return frac * 2
		}
		return 2 - frac*2
	default: // WaveSaw
		return t - math.Floor(t)
	}
}

// Clouds evaluates a cloud-like fBm field mapped to [0,1].
type CloudsNode struct {
	Octaves             int
	Lacunarity, Gain     float64
	Scale                float64
}

func (n CloudsNode) Eval(hp HitPoint, _ Deps) (Value, error) {
	oct, lac, gain := orDefaultNoiseParams(n.Octaves, n.Lacunarity, n.Gain)
	v := FBM(float64(hp.P[0])*n.scaleOrOne(), float64(hp.P[1])*n.scaleOrOne(), float64(hp.P[2])*n.scaleOrOne(), oct, lac, gain)
	v = 0.5 + 0.5*v
	return uniform(float32(v)), nil
}

func (n CloudsNode) scaleOrOne() float64 {
	if n.Scale == 0 {
		return 1
	}
	return n.Scale
}

func orDefaultNoiseParams(octaves int, lac, gain float64) (int, float64, float64) {
	if octaves <= 0 {
		octaves = 4
	}
	if lac == 0 {
		lac = 2.0
	}
	if gain == 0 {
		gain = 0.5
	}
	return octaves, lac, gain
}

// MarbleNode evaluates a marble-vein field: Waveform (saw by default) of
// the X coordinate perturbed by an fBm field, classic procedural-texture construction.
type MarbleNode struct {
	Octaves          int
	Lacunarity, Gain float64
	Scale            float64
	Waveform         WoodWaveform
}

func (n MarbleNode) Eval(hp HitPoint, _ Deps) (Value, error) {
	oct, lac, gain := orDefaultNoiseParams(n.Octaves, n.Lacunarity, n.Gain)
	s := n.scaleOrOne()
	t := float64(hp.P[0])*s + 4*FBM(float64(hp.P[0])*s, float64(hp.P[1])*s, float64(hp.P[2])*s, oct, lac, gain)
	v := waveform(n.Waveform, t)
	return uniform(float32(v)), nil
}

func (n MarbleNode) scaleOrOne() float64 {
	if n.Scale == 0 {
		return 1
	}
	return n.Scale
}

// WoodNode evaluates concentric rings around the Z axis, perturbed by
// low-amplitude Perlin noise, with a selectable radial waveform.
type WoodNode struct {
	RingScale float64
	Waveform  WoodWaveform
	Turbulence float64
}

func (n WoodNode) Eval(hp HitPoint, _ Deps) (Value, error) {
	scale := n.RingScale
	if scale == 0 {
		scale = 1
	}
	x, y := float64(hp.P[0]), float64(hp.P[1])
	r := math.Sqrt(x*x+y*y)*scale + n.Turbulence*Perlin3(x, y, float64(hp.P[2]))
	v := waveform(n.Waveform, r)
	return uniform(float32(v)), nil
}

// NoiseFamily dispatches to one of the Perlin/Voronoi/Musgrave/distorted
// scalar noise kinds, returning a uniform Value — the "RGB-cube" variant
// of spec.md §4.4 instead maps the three axes of a single noise sample to
// R, G, B so the result is not grey.
type NoiseFamily int

const (
	NoisePerlin NoiseFamily = iota
	NoiseVoronoi
	NoiseMusgrave
	NoiseDistorted
	NoiseRGBCube
)

type NoiseNode struct {
	Kind       NoiseFamily
	Scale      float64
	Octaves    int
	Lacunarity float64
	Gain       float64
	Metric     VoronoiMetric
	Distortion float64
}

func (n NoiseNode) Eval(hp HitPoint, _ Deps) (Value, error) {
	s := n.Scale
	if s == 0 {
		s = 1
	}
	x, y, z := float64(hp.P[0])*s, float64(hp.P[1])*s, float64(hp.P[2])*s
	switch n.Kind {
	case NoiseVoronoi:
		return uniform(float32(Voronoi(x, y, z, n.Metric))), nil
	case NoiseMusgrave:
		oct, lac, _ := orDefaultNoiseParams(n.Octaves, n.Lacunarity, 0)
		return uniform(float32(Musgrave(x, y, z, oct, lac, 1.0, 0.0))), nil
	case NoiseDistorted:
		d := n.Distortion
		if d == 0 {
			d = 1
		}
		return uniform(float32(DistortedNoise(x, y, z, d))), nil
	case NoiseRGBCube:
		return Value{
			R: float32(0.5 + 0.5*Perlin3(x, y, z)),
			G: float32(0.5 + 0.5*Perlin3(x+31.1, y, z)),
			B: float32(0.5 + 0.5*Perlin3(x, y+47.3, z)),
		}, nil
	default:
		return uniform(float32(0.5 + 0.5*Perlin3(x, y, z))), nil
	}
}
