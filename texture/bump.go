package texture

import "math"

// BumpMap perturbs a shading normal using the forward-difference partials
// of a scalar height node, the standard bump-mapping construction (height
// field H, perturbed normal N' = normalize(N - dH/du * dpdu - dH/dv * dpdv)).
type BumpMap struct {
	Height      string
	Strength    float32
	Du, Dv      float32 // finite-difference step in UV, default 1e-3
}

func (n BumpMap) Eval(hp HitPoint, deps Deps) (Value, error) {
	du, dv := n.Du, n.Dv
	if du == 0 {
		du = 1e-3
	}
	if dv == 0 {
		dv = 1e-3
	}
	center, err := deps(n.Height, hp)
	if err != nil {
		return Value{}, err
	}
	hpU := hp
	hpU.U += du
	plusU, err := deps(n.Height, hpU)
	if err != nil {
		return Value{}, err
	}
	hpV := hp
	hpV.V += dv
	plusV, err := deps(n.Height, hpV)
	if err != nil {
		return Value{}, err
	}
	dhdu := (plusU.Float() - center.Float()) / du
	dhdv := (plusV.Float() - center.Float()) / dv

	strength := n.Strength
	if strength == 0 {
		strength = 1
	}
	nx := hp.ShadeNormal[0] - strength*dhdu
	ny := hp.ShadeNormal[1] - strength*dhdv
	nz := hp.ShadeNormal[2]
	perturbed := normalize3(nx, ny, nz)
	return Value{R: perturbed[0], G: perturbed[1], B: perturbed[2]}, nil
}

// NormalMap reads an RGB tangent-space normal node (values in [0,1] mapped
// to [-1,1] per channel) and returns it unpacked, ready for the shading
// frame to transform into world/object space.
type NormalMap struct {
	Source string
	Flip   bool
}

func (n NormalMap) Eval(hp HitPoint, deps Deps) (Value, error) {
	v, err := deps(n.Source, hp)
	if err != nil {
		return Value{}, err
	}
	nx := v.R*2 - 1
	ny := v.G*2 - 1
	nz := v.B*2 - 1
	if n.Flip {
		ny = -ny
	}
	unp := normalize3(nx, ny, nz)
	return Value{R: unp[0], G: unp[1], B: unp[2]}, nil
}

func normalize3(x, y, z float32) [3]float32 {
	l := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if l == 0 {
		return [3]float32{0, 0, 1}
	}
	return [3]float32{x / l, y / l, z / l}
}

// BlendMode is the Blender-compatible layer compositing mode of spec.md
// §4.4 "layered mix with Blender-compatible blend modes".
type BlendMode int

const (
	BlendMix BlendMode = iota
	BlendAdd
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendDifference
	BlendSubtract
)

func blendChannel(mode BlendMode, base, layer float32) float32 {
	switch mode {
	case BlendAdd:
		return base + layer
	case BlendMultiply:
		return base * layer
	case BlendScreen:
		return 1 - (1-base)*(1-layer)
	case BlendOverlay:
		if base < 0.5 {
			return 2 * base * layer
		}
		return 1 - 2*(1-base)*(1-layer)
	case BlendDarken:
		return min32(base, layer)
	case BlendLighten:
		return max32(base, layer)
	case BlendDifference:
		return float32(math.Abs(float64(base - layer)))
	case BlendSubtract:
		return base - layer
	default: // BlendMix
		return layer
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// LayeredMix composites Layer over Base using Mode, modulated by a scalar
// Amount node and an optional Stencil mask node (spec.md §4.4
// "stencil/alpha flags" — Stencil gates how much of Layer shows through,
// independent of Amount).
type LayeredMix struct {
	Base, Layer string
	Amount      string
	Stencil     string // optional; empty means no stencil (fully enabled)
	Mode        BlendMode
	UseAlpha    bool // if true, the hit point's alpha (hp.Alpha) also modulates blending
}

func (n LayeredMix) Eval(hp HitPoint, deps Deps) (Value, error) {
	base, err := deps(n.Base, hp)
	if err != nil {
		return Value{}, err
	}
	layer, err := deps(n.Layer, hp)
	if err != nil {
		return Value{}, err
	}
	amt := float32(1)
	if n.Amount != "" {
		a, err := deps(n.Amount, hp)
		if err != nil {
			return Value{}, err
		}
		amt = a.Float()
	}
	if n.Stencil != "" {
		s, err := deps(n.Stencil, hp)
		if err != nil {
			return Value{}, err
		}
		amt *= s.Float()
	}
	if n.UseAlpha {
		amt *= hp.Alpha
	}
	blended := Value{
		R: blendChannel(n.Mode, base.R, layer.R),
		G: blendChannel(n.Mode, base.G, layer.G),
		B: blendChannel(n.Mode, base.B, layer.B),
	}
	return Value{
		R: base.R + (blended.R-base.R)*amt,
		G: base.G + (blended.G-base.G)*amt,
		B: base.B + (blended.B-base.B)*amt,
	}, nil
}
