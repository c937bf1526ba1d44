package texture

import (
	"math"

	"github.com/lumenforge/lux/imagemap"
)

// Constant is a texture node that always evaluates to a fixed value.
type Constant struct {
	V Value
}

func (c Constant) Eval(HitPoint, Deps) (Value, error) { return c.V, nil }

// ImageMapLookup samples an image.ImageMap at the hit point's UV.
type ImageMapLookup struct {
	Map    *imagemap.ImageMap
	UScale float32
	VScale float32
	UDelta float32
	VDelta float32
}

func scaleOrOne(s float32) float32 {
	if s == 0 {
		return 1
	}
	return s
}

func (m ImageMapLookup) Eval(hp HitPoint, _ Deps) (Value, error) {
	u := hp.U*scaleOrOne(m.UScale) + m.UDelta
	v := hp.V*scaleOrOne(m.VScale) + m.VDelta
	px := m.Map.GetSpectrum(u, v)
	return Value{R: px.R, G: px.G, B: px.B}, nil
}

// HitPointAttr reads through to an attribute already resolved on the
// HitPoint (normal, shading point, color, alpha, grey), per spec.md §4.4
// "hit-point attribute".
type HitPointAttr int

const (
	AttrColor HitPointAttr = iota
	AttrAlpha
	AttrGrey
	AttrPositionX
	AttrPositionY
	AttrPositionZ
	AttrNormalX
	AttrNormalY
	AttrNormalZ
	AttrU
	AttrV
)

type HitPointNode struct {
	Attr HitPointAttr
}

func (n HitPointNode) Eval(hp HitPoint, _ Deps) (Value, error) {
	switch n.Attr {
	case AttrColor:
		return Value{R: hp.Color[0], G: hp.Color[1], B: hp.Color[2]}, nil
	case AttrAlpha:
		return uniform(hp.Alpha), nil
	case AttrGrey:
		return uniform(hp.Grey), nil
	case AttrPositionX:
		return uniform(hp.P[0]), nil
	case AttrPositionY:
		return uniform(hp.P[1]), nil
	case AttrPositionZ:
		return uniform(hp.P[2]), nil
	case AttrNormalX:
		return uniform(hp.Normal[0]), nil
	case AttrNormalY:
		return uniform(hp.Normal[1]), nil
	case AttrNormalZ:
		return uniform(hp.Normal[2]), nil
	case AttrU:
		return uniform(hp.U), nil
	case AttrV:
		return uniform(hp.V), nil
	default:
		return Value{}, nil
	}
}

func uniform(f float32) Value { return Value{R: f, G: f, B: f} }

// DotProduct evaluates two named child nodes as vectors (via R,G,B as
// x,y,z) and returns their dot product broadcast to all channels.
type DotProduct struct {
	A, B string
}

func (n DotProduct) Eval(hp HitPoint, deps Deps) (Value, error) {
	a, err := deps(n.A, hp)
	if err != nil {
		return Value{}, err
	}
	b, err := deps(n.B, hp)
	if err != nil {
		return Value{}, err
	}
	d := a.R*b.R + a.G*b.G + a.B*b.B
	return uniform(d), nil
}

// Mix linearly blends A and B by a scalar Amount node (spec.md §4.4
// "blend/mix").
type Mix struct {
	A, B, Amount string
}

func (n Mix) Eval(hp HitPoint, deps Deps) (Value, error) {
	a, err := deps(n.A, hp)
	if err != nil {
		return Value{}, err
	}
	b, err := deps(n.B, hp)
	if err != nil {
		return Value{}, err
	}
	amt, err := deps(n.Amount, hp)
	if err != nil {
		return Value{}, err
	}
	t := amt.Float()
	return Value{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}, nil
}

// ArithOp is the unified arithmetic opcode set of spec.md §4.4.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithAbs
	ArithClamp
	ArithLerp
	ArithPow
	ArithMod
)

// Arith applies op to named operands A, B (and C for lerp/clamp's third
// argument).
type Arith struct {
	Op   ArithOp
	A, B string
	C    string // optional third operand (lerp amount / clamp max)
}

func (n Arith) Eval(hp HitPoint, deps Deps) (Value, error) {
	a, err := deps(n.A, hp)
	if err != nil {
		return Value{}, err
	}
	var b, c Value
	if n.B != "" {
		if b, err = deps(n.B, hp); err != nil {
			return Value{}, err
		}
	}
	if n.C != "" {
		if c, err = deps(n.C, hp); err != nil {
			return Value{}, err
		}
	}
	apply := func(x, y, z float32) float32 {
		switch n.Op {
		case ArithAdd:
			return x + y
		case ArithSub:
			return x - y
		case ArithMul:
			return x * y
		case ArithDiv:
			if y == 0 {
				return 0
			}
			return x / y
		case ArithAbs:
			return float32(math.Abs(float64(x)))
		case ArithClamp:
			return clamp(x, y, z)
		case ArithLerp:
			return x + (y-x)*z
		case ArithPow:
			return float32(math.Pow(float64(x), float64(y)))
		case ArithMod:
			if y == 0 {
				return 0
			}
			return float32(math.Mod(float64(x), float64(y)))
		default:
			return x
		}
	}
	return Value{
		R: apply(a.R, b.R, c.R),
		G: apply(a.G, b.G, c.G),
		B: apply(a.B, b.B, c.B),
	}, nil
}

func clamp(v, lo, hi float32) float32 {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CoordMapping remaps the hit point's UV before delegating to Source,
// implementing spec.md §4.4 "coordinate mapping".
type CoordMapping struct {
	Source        string
	Scale, Offset [2]float32
	Rotation      float32 // radians
}

func (n CoordMapping) Eval(hp HitPoint, deps Deps) (Value, error) {
	u := hp.U*scaleOrOne(n.Scale[0]) + n.Offset[0]
	v := hp.V*scaleOrOne(n.Scale[1]) + n.Offset[1]
	if n.Rotation != 0 {
		cs, sn := float32(math.Cos(float64(n.Rotation))), float32(math.Sin(float64(n.Rotation)))
		u, v = u*cs-v*sn, u*sn+v*cs
	}
	hp.U, hp.V = u, v
	return deps(n.Source, hp)
}
