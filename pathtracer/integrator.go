// Package pathtracer implements spec.md §4.8's unidirectional path tracer:
// a tile-parallel render loop driving, per pixel sample, a backward path
// from the camera with next-event estimation against the scene's lights
// (or the direct-lighting sampling cache when supplied), Russian-roulette
// termination, and fixed per-lobe-kind depth limits.
//
// Grounded on internal/parallel.WorkerPool (reused directly as the tile
// dispatch pool — its submit/steal shape needs no domain-specific change)
// and internal/parallel.Tile/TileGrid's pixel-rectangle addressing,
// generalized here into a sample-accumulating Tile tracked to
// convergence instead of a one-shot rasterized byte buffer. The
// integration algorithm itself (NEE, MIS power heuristic, Russian
// roulette) has no literal corpus precedent; it follows spec.md §4.8
// directly and is documented as a domain algorithm in DESIGN.md.
package pathtracer

import (
	"github.com/lumenforge/lux/color"
	"github.com/lumenforge/lux/material"
	"github.com/lumenforge/lux/math3"
	"github.com/lumenforge/lux/sampler"
	"github.com/lumenforge/lux/scene"
	"github.com/lumenforge/lux/texture"
)

// Integrator evaluates spec.md §4.8's radiance estimator for one camera
// ray under a fixed Config.
type Integrator struct {
	Config Config
}

// New returns an Integrator configured by cfg.
func New(cfg Config) *Integrator { return &Integrator{Config: cfg} }

const dimsPerBounce = 8

// Li estimates the radiance arriving along ray in scn, consuming samp's
// dimensions starting at dimOffset (the caller has typically already used
// dimensions 0..dimOffset-1 for pixel-jitter/lens sampling).
func (in *Integrator) Li(ray math3.Ray, scn *scene.Scene, samp sampler.Sampler, dimOffset int) color.Spectrum {
	var L color.Spectrum
	throughput := color.Spectrum{R: 1, G: 1, B: 1}
	specularBounce := true
	diffuseDepth, glossyDepth, specularDepth := 0, 0, 0

	r := ray
	for depth := 0; depth < in.Config.MaxDepth; depth++ {
		dim := dimOffset + depth*dimsPerBounce

		hit, obj, found := intersectScene(scn, r)
		if !found {
			if specularBounce || in.Config.ForceDirectLightingOnMiss {
				L = in.addContribution(L, throughput.Mul(evalInfiniteLights(scn, r.Dir)))
			}
			break
		}

		n := hit.Normal
		wo := r.Dir.Neg()

		if obj.LightName != "" {
			if l, ok := scn.Light(obj.LightName); ok {
				if specularBounce || in.Config.ForceDirectLightingOnMiss {
					L = in.addContribution(L, throughput.Mul(l.LeHit(n, wo)))
				}
			}
		}

		bsdf, _, err := shadePoint(scn, obj, hit, n)
		if err != nil || bsdf == nil {
			break
		}

		L = in.addContribution(L, throughput.Mul(in.sampleDirectLighting(hit.P, n, wo, bsdf, scn, samp, dim, false)))

		u1, u2 := float32(samp.Get(dim+3)), float32(samp.Get(dim+4))
		wi, f, pdf, specular := bsdf.Sample(wo, u1, u2)
		if pdf <= 0 || f.IsBlack() {
			break
		}
		cos := absCos(n, wi)
		throughput = throughput.Mul(f).Scale(cos / pdf)
		specularBounce = specular

		if specular {
			specularDepth++
			if specularDepth > in.Config.SpecularDepth {
				break
			}
		} else if isGlossy(bsdf) {
			glossyDepth++
			if glossyDepth > in.Config.GlossyDepth {
				break
			}
		} else {
			diffuseDepth++
			if diffuseDepth > in.Config.DiffuseDepth {
				break
			}
		}

		if in.Config.VarianceClampMax > 0 {
			throughput = clampThroughput(throughput, in.Config.VarianceClampMax)
		}

		if depth >= in.Config.RussianRouletteDepth {
			q := 1 - clamp32(throughput.Y(), 0, 1)
			if q < in.Config.RussianRouletteThreshold {
				q = in.Config.RussianRouletteThreshold
			}
			ru := float32(samp.Get(dim + 5))
			if ru < q {
				break
			}
			throughput = throughput.Scale(1 / (1 - q))
		}

		r = math3.NewRay(hit.P, wi)
	}

	if L.HasNaN() {
		return color.Spectrum{}
	}
	if in.Config.VarianceClampMax > 0 {
		L = clampMagnitude(L, in.Config.VarianceClampMax)
	}
	return L
}

func intersectScene(scn *scene.Scene, r math3.Ray) (sceneHitLike, *scene.Object, bool) {
	h, ok := scn.Intersect(r)
	if !ok {
		return sceneHitLike{}, nil, false
	}
	obj, ok := scn.Object(h.Object)
	if !ok {
		return sceneHitLike{}, nil, false
	}
	return sceneHitLike{P: h.Hit.P, Normal: h.Hit.Normal}, obj, true
}

// sceneHitLike carries the subset of scene.SceneHit the integrator needs,
// named distinctly to avoid importing mesh.Hit's full field set into this
// file's vocabulary.
type sceneHitLike struct {
	P      math3.Point3
	Normal math3.Normal3
}

func shadePoint(scn *scene.Scene, obj *scene.Object, hit sceneHitLike, n math3.Normal3) (material.BSDF, texture.HitPoint, error) {
	hp := texture.HitPoint{
		P:           [3]float32{hit.P.X, hit.P.Y, hit.P.Z},
		Normal:      [3]float32{n.X, n.Y, n.Z},
		ShadeNormal: [3]float32{n.X, n.Y, n.Z},
	}
	if obj.Material == "" {
		return nil, hp, nil
	}
	mat, ok := scn.Material(obj.Material)
	if !ok {
		return nil, hp, nil
	}
	bsdf, err := mat.GetBSDF(scn.Textures(), hp, n)
	return bsdf, hp, err
}

// evalInfiniteLights sums the radiance every infinite-extent light
// (environment, sky, distant) contributes to an escaping ray along dir.
func evalInfiniteLights(scn *scene.Scene, dir math3.Vec3) color.Spectrum {
	var sum color.Spectrum
	for _, name := range scn.LightKeys() {
		l, ok := scn.Light(name)
		if !ok {
			continue
		}
		sum = sum.Add(l.Eval(dir))
	}
	return sum
}

// sampleDirectLighting performs one next-event-estimation sample:
// choosing a light (via the DLSC when configured, else the scene's
// global distribution), sampling it, testing visibility, and weighting
// by the power heuristic against the BSDF's own pdf for non-delta
// lights.
func (in *Integrator) sampleDirectLighting(p math3.Point3, n math3.Normal3, wo math3.Vec3, bsdf material.BSDF, scn *scene.Scene, samp sampler.Sampler, dim int, isVolume bool) color.Spectrum {
	dist := scn.LightDistribution()
	keys := scn.LightKeys()
	if in.Config.Cache != nil {
		if d, k, ok := in.Config.Cache.GetLightDistribution(p, n, isVolume); ok {
			dist, keys = d, k
		}
	}
	if dist == nil || len(keys) == 0 {
		return color.Spectrum{}
	}

	uSel := float32(samp.Get(dim))
	idx, lightPmf := dist.SampleDiscrete(uSel)
	if lightPmf <= 0 || idx >= len(keys) {
		return color.Spectrum{}
	}
	l, ok := scn.Light(keys[idx])
	if !ok {
		return color.Spectrum{}
	}

	u1, u2 := float32(samp.Get(dim+1)), float32(samp.Get(dim+2))
	wi, li, pdf, dist2light := l.Sample(p, u1, u2)
	if pdf <= 0 || li.IsBlack() {
		return color.Spectrum{}
	}

	f := bsdf.Eval(wo, wi)
	if f.IsBlack() {
		return color.Spectrum{}
	}
	cos := absCos(n, wi)
	if cos <= 0 {
		return color.Spectrum{}
	}

	if isOccluded(p, wi, dist2light, scn) {
		return color.Spectrum{}
	}

	lightPdf := pdf * lightPmf
	weight := float32(1)
	if !l.IsDelta() {
		bsdfPdf := bsdf.Pdf(wo, wi)
		weight = powerHeuristic(lightPdf, bsdfPdf)
	}
	return f.Mul(li).Scale(cos * weight / lightPdf)
}

func isOccluded(p math3.Point3, wi math3.Vec3, dist float32, scn *scene.Scene) bool {
	ray := math3.NewRay(p, wi)
	if dist > 0 && dist < 1e29 {
		ray.Maxt = dist * 0.999
	}
	_, hit := scn.Intersect(ray)
	return hit
}

func powerHeuristic(pdfA, pdfB float32) float32 {
	a, b := pdfA*pdfA, pdfB*pdfB
	if a+b == 0 {
		return 0
	}
	return a / (a + b)
}

func absCos(n math3.Normal3, wi math3.Vec3) float32 {
	c := n.Dot(wi)
	if c < 0 {
		return -c
	}
	return c
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampThroughput bounds a path's running throughput luminance to
// VarianceClampMax^2 (Config.VarianceClampMax operates in sqrt space,
// spec.md's sqrtVarianceClampMaxValue), scaling all channels uniformly so
// only overall energy is clamped, not the path's color balance.
func clampThroughput(t color.Spectrum, maxSqrt float32) color.Spectrum {
	return clampMagnitude(t, maxSqrt)
}

// clampMagnitude scales c uniformly so its luminance never exceeds
// maxSqrt^2, spec.md §8's "no splatted sample's contribution magnitude
// exceeds sqrtVarianceClampMaxValue^2".
func clampMagnitude(c color.Spectrum, maxSqrt float32) color.Spectrum {
	maxVal := maxSqrt * maxSqrt
	y := c.Y()
	if y <= maxVal || y <= 0 {
		return c
	}
	return c.Scale(maxVal / y)
}

// addContribution adds c to L, first clamping c's own magnitude when
// variance clamping is enabled. This bounds the actual per-bounce
// radiance that reaches L (and is eventually splatted to the film), not
// just the multiplicative throughput carried into future bounces.
// clampThroughput alone never touches a contribution already added to L.
func (in *Integrator) addContribution(L, c color.Spectrum) color.Spectrum {
	if in.Config.VarianceClampMax > 0 {
		c = clampMagnitude(c, in.Config.VarianceClampMax)
	}
	return L.Add(c)
}

// isGlossy reports whether bsdf is a broad (non-delta, non-Lambertian)
// lobe, the classification Config.GlossyDepth applies to. The BSDF
// interface exposes only IsSpecular, not a three-way lobe kind, so this
// type-switches on the concrete types material.GetBSDF returns; MixBSDF
// counts as glossy when either branch is glossy, since either sub-lobe may
// fire at sample time.
func isGlossy(b material.BSDF) bool {
	switch v := b.(type) {
	case material.MetalBSDF:
		return true
	case material.MixBSDF:
		return isGlossy(v.A) || isGlossy(v.B)
	default:
		return false
	}
}
