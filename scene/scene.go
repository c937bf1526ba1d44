// Package scene implements spec.md §3's Scene: "Immutable-after-build
// container of meshes, materials, textures, lights, and the camera" plus
// the named-dictionary/freeze/edit lifecycle of spec.md's overview
// ("Scene: Named dictionaries of meshes, materials, lights, objects; global
// bound; visibility map").
//
// Grounded on the teacher's scene/scene.go: a version counter incremented
// on every mutation (here driving accelerator-rebuild dirty bits instead of
// a render-cache invalidation signal), and an identity-deduplicated
// registry (imageRegistry) for shared resources, generalized here to named
// dictionaries of meshes/materials/lights/objects instead of an index-keyed
// image list.
package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/lumenforge/lux/bvh"
	"github.com/lumenforge/lux/imagemap"
	"github.com/lumenforge/lux/light"
	"github.com/lumenforge/lux/material"
	"github.com/lumenforge/lux/math3"
	"github.com/lumenforge/lux/mesh"
	"github.com/lumenforge/lux/propbag"
	"github.com/lumenforge/lux/texture"
)

// Object binds a named mesh and material under a world transform, the
// scene-graph leaf spec.md's "objects" dictionary holds.
type Object struct {
	Mesh      string
	Material  string
	Transform math3.Transform
	Visible   bool
	LightName string // non-empty if this object is also an emissive light source
}

// NewObject returns a visible object referencing mesh and material by name.
func NewObject(meshName, materialName string, transform math3.Transform) *Object {
	return &Object{Mesh: meshName, Material: materialName, Transform: transform, Visible: true}
}

// Scene is the named-dictionary container of spec.md §3/§4.9. Geometry,
// materials, textures and lights may only be mutated while editing (either
// before the first Start, or between BeginSceneEdit/EndSceneEdit); Start and
// EndSceneEdit freeze the scene and (re)build whichever accelerators their
// dependencies touched.
type Scene struct {
	meshes    map[string]*mesh.TriangleMesh
	materials map[string]*material.Material
	lights    map[string]*light.Light
	objects   map[string]*Object
	textures  *texture.Graph
	images    *imagemap.MapCache
	camera    *Camera

	version uint64
	started bool
	editing bool

	dirtyGeometry bool
	dirtyLights   bool

	bounds    math3.BBox3
	accel     *bvh.BVH[objectItem]
	lightDist *light.Distribution1D
	lightKeys []string
}

// New returns an empty scene in edit mode, ready to accept named entities.
func New(images *imagemap.MapCache) *Scene {
	return &Scene{
		meshes:    make(map[string]*mesh.TriangleMesh),
		materials: make(map[string]*material.Material),
		lights:    make(map[string]*light.Light),
		objects:   make(map[string]*Object),
		textures:  texture.NewGraph(),
		images:    images,
		editing:   true,
		dirtyGeometry: true,
		dirtyLights:   true,
	}
}

func (s *Scene) requireEditing(op string) error {
	if !s.editing {
		return &propbag.ConfigError{Reason: fmt.Sprintf("scene: %s requires scene-edit mode", op)}
	}
	return nil
}

// AddMesh registers a named triangle mesh.
func (s *Scene) AddMesh(name string, m *mesh.TriangleMesh) error {
	if err := s.requireEditing("AddMesh"); err != nil {
		return err
	}
	s.meshes[name] = m
	s.dirtyGeometry = true
	s.version++
	return nil
}

// AddMaterial registers a named material.
func (s *Scene) AddMaterial(name string, m *material.Material) error {
	if err := s.requireEditing("AddMaterial"); err != nil {
		return err
	}
	s.materials[name] = m
	s.version++
	return nil
}

// AddLight registers a named light source.
func (s *Scene) AddLight(name string, l *light.Light) error {
	if err := s.requireEditing("AddLight"); err != nil {
		return err
	}
	s.lights[name] = l
	s.dirtyLights = true
	s.version++
	return nil
}

// SetCamera installs the scene's camera, spec.md's "scene.camera.*"
// property namespace.
func (s *Scene) SetCamera(c *Camera) error {
	if err := s.requireEditing("SetCamera"); err != nil {
		return err
	}
	s.camera = c
	s.version++
	return nil
}

// Camera returns the scene's camera, or nil if none has been set.
func (s *Scene) Camera() *Camera { return s.camera }

// AddTextureNode adds a named node to the scene's shared texture graph,
// validated for cycles at EndSceneEdit/Start time.
func (s *Scene) AddTextureNode(name string, n texture.Node, dependsOn ...string) error {
	if err := s.requireEditing("AddTextureNode"); err != nil {
		return err
	}
	s.textures.Add(name, n, dependsOn...)
	s.version++
	return nil
}

// AddObject registers a named object, referencing a mesh and material by
// name. Object bodies are validated lazily at EndSceneEdit/Start, per
// spec.md §7's "undefined reference" ConfigError class.
func (s *Scene) AddObject(name string, obj *Object) error {
	if err := s.requireEditing("AddObject"); err != nil {
		return err
	}
	s.objects[name] = obj
	s.dirtyGeometry = true
	if obj.LightName != "" {
		s.dirtyLights = true
	}
	s.version++
	return nil
}

// RemoveObject deletes a named object.
func (s *Scene) RemoveObject(name string) error {
	if err := s.requireEditing("RemoveObject"); err != nil {
		return err
	}
	delete(s.objects, name)
	s.dirtyGeometry = true
	s.version++
	return nil
}

// Mesh, Material, Light look up named entities.
func (s *Scene) Mesh(name string) (*mesh.TriangleMesh, bool)    { m, ok := s.meshes[name]; return m, ok }
func (s *Scene) Material(name string) (*material.Material, bool) { m, ok := s.materials[name]; return m, ok }
func (s *Scene) Light(name string) (*light.Light, bool)          { l, ok := s.lights[name]; return l, ok }
func (s *Scene) Object(name string) (*Object, bool)               { o, ok := s.objects[name]; return o, ok }
func (s *Scene) Textures() *texture.Graph                        { return s.textures }
func (s *Scene) Images() *imagemap.MapCache                      { return s.images }

// Version returns the scene's modification counter.
func (s *Scene) Version() uint64 { return s.version }

// IsFrozen reports whether the scene is currently immutable (started and
// not in a scene-edit window).
func (s *Scene) IsFrozen() bool { return s.started && !s.editing }

// BeginSceneEdit grants mutation rights again after Start, spec.md §4.9's
// "implicit pause plus a flag granting mutation rights to the scene".
func (s *Scene) BeginSceneEdit() {
	s.editing = true
}

// EndSceneEdit rebuilds only the accelerators whose dependencies changed
// since the last build (spec.md §4.9: "rebuilds only the accelerators whose
// dependencies changed").
func (s *Scene) EndSceneEdit() error {
	if err := s.validateReferences(); err != nil {
		return err
	}
	if err := s.textures.Validate(); err != nil {
		return &propbag.ConfigError{Reason: "cyclic texture graph: " + err.Error()}
	}
	if s.dirtyGeometry {
		s.rebuildGeometry()
	}
	if s.dirtyLights {
		s.rebuildLights()
	}
	s.editing = false
	s.started = true
	return nil
}

// Start performs the first freeze: validates references, builds the global
// mesh BVH and light distribution, per spec.md §3's lifecycle summary.
func (s *Scene) Start() error {
	return s.EndSceneEdit()
}

func (s *Scene) validateReferences() error {
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		obj := s.objects[name]
		if _, ok := s.meshes[obj.Mesh]; !ok {
			return &propbag.ConfigError{Key: "scene.objects." + name + ".mesh", Reason: "undefined mesh reference: " + obj.Mesh}
		}
		if obj.Material != "" {
			if _, ok := s.materials[obj.Material]; !ok {
				return &propbag.ConfigError{Key: "scene.objects." + name + ".material", Reason: "undefined material reference: " + obj.Material}
			}
		}
		if obj.LightName != "" {
			if _, ok := s.lights[obj.LightName]; !ok {
				return &propbag.ConfigError{Key: "scene.objects." + name + ".light", Reason: "undefined light reference: " + obj.LightName}
			}
		}
	}
	return nil
}

// objectItem is the bvh.Bounded element indexed by the global scene BVH:
// one world-space bounding box per visible object.
type objectItem struct {
	name   string
	inst   *mesh.Instance
}

func (it objectItem) Bounds() math3.BBox3 { return it.inst.Bounds() }

func (s *Scene) rebuildGeometry() {
	items := make([]objectItem, 0, len(s.objects))
	bb := math3.EmptyBBox3()
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		obj := s.objects[name]
		if !obj.Visible {
			continue
		}
		base, ok := s.meshes[obj.Mesh]
		if !ok {
			continue
		}
		inst := &mesh.Instance{Base: base, Transform: obj.Transform}
		items = append(items, objectItem{name: name, inst: inst})
		bb = bb.Union(inst.Bounds())
	}
	s.accel = bvh.Build(items)
	s.bounds = bb
	s.dirtyGeometry = false
}

func (s *Scene) rebuildLights() {
	keys := make([]string, 0, len(s.lights))
	for name := range s.lights {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	weights := make([]float32, len(keys))
	for i, name := range keys {
		weights[i] = float32(math.Log1p(float64(s.lights[name].Power())))
	}
	s.lightKeys = keys
	s.lightDist = light.NewDistribution1D(weights)
	s.dirtyLights = false
}

// Bounds returns the scene's world-space bounding box, valid once frozen.
func (s *Scene) Bounds() math3.BBox3 { return s.bounds }

// LightKeys returns the light names in the fixed order the light-selection
// Distribution1D indexes them by.
func (s *Scene) LightKeys() []string { return s.lightKeys }

// LightDistribution returns the scene-wide light-selection distribution
// (spec.md §4.7's "global log-power distribution" fallback).
func (s *Scene) LightDistribution() *light.Distribution1D { return s.lightDist }

// SceneHit describes a resolved ray/scene intersection.
type SceneHit struct {
	Object string
	Hit    mesh.Hit
}

// Intersect finds the closest visible object the ray hits, transforming the
// hit point and normal back to world space via the object's instance.
func (s *Scene) Intersect(ray math3.Ray) (SceneHit, bool) {
	if s.accel == nil {
		return SceneHit{}, false
	}
	item, _, found := s.accel.IntersectRay(ray, func(it objectItem) (float32, bool) {
		hit, ok := it.inst.IntersectInstance(ray)
		if !ok {
			return 0, false
		}
		return hit.T, true
	})
	if !found {
		return SceneHit{}, false
	}
	hit, ok := item.inst.IntersectInstance(ray)
	if !ok {
		return SceneHit{}, false
	}
	return SceneHit{Object: item.name, Hit: hit}, true
}
