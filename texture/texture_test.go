package texture

import "testing"

func TestGraph_Validate_DetectsCycle(t *testing.T) {
	g := NewGraph()
	g.Add("a", Constant{V: Value{R: 1}}, "b")
	g.Add("b", Constant{V: Value{R: 1}}, "a")
	if err := g.Validate(); err == nil {
		t.Fatal("expected cycle detection error")
	}
}

func TestGraph_Validate_AcceptsDAG(t *testing.T) {
	g := NewGraph()
	g.Add("leaf", Constant{V: Value{R: 0.5, G: 0.5, B: 0.5}})
	g.Add("root", Mix{A: "leaf", B: "leaf", Amount: "leaf"})
	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGraph_Eval_ArithAdd(t *testing.T) {
	g := NewGraph()
	g.Add("a", Constant{V: Value{R: 0.2, G: 0.2, B: 0.2}})
	g.Add("b", Constant{V: Value{R: 0.3, G: 0.3, B: 0.3}})
	g.Add("sum", Arith{Op: ArithAdd, A: "a", B: "b"})
	v, err := g.Eval("sum", HitPoint{})
	if err != nil {
		t.Fatal(err)
	}
	if v.R < 0.49 || v.R > 0.51 {
		t.Fatalf("got %v want ~0.5", v.R)
	}
}

func TestGraph_Eval_CoordMappingRemapsUV(t *testing.T) {
	g := NewGraph()
	g.Add("u", HitPointNode{Attr: AttrU})
	g.Add("mapped", CoordMapping{Source: "u", Scale: [2]float32{2, 1}, Offset: [2]float32{0.25, 0}})
	v, err := g.Eval("mapped", HitPoint{U: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	want := float32(0.1*2 + 0.25)
	if v.R < want-1e-5 || v.R > want+1e-5 {
		t.Fatalf("got %v want %v", v.R, want)
	}
}

func TestGraph_Eval_UnknownNode(t *testing.T) {
	g := NewGraph()
	g.Add("a", Constant{V: Value{}})
	if _, err := g.Eval("missing", HitPoint{}); err == nil {
		t.Fatal("expected error for unknown node")
	}
}

func TestVoronoi_F1LessOrEqualF2(t *testing.T) {
	f1 := Voronoi(1.3, 2.7, 0.4, VoronoiF1)
	f2 := Voronoi(1.3, 2.7, 0.4, VoronoiF2)
	if f1 > f2 {
		t.Fatalf("F1 (%v) should be <= F2 (%v)", f1, f2)
	}
}

func TestPerlin3_Bounded(t *testing.T) {
	for _, p := range [][3]float64{{0, 0, 0}, {1.5, 2.5, 3.5}, {-4, 9, 0.2}} {
		v := Perlin3(p[0], p[1], p[2])
		if v < -1.5 || v > 1.5 {
			t.Fatalf("Perlin3(%v) = %v out of expected range", p, v)
		}
	}
}

func TestLayeredMix_MultiplyAtFullAmount(t *testing.T) {
	g := NewGraph()
	g.Add("base", Constant{V: Value{R: 0.5, G: 0.5, B: 0.5}})
	g.Add("layer", Constant{V: Value{R: 0.5, G: 0.5, B: 0.5}})
	g.Add("amt", Constant{V: Value{R: 1, G: 1, B: 1}})
	g.Add("mix", LayeredMix{Base: "base", Layer: "layer", Amount: "amt", Mode: BlendMultiply})
	v, err := g.Eval("mix", HitPoint{})
	if err != nil {
		t.Fatal(err)
	}
	if v.R < 0.24 || v.R > 0.26 {
		t.Fatalf("got %v want ~0.25", v.R)
	}
}
