package propbag

import "testing"

func TestBag_GetFloat_MissingReturnsDefault(t *testing.T) {
	b := NewBag()
	v, err := b.GetFloat("scene.camera.fov", 45)
	if err != nil {
		t.Fatal(err)
	}
	if v != 45 {
		t.Fatalf("got %v, want 45", v)
	}
}

func TestBag_GetFloat_BadValueIsConfigError(t *testing.T) {
	b := NewBag()
	b.Set("scene.camera.fov", "not-a-number")
	_, err := b.GetFloat("scene.camera.fov", 45)
	if err == nil {
		t.Fatal("expected error")
	}
	var cerr *ConfigError
	if ce, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	} else {
		cerr = ce
	}
	if cerr.Key != "scene.camera.fov" {
		t.Fatalf("unexpected key %q", cerr.Key)
	}
}

func TestBag_RequireString_MissingIsConfigError(t *testing.T) {
	b := NewBag()
	if _, err := b.RequireString("scene.lights.sun.type"); err == nil {
		t.Fatal("expected error for missing required key")
	}
}

func TestBag_RequireOneOf_RejectsUnknownValue(t *testing.T) {
	b := NewBag()
	b.Set("lightstrategy.type", "BOGUS")
	if _, err := b.RequireOneOf("lightstrategy.type", "UNIFORM", "LOG_POWER", "POWER", "DLS_CACHE"); err == nil {
		t.Fatal("expected error for unrecognized enum value")
	}
}

func TestBag_Keys_FiltersByPrefix(t *testing.T) {
	b := NewBag()
	b.Set("scene.lights.sun.type", "distant")
	b.Set("scene.lights.sun.radiance", "1", "1", "1")
	b.Set("scene.materials.wall.type", "matte")
	keys := b.Keys("scene.lights.sun.")
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
	}
}

func TestBag_GetFloats_ParsesVector(t *testing.T) {
	b := NewBag()
	b.Set("scene.lights.sun.radiance", "1", "0.5", "0.25")
	got, err := b.GetFloats("scene.lights.sun.radiance")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[1] != 0.5 {
		t.Fatalf("got %v", got)
	}
}
