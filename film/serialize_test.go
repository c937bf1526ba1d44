package film

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilm_SerializeDeserializeRoundTrips(t *testing.T) {
	f := New(2, 2, Alpha, Depth)
	f.Splat(0, 0, RGB, []float32{1, 0.5, 0.25}, 1)
	f.Splat(1, 1, Alpha, []float32{1}, 1)
	f.Splat(1, 1, Depth, []float32{3.5}, 1)

	var buf bytes.Buffer
	if err := f.Serialize(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := Deserialize(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Width() != 2 || got.Height() != 2 {
		t.Fatalf("got dims %dx%d, want 2x2", got.Width(), got.Height())
	}
	if !got.HasChannel(Alpha) || !got.HasChannel(Depth) {
		t.Fatal("expected deserialized film to retain enabled channels")
	}

	rgb, _ := got.Output(RGB, false)
	if rgb[0] != 1 || rgb[1] != 0.5 || rgb[2] != 0.25 {
		t.Fatalf("got rgb %v, want [1 0.5 0.25]", rgb[:3])
	}
	depth, _ := got.Output(Depth, false)
	if depth[3] != 3.5 {
		t.Fatalf("got depth[3]=%v, want 3.5", depth[3])
	}

	// Every enabled channel's raw output must match exactly across the
	// round trip, not just the few samples spot-checked above.
	for _, ch := range []Channel{RGB, Alpha, Depth} {
		want, err := f.Output(ch, false)
		if err != nil {
			t.Fatal(err)
		}
		gotCh, err := got.Output(ch, false)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, gotCh); diff != "" {
			t.Errorf("channel %v mismatch after round trip (-want +got):\n%s", ch, diff)
		}
	}
}

func TestDeserialize_RejectsBadMagic(t *testing.T) {
	buf := bytes.NewReader(make([]byte, 32))
	if _, err := Deserialize(buf); err == nil {
		t.Fatal("expected an error for a zeroed/invalid header")
	}
}
