package bvh

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/lumenforge/lux/math3"
)

// TestBuild_BoundsUnionsAllItems is a property check for spec.md §8: a
// built tree's root Bounds() must equal the union of every item's own
// bounds, for any non-empty item set Build accepts.
func TestBuild_BoundsUnionsAllItems(t *testing.T) {
	coord := rapid.Float32Range(-500, 500)
	radius := rapid.Float32Range(0.01, 50)

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "n")
		items := make([]sphere, n)
		for i := range items {
			items[i] = sphere{
				center: math3.P3(coord.Draw(t, "x"), coord.Draw(t, "y"), coord.Draw(t, "z")),
				radius: radius.Draw(t, "r"),
			}
		}

		b := Build(items)
		want := math3.EmptyBBox3()
		for _, it := range items {
			want = want.Union(it.Bounds())
		}
		got := b.Bounds()
		if want.Min != got.Min || want.Max != got.Max {
			t.Fatalf("tree bounds %v != union of item bounds %v", got, want)
		}
	})
}
