package spatial

import (
	"testing"

	"github.com/ironsheep/mapmerge/internal/changeset"
	"github.com/ironsheep/mapmerge/internal/raster"
)

func TestIndex_Empty(t *testing.T) {
	idx := NewIndex(nil)
	if idx.Len() != 0 {
		t.Errorf("Len: got %d, want 0", idx.Len())
	}
	if got := idx.Within(nil, raster.Point{}, 10); len(got) != 0 {
		t.Errorf("Within on empty index: got %v", got)
	}
	if _, ok := idx.Nearest(raster.Point{}); ok {
		t.Error("Nearest on empty index should report !ok")
	}
}

func TestIndex_WithinIsInclusiveBox(t *testing.T) {
	changes := []changeset.Change{
		ch(10, 10, yellow),
		ch(13, 10, yellow), // on the box edge
		ch(14, 10, yellow), // just outside
		ch(13, 13, yellow), // box corner
		ch(7, 7, yellow),   // opposite corner
	}
	idx := NewIndex(changes)

	got := idx.Within(nil, raster.Point{X: 10, Y: 10}, 3)
	found := make(map[raster.Point]bool)
	for _, c := range got {
		found[c.Point] = true
	}

	for _, want := range []raster.Point{{X: 10, Y: 10}, {X: 13, Y: 10}, {X: 13, Y: 13}, {X: 7, Y: 7}} {
		if !found[want] {
			t.Errorf("Within missed %v", want)
		}
	}
	if found[raster.Point{X: 14, Y: 10}] {
		t.Error("Within returned a point outside the box")
	}
}

func TestIndex_SinglePoint(t *testing.T) {
	idx := NewIndex([]changeset.Change{ch(4, 4, purple)})

	got := idx.Within(nil, raster.Point{X: 4, Y: 4}, 0)
	if len(got) != 1 || got[0].Color != purple {
		t.Errorf("Within radius 0: got %v", got)
	}

	nb, ok := idx.Nearest(raster.Point{X: 100, Y: 0})
	if !ok || nb.Point != (raster.Point{X: 4, Y: 4}) {
		t.Errorf("Nearest: got %v (ok=%v)", nb, ok)
	}
}

func TestIndex_Nearest(t *testing.T) {
	idx := NewIndex([]changeset.Change{ch(0, 0, yellow), ch(50, 50, yellow), ch(20, 22, purple)})

	nb, ok := idx.Nearest(raster.Point{X: 19, Y: 20})
	if !ok {
		t.Fatal("Nearest reported !ok")
	}
	if nb.Point != (raster.Point{X: 20, Y: 22}) {
		t.Errorf("Nearest: got %v, want (20,22)", nb.Point)
	}
}
