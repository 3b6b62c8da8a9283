package spatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"

	"github.com/ironsheep/mapmerge/internal/changeset"
	"github.com/ironsheep/mapmerge/internal/raster"
)

// entry adapts a Change to orb.Pointer so it can live in the quadtree.
type entry struct {
	change changeset.Change
}

func (e entry) Point() orb.Point {
	return toOrb(e.change.Point)
}

func toOrb(p raster.Point) orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}

// Index is a quadtree over a change list. Coordinates must be unique within
// the list, which holds for any list produced by changeset.Extract.
type Index struct {
	tree *quadtree.Quadtree
	size int
}

// NewIndex builds an Index over changes.
func NewIndex(changes []changeset.Change) *Index {
	idx := &Index{size: len(changes)}
	if len(changes) == 0 {
		return idx
	}

	b := orb.Bound{Min: toOrb(changes[0].Point), Max: toOrb(changes[0].Point)}
	for _, c := range changes[1:] {
		b = b.Extend(toOrb(c.Point))
	}
	// Pad so a single point or a single row still gives the tree a real area.
	b.Max = orb.Point{b.Max[0] + 1, b.Max[1] + 1}

	idx.tree = quadtree.New(b)
	for _, c := range changes {
		// Every point lies inside b, so Add cannot fail.
		_ = idx.tree.Add(entry{change: c})
	}
	return idx
}

// Len returns the number of indexed changes.
func (idx *Index) Len() int { return idx.size }

// Within appends to buf every indexed change whose coordinate lies in the
// closed square of half-side radius centered on p.
func (idx *Index) Within(buf []changeset.Change, p raster.Point, radius float64) []changeset.Change {
	if idx.tree == nil {
		return buf
	}
	c := toOrb(p)
	box := orb.Bound{
		Min: orb.Point{c[0] - radius, c[1] - radius},
		Max: orb.Point{c[0] + radius, c[1] + radius},
	}
	for _, ptr := range idx.tree.InBound(nil, box) {
		buf = append(buf, ptr.(entry).change)
	}
	return buf
}

// Nearest returns the indexed change closest to p. ok is false when the
// index is empty.
func (idx *Index) Nearest(p raster.Point) (c changeset.Change, ok bool) {
	if idx.tree == nil {
		return changeset.Change{}, false
	}
	ptr := idx.tree.Find(toOrb(p))
	if ptr == nil {
		return changeset.Change{}, false
	}
	return ptr.(entry).change, true
}
