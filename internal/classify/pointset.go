package classify

import "github.com/ironsheep/mapmerge/internal/raster"

// PointSet is a set of pixel coordinates. The zero value is not usable; use
// NewPointSet.
type PointSet struct {
	m map[raster.Point]struct{}
}

// NewPointSet returns a set holding pts.
func NewPointSet(pts ...raster.Point) PointSet {
	s := PointSet{m: make(map[raster.Point]struct{}, len(pts))}
	s.Add(pts...)
	return s
}

// Add inserts pts. Inserting a point already present has no effect.
func (s PointSet) Add(pts ...raster.Point) {
	for _, p := range pts {
		s.m[p] = struct{}{}
	}
}

// Has reports whether p is in the set.
func (s PointSet) Has(p raster.Point) bool {
	_, ok := s.m[p]
	return ok
}

// Len returns the number of points.
func (s PointSet) Len() int { return len(s.m) }

// Merge adds every point of o to s.
func (s PointSet) Merge(o PointSet) {
	for p := range o.m {
		s.m[p] = struct{}{}
	}
}

// Remove deletes every point of o from s.
func (s PointSet) Remove(o PointSet) {
	for p := range o.m {
		delete(s.m, p)
	}
}

// Sorted returns the points in row-major order.
func (s PointSet) Sorted() []raster.Point {
	pts := make([]raster.Point, 0, len(s.m))
	for p := range s.m {
		pts = append(pts, p)
	}
	raster.SortPoints(pts)
	return pts
}
