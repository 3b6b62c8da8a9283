package spatial

import (
	"math"

	"github.com/ironsheep/mapmerge/internal/changeset"
	"github.com/ironsheep/mapmerge/internal/raster"
)

// PairResult is what one pair of variants contributes to classification.
type PairResult struct {
	// Conflicted holds coordinates both variants changed to different colors.
	Conflicted []raster.Point

	// NearMiss holds coordinates within tolerance of a different coordinate
	// changed by the other variant.
	NearMiss []raster.Point

	// MinDistance is the smallest Euclidean distance between the residual
	// lists, or +Inf when either residual is empty.
	MinDistance float64
}

// Exclude drops every change that appears, with the same coordinate and
// color, in both lists. The inputs are not modified.
func Exclude(a, b []changeset.Change) (ra, rb []changeset.Change) {
	inA := make(map[changeset.Change]struct{}, len(a))
	for _, c := range a {
		inA[c] = struct{}{}
	}
	inB := make(map[changeset.Change]struct{}, len(b))
	for _, c := range b {
		inB[c] = struct{}{}
	}

	for _, c := range a {
		if _, ok := inB[c]; !ok {
			ra = append(ra, c)
		}
	}
	for _, c := range b {
		if _, ok := inA[c]; !ok {
			rb = append(rb, c)
		}
	}
	return ra, rb
}

// Analyze compares two variants' change lists using a spatial index over b.
// A negative tolerance is treated as zero.
func Analyze(a, b []changeset.Change, tolerance float64) PairResult {
	tolerance = math.Max(tolerance, 0)
	ra, rb := Exclude(a, b)

	acc := newAccumulator(tolerance)
	if len(ra) == 0 || len(rb) == 0 {
		return acc.result()
	}

	// Query from the shorter list into an index over the longer one.
	query, indexed := ra, rb
	if len(query) > len(indexed) {
		query, indexed = indexed, query
	}
	idx := NewIndex(indexed)

	var buf []changeset.Change
	for _, q := range query {
		if nb, ok := idx.Nearest(q.Point); ok {
			acc.observeMin(distSq(q.Point, nb.Point))
		}
		buf = idx.Within(buf[:0], q.Point, tolerance)
		for _, c := range buf {
			acc.compare(q.Point, c.Point)
		}
	}
	return acc.result()
}

// AnalyzeBrute is Analyze without the index: every residual pair is compared.
func AnalyzeBrute(a, b []changeset.Change, tolerance float64) PairResult {
	tolerance = math.Max(tolerance, 0)
	ra, rb := Exclude(a, b)

	acc := newAccumulator(tolerance)
	for _, p := range ra {
		for _, q := range rb {
			acc.observeMin(distSq(p.Point, q.Point))
			acc.compare(p.Point, q.Point)
		}
	}
	return acc.result()
}

// accumulator collects the flagged coordinates of one pair.
type accumulator struct {
	tolSq      float64
	minSq      int
	seen       bool
	conflicted map[raster.Point]struct{}
	nearMiss   map[raster.Point]struct{}
}

func newAccumulator(tolerance float64) *accumulator {
	return &accumulator{
		tolSq:      tolerance * tolerance,
		conflicted: make(map[raster.Point]struct{}),
		nearMiss:   make(map[raster.Point]struct{}),
	}
}

func (acc *accumulator) compare(p, q raster.Point) {
	d := distSq(p, q)
	switch {
	case d == 0:
		acc.conflicted[p] = struct{}{}
	case float64(d) < acc.tolSq:
		acc.nearMiss[p] = struct{}{}
		acc.nearMiss[q] = struct{}{}
	}
}

func (acc *accumulator) observeMin(d int) {
	if !acc.seen || d < acc.minSq {
		acc.minSq = d
		acc.seen = true
	}
}

func (acc *accumulator) result() PairResult {
	r := PairResult{
		Conflicted:  sortedPoints(acc.conflicted),
		NearMiss:    sortedPoints(acc.nearMiss),
		MinDistance: math.Inf(1),
	}
	if acc.seen {
		r.MinDistance = math.Sqrt(float64(acc.minSq))
	}
	return r
}

func distSq(p, q raster.Point) int {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// sortedPoints returns the keys of m in row-major order.
func sortedPoints(m map[raster.Point]struct{}) []raster.Point {
	pts := make([]raster.Point, 0, len(m))
	for p := range m {
		pts = append(pts, p)
	}
	raster.SortPoints(pts)
	return pts
}
