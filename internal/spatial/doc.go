// Package spatial finds the changes from two different variants that collide
// or lie within a distance tolerance of each other.
//
// # Pair Analysis
//
// Analyze compares two change lists:
//
//  1. Own-pair exclusion: a change present in both lists with the same
//     coordinate and the same color is dropped from both. Two variants that
//     agree on a pixel do not conflict over it.
//  2. Collision: a coordinate left in both lists (so the colors differ) is
//     reported as conflicted.
//  3. Proximity: two different coordinates at Euclidean distance d with
//     0 < d < tolerance are both reported as near misses. The bound is strict,
//     so d == tolerance is never flagged.
//
// The minimum distance between the two residual lists is reported as well. It
// is diagnostic only.
//
// # Index
//
// A direct comparison of every pair costs |A|*|B| distance computations. The
// Index stores one list in a quadtree (paulmach/orb) and answers box queries
// of half-side tolerance, so only nearby candidates get an exact distance
// check. Membership is always decided on exact integer squared distance; the
// index only filters candidates. AnalyzeBrute keeps the direct comparison for
// verification.
package spatial
