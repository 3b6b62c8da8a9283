// Package classify runs pairwise proximity analysis across every pair of
// variants and sorts each changed coordinate into exactly one of three
// classes: conflicted, near miss, or clean.
package classify

import (
	"context"
	"encoding/json"
	"math"
	"runtime"
	"sync"

	"github.com/ironsheep/mapmerge/internal/changeset"
	"github.com/ironsheep/mapmerge/internal/raster"
	"github.com/ironsheep/mapmerge/internal/spatial"
)

// Classification is the review status of one coordinate.
type Classification int

const (
	// Unchanged means no variant touched the coordinate.
	Unchanged Classification = iota
	// Clean means the change has no conflict or near miss with another variant.
	Clean
	// NearMiss means another variant changed a different coordinate within tolerance.
	NearMiss
	// Conflicted means two variants changed the coordinate to different colors.
	Conflicted
)

func (c Classification) String() string {
	switch c {
	case Clean:
		return "clean"
	case NearMiss:
		return "near_miss"
	case Conflicted:
		return "conflicted"
	default:
		return "unchanged"
	}
}

// MarshalText encodes the classification by name.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// PairReport describes the comparison of one unordered pair of variants.
type PairReport struct {
	A           string
	B           string
	MinDistance float64
	Conflicted  int
	NearMiss    int
}

// MarshalJSON writes MinDistance as null when the pair had nothing to compare.
func (r PairReport) MarshalJSON() ([]byte, error) {
	var minDist *float64
	if !math.IsInf(r.MinDistance, 0) && !math.IsNaN(r.MinDistance) {
		d := math.Round(r.MinDistance*100) / 100
		minDist = &d
	}
	return json.Marshal(struct {
		A           string   `json:"a"`
		B           string   `json:"b"`
		MinDistance *float64 `json:"min_distance"`
		Conflicted  int      `json:"conflicted"`
		NearMiss    int      `json:"near_miss"`
	}{r.A, r.B, minDist, r.Conflicted, r.NearMiss})
}

// Options controls Classify.
type Options struct {
	// Tolerance is the exclusive distance below which changes from two
	// variants are near misses.
	Tolerance float64

	// Workers bounds the number of pairs analyzed at once. Zero means GOMAXPROCS.
	Workers int

	// Reporter, when set, receives one report per pair in (i, j) order after
	// all pairs are done. It cannot influence the result.
	Reporter func(PairReport)
}

// Result holds the three disjoint coordinate sets.
type Result struct {
	Conflicted PointSet
	NearMiss   PointSet
	Clean      PointSet
	Pairs      []PairReport
}

// Of returns the classification of p. Conflicted takes precedence over
// NearMiss, which takes precedence over Clean.
func (r *Result) Of(p raster.Point) Classification {
	switch {
	case r.Conflicted.Has(p):
		return Conflicted
	case r.NearMiss.Has(p):
		return NearMiss
	case r.Clean.Has(p):
		return Clean
	default:
		return Unchanged
	}
}

type pair struct{ i, j int }

// Classify compares every unordered pair of change sets once and partitions
// all changed coordinates. With fewer than two sets every change is clean.
func Classify(ctx context.Context, sets []changeset.Set, opts Options) (*Result, error) {
	var pairs []pair
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(pairs))

	reports := make([]PairReport, len(pairs))
	conflicted := make([]PointSet, workers)
	nearMiss := make([]PointSet, workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		conflicted[w] = NewPointSet()
		nearMiss[w] = NewPointSet()
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for k := range jobs {
				a, b := sets[pairs[k].i], sets[pairs[k].j]
				res := spatial.Analyze(a.Changes, b.Changes, opts.Tolerance)
				conflicted[w].Add(res.Conflicted...)
				nearMiss[w].Add(res.NearMiss...)
				reports[k] = PairReport{
					A:           a.Name,
					B:           b.Name,
					MinDistance: res.MinDistance,
					Conflicted:  len(res.Conflicted),
					NearMiss:    len(res.NearMiss),
				}
			}
		}(w)
	}

feed:
	for k := range pairs {
		select {
		case jobs <- k:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Conflicted: NewPointSet(),
		NearMiss:   NewPointSet(),
		Clean:      NewPointSet(),
		Pairs:      reports,
	}
	for w := 0; w < workers; w++ {
		result.Conflicted.Merge(conflicted[w])
		result.NearMiss.Merge(nearMiss[w])
	}

	for _, s := range sets {
		for _, c := range s.Changes {
			if !result.Conflicted.Has(c.Point) && !result.NearMiss.Has(c.Point) {
				result.Clean.Add(c.Point)
			}
		}
	}

	// A coordinate flagged both ways by different pairs is conflicted only.
	result.NearMiss.Remove(result.Conflicted)

	if opts.Reporter != nil {
		for _, r := range reports {
			opts.Reporter(r)
		}
	}
	return result, nil
}
