// Package changeset extracts the sparse list of pixels a variant map changed
// relative to the base map.
package changeset

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ironsheep/mapmerge/internal/raster"
)

// Change records that a variant sets Point to Color, which differs from the base.
type Change struct {
	Point raster.Point `json:"point"`
	Color raster.Color `json:"color"`
}

// Set is every Change one variant made, in extraction order.
type Set struct {
	Name    string   `json:"name"`
	Changes []Change `json:"changes"`
}

// Named pairs a variant raster with the identifier it was loaded from.
type Named struct {
	Name   string
	Raster *raster.Raster
}

// Extract returns every coordinate where variant differs from base, scanning
// rows top to bottom and each row left to right.
func Extract(base, variant *raster.Raster) ([]Change, error) {
	if err := raster.CheckDimensions(base, variant); err != nil {
		return nil, err
	}

	var changes []Change
	for y := 0; y < base.Height(); y++ {
		for x := 0; x < base.Width(); x++ {
			p := raster.Point{X: x, Y: y}
			if c := variant.At(p); c != base.At(p) {
				changes = append(changes, Change{Point: p, Color: c})
			}
		}
	}
	return changes, nil
}

// ExtractAll runs Extract for every variant using up to workers goroutines.
// The result has one Set per variant, in the same order as variants. The
// first error stops the remaining work and is returned with the variant name.
func ExtractAll(ctx context.Context, base *raster.Raster, variants []Named, workers int) ([]Set, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(variants))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sets := make([]Set, len(variants))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				v := variants[i]
				changes, err := Extract(base, v.Raster)
				if err != nil {
					fail(fmt.Errorf("variant %s: %w", v.Name, err))
					continue
				}
				sets[i] = Set{Name: v.Name, Changes: changes}
			}
		}()
	}

feed:
	for i := range variants {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

// Points returns the coordinates of every change in s, in extraction order.
func (s Set) Points() []raster.Point {
	pts := make([]raster.Point, len(s.Changes))
	for i, c := range s.Changes {
		pts[i] = c.Point
	}
	return pts
}

// Len returns the number of changes in s.
func (s Set) Len() int { return len(s.Changes) }

// Contains reports whether s holds a change with the same coordinate and color as c.
func (s Set) Contains(c Change) bool {
	for _, o := range s.Changes {
		if o == c {
			return true
		}
	}
	return false
}
