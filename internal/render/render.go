// Package render applies every variant's changes to the base map and paints
// the diagnostic map that shows how each changed pixel was classified.
package render

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blend"

	"github.com/ironsheep/mapmerge/internal/changeset"
	"github.com/ironsheep/mapmerge/internal/classify"
	"github.com/ironsheep/mapmerge/internal/raster"
)

// Stats counts what Render did with the changes it visited.
type Stats struct {
	Visited int `json:"visited"`
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

// Output holds the two rendered rasters.
type Output struct {
	Merged     *raster.Raster
	Diagnostic *raster.Raster
	Stats      Stats
}

// Render builds the merged and diagnostic rasters.
//
// Variants are visited in slice order and each variant's changes in
// extraction order. For every change:
//   - conflicted: the diagnostic pixel is painted Conflicted and the merged
//     pixel is left alone
//   - near miss: the diagnostic pixel is painted NearMiss and the change is
//     written to the merged raster
//   - clean: the diagnostic pixel is painted Clean and the change is written
//
// When two variants write the same coordinate, the later variant wins.
func Render(base *raster.Raster, sets []changeset.Set, result *classify.Result, palette Palette) (*Output, error) {
	out := &Output{
		Merged:     base.Clone(),
		Diagnostic: raster.NewFilled(base.Width(), base.Height(), palette.Background),
	}

	for _, s := range sets {
		for _, c := range s.Changes {
			if !base.Contains(c.Point) {
				return nil, fmt.Errorf("variant %s: change at %s outside %dx%d base",
					s.Name, c.Point, base.Width(), base.Height())
			}
			out.Stats.Visited++

			switch result.Of(c.Point) {
			case classify.Conflicted:
				out.Diagnostic.Set(c.Point, palette.Conflicted)
				out.Stats.Skipped++
				continue
			case classify.NearMiss:
				out.Diagnostic.Set(c.Point, palette.NearMiss)
			default:
				out.Diagnostic.Set(c.Point, palette.Clean)
			}
			out.Merged.Set(c.Point, c.Color)
			out.Stats.Applied++
		}
	}
	return out, nil
}

// Overlay blends the diagnostic colors over the base map so flagged pixels
// can be reviewed in context. Pixels the diagnostic map leaves at the palette
// background keep the base color. opacity is a percentage in [0, 1].
func Overlay(base, diagnostic *raster.Raster, palette Palette, opacity float64) (image.Image, error) {
	if err := raster.CheckDimensions(base, diagnostic); err != nil {
		return nil, err
	}

	marked := base.Clone()
	for y := 0; y < base.Height(); y++ {
		for x := 0; x < base.Width(); x++ {
			p := raster.Point{X: x, Y: y}
			if c := diagnostic.At(p); c != palette.Background {
				marked.Set(p, c)
			}
		}
	}

	return blend.Opacity(base.ToImage(), marked.ToImage(), opacity), nil
}
