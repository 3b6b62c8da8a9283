package raster

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ReviewRegion returns the bounding box of pts expanded by margin on every
// side and clipped to the raster. ok is false when pts is empty.
func ReviewRegion(r *Raster, pts []Point, margin int) (region image.Rectangle, ok bool) {
	if len(pts) == 0 {
		return image.Rectangle{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	region = image.Rect(minX-margin, minY-margin, maxX+margin+1, maxY+margin+1)
	return region.Intersect(r.Bounds()), true
}

// Crop extracts region from r and scales it by scale.
//
// Scaling uses nearest-neighbor so single flagged pixels stay crisp when the
// crop is enlarged for review.
func Crop(r *Raster, region image.Rectangle, scale float64) (image.Image, error) {
	bounds := r.Bounds()
	if !region.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", region, bounds)
	}
	if region.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: x1 must be < x2, y1 must be < y2", region)
	}

	cropped := imaging.Crop(r.ToImage(), region)

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.NearestNeighbor)
	}

	return cropped, nil
}
