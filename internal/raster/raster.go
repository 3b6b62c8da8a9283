package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"
)

// ErrDimensionMismatch is returned when two rasters that must share a size do not.
var ErrDimensionMismatch = errors.New("raster dimensions differ")

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Color is an 8-bit RGB triple.
type Color [3]uint8

// RGBA implements color.Color. The result is always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: 0xff}.RGBA()
}

// Raster is a Width x Height grid of colors stored in row-major order.
type Raster struct {
	width  int
	height int
	pix    []Color
}

// New creates a black raster of the given size.
func New(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		width:  width,
		height: height,
		pix:    make([]Color, width*height),
	}
}

// NewFilled creates a raster of the given size with every pixel set to c.
func NewFilled(width, height int, c Color) *Raster {
	r := New(width, height)
	for i := range r.pix {
		r.pix[i] = c
	}
	return r
}

// FromImage converts any decoded image into a Raster. The image origin is
// moved to (0,0) and alpha is discarded.
func FromImage(img image.Image) *Raster {
	src := imaging.Clone(img)
	b := src.Bounds()
	r := New(b.Dx(), b.Dy())
	for y := 0; y < r.height; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < r.width; x++ {
			o := x * 4
			r.pix[y*r.width+x] = Color{row[o], row[o+1], row[o+2]}
		}
	}
	return r
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.height }

// Bounds returns the raster extent as an image.Rectangle anchored at (0,0).
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// Contains reports whether p lies inside the raster.
func (r *Raster) Contains(p Point) bool {
	return p.X >= 0 && p.X < r.width && p.Y >= 0 && p.Y < r.height
}

// At returns the color at p. It panics if p is outside the raster.
func (r *Raster) At(p Point) Color {
	return r.pix[r.offset(p)]
}

// Set writes c at p. It panics if p is outside the raster.
func (r *Raster) Set(p Point, c Color) {
	r.pix[r.offset(p)] = c
}

func (r *Raster) offset(p Point) int {
	if !r.Contains(p) {
		panic(fmt.Sprintf("raster: point %s outside %dx%d", p, r.width, r.height))
	}
	return p.Y*r.width + p.X
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	c := &Raster{width: r.width, height: r.height, pix: make([]Color, len(r.pix))}
	copy(c.pix, r.pix)
	return c
}

// SameSize reports whether r and o have identical dimensions.
func (r *Raster) SameSize(o *Raster) bool {
	return r.width == o.width && r.height == o.height
}

// ToImage converts the raster to an opaque *image.NRGBA.
func (r *Raster) ToImage() *image.NRGBA {
	img := image.NewNRGBA(r.Bounds())
	for y := 0; y < r.height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < r.width; x++ {
			c := r.pix[y*r.width+x]
			o := x * 4
			row[o], row[o+1], row[o+2], row[o+3] = c[0], c[1], c[2], 0xff
		}
	}
	return img
}

// CheckDimensions returns an error wrapping ErrDimensionMismatch when got does
// not have the same size as want.
func CheckDimensions(want, got *Raster) error {
	if want.SameSize(got) {
		return nil
	}
	return fmt.Errorf("%w: expected %dx%d, got %dx%d",
		ErrDimensionMismatch, want.width, want.height, got.width, got.height)
}

// SortPoints orders pts row by row, left to right within a row.
func SortPoints(pts []Point) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Y != pts[j].Y {
			return pts[i].Y < pts[j].Y
		}
		return pts[i].X < pts[j].X
	})
}
