package changeset

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ironsheep/mapmerge/internal/raster"
)

var (
	white = raster.Color{255, 255, 255}
	red   = raster.Color{255, 0, 0}
	blue  = raster.Color{0, 0, 255}
)

func TestExtract(t *testing.T) {
	base := raster.NewFilled(8, 6, white)
	variant := base.Clone()
	variant.Set(raster.Point{X: 5, Y: 1}, red)
	variant.Set(raster.Point{X: 2, Y: 1}, blue)
	variant.Set(raster.Point{X: 0, Y: 4}, red)
	// Rewriting the base value is not a change.
	variant.Set(raster.Point{X: 7, Y: 5}, white)

	got, err := Extract(base, variant)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := []Change{
		{Point: raster.Point{X: 2, Y: 1}, Color: blue},
		{Point: raster.Point{X: 5, Y: 1}, Color: red},
		{Point: raster.Point{X: 0, Y: 4}, Color: red},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract:\n got %v\nwant %v", got, want)
	}
}

func TestExtract_Identical(t *testing.T) {
	base := raster.NewFilled(4, 4, white)
	got, err := Extract(base, base.Clone())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("identical rasters: got %d changes, want 0", len(got))
	}
}

func TestExtract_SingleChannelDifference(t *testing.T) {
	base := raster.NewFilled(2, 2, raster.Color{10, 10, 10})
	variant := base.Clone()
	variant.Set(raster.Point{X: 1, Y: 1}, raster.Color{10, 10, 11})

	got, err := Extract(base, variant)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d changes, want 1", len(got))
	}
}

func TestExtract_DimensionMismatch(t *testing.T) {
	_, err := Extract(raster.New(4, 4), raster.New(4, 5))
	if !errors.Is(err, raster.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestExtractAll_PreservesOrder(t *testing.T) {
	base := raster.NewFilled(10, 10, white)
	var variants []Named
	for i := 0; i < 7; i++ {
		v := base.Clone()
		for j := 0; j <= i; j++ {
			v.Set(raster.Point{X: j, Y: i}, red)
		}
		variants = append(variants, Named{Name: fmt.Sprintf("v%d.bmp", i), Raster: v})
	}

	sets, err := ExtractAll(context.Background(), base, variants, 3)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(sets) != len(variants) {
		t.Fatalf("got %d sets, want %d", len(sets), len(variants))
	}
	for i, s := range sets {
		if s.Name != variants[i].Name {
			t.Errorf("set %d: name %s, want %s", i, s.Name, variants[i].Name)
		}
		if s.Len() != i+1 {
			t.Errorf("set %d: %d changes, want %d", i, s.Len(), i+1)
		}
	}
}

func TestExtractAll_DimensionMismatchNamesVariant(t *testing.T) {
	base := raster.NewFilled(10, 10, white)
	variants := []Named{
		{Name: "ok.bmp", Raster: base.Clone()},
		{Name: "wide.bmp", Raster: raster.New(11, 10)},
	}

	_, err := ExtractAll(context.Background(), base, variants, 2)
	if !errors.Is(err, raster.ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
	if want := "variant wide.bmp"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should mention %q", err, want)
	}
}

func TestExtractAll_Cancelled(t *testing.T) {
	base := raster.NewFilled(4, 4, white)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractAll(ctx, base, []Named{{Name: "a", Raster: base.Clone()}}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestExtractAll_Empty(t *testing.T) {
	sets, err := ExtractAll(context.Background(), raster.New(2, 2), nil, 4)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("got %d sets, want 0", len(sets))
	}
}

func TestSet_Points(t *testing.T) {
	s := Set{Changes: []Change{
		{Point: raster.Point{X: 1, Y: 2}, Color: red},
		{Point: raster.Point{X: 3, Y: 4}, Color: blue},
	}}
	want := []raster.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}
	if got := s.Points(); !reflect.DeepEqual(got, want) {
		t.Errorf("Points: got %v, want %v", got, want)
	}
	if !s.Contains(Change{Point: raster.Point{X: 3, Y: 4}, Color: blue}) {
		t.Error("Contains should match an identical change")
	}
	if s.Contains(Change{Point: raster.Point{X: 3, Y: 4}, Color: red}) {
		t.Error("Contains should not match a different color")
	}
}
