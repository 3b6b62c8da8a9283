package render

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/mapmerge/internal/raster"
)

// Palette holds the diagnostic map colors.
type Palette struct {
	Background raster.Color
	Clean      raster.Color
	NearMiss   raster.Color
	Conflicted raster.Color
}

// DefaultPalette paints unchanged pixels white, clean changes green, near
// misses yellow and conflicts red.
var DefaultPalette = Palette{
	Background: raster.Color{255, 255, 255},
	Clean:      raster.Color{0, 255, 0},
	NearMiss:   raster.Color{255, 255, 0},
	Conflicted: raster.Color{255, 0, 0},
}

// PaletteSpec is the hex form of a Palette, as found in config files.
// Empty fields keep the DefaultPalette color.
type PaletteSpec struct {
	Background string `yaml:"background" json:"background,omitempty"`
	Clean      string `yaml:"clean" json:"clean,omitempty"`
	NearMiss   string `yaml:"near_miss" json:"near_miss,omitempty"`
	Conflicted string `yaml:"conflicted" json:"conflicted,omitempty"`
}

// ParsePalette converts hex colors such as "#FF0000" into a Palette.
func ParsePalette(ps PaletteSpec) (Palette, error) {
	p := DefaultPalette
	fields := []struct {
		name string
		hex  string
		dst  *raster.Color
	}{
		{"background", ps.Background, &p.Background},
		{"clean", ps.Clean, &p.Clean},
		{"near_miss", ps.NearMiss, &p.NearMiss},
		{"conflicted", ps.Conflicted, &p.Conflicted},
	}
	for _, f := range fields {
		if f.hex == "" {
			continue
		}
		c, err := ParseHex(f.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("palette %s: %w", f.name, err)
		}
		*f.dst = c
	}
	return p, nil
}

// ParseHex parses "#RRGGBB" (or "#RGB") into a Color.
func ParseHex(s string) (raster.Color, error) {
	if len(s) > 0 && s[0] != '#' {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return raster.Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return raster.Color{r, g, b}, nil
}

// Hex formats c as "#rrggbb".
func Hex(c raster.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}
