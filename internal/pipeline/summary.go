package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/mapmerge/internal/classify"
	"github.com/ironsheep/mapmerge/internal/config"
	"github.com/ironsheep/mapmerge/internal/render"
)

// VariantSummary reports one variant's change count.
type VariantSummary struct {
	Name    string `json:"name"`
	Changes int    `json:"changes"`
}

// Region is a rectangle in pixel coordinates, X2 and Y2 exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Summary describes a finished merge.
type Summary struct {
	Base         string                `json:"base"`
	Width        int                   `json:"width"`
	Height       int                   `json:"height"`
	Tolerance    float64               `json:"tolerance"`
	Variants     []VariantSummary      `json:"variants"`
	Conflicted   int                   `json:"conflicted"`
	NearMiss     int                   `json:"near_miss"`
	Clean        int                   `json:"clean"`
	Render       render.Stats          `json:"render"`
	Pairs        []classify.PairReport `json:"pairs"`
	ReviewRegion *Region               `json:"review_region,omitempty"`
	Outputs      []string              `json:"outputs,omitempty"`
}

func newSummary(cfg *config.Config, m *Merge) *Summary {
	s := &Summary{
		Base:       cfg.BasePath(),
		Width:      m.Base.Width(),
		Height:     m.Base.Height(),
		Tolerance:  cfg.Tolerance,
		Variants:   make([]VariantSummary, len(m.Sets)),
		Conflicted: m.Result.Conflicted.Len(),
		NearMiss:   m.Result.NearMiss.Len(),
		Clean:      m.Result.Clean.Len(),
		Render:     m.Output.Stats,
		Pairs:      m.Result.Pairs,
	}
	if s.Pairs == nil {
		s.Pairs = []classify.PairReport{}
	}
	for i, set := range m.Sets {
		s.Variants[i] = VariantSummary{Name: set.Name, Changes: set.Len()}
	}
	return s
}

// WriteFile writes s as indented JSON.
func (s *Summary) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}
