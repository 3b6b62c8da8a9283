// Package pipeline runs one merge: it loads the base map and its variants,
// extracts and classifies their changes, renders the merged and diagnostic
// maps, and writes every configured output.
//
// Run computes everything in memory first. No file is written unless every
// input loaded and every step succeeded.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/mapmerge/internal/changeset"
	"github.com/ironsheep/mapmerge/internal/classify"
	"github.com/ironsheep/mapmerge/internal/config"
	"github.com/ironsheep/mapmerge/internal/raster"
	"github.com/ironsheep/mapmerge/internal/render"
)

// ErrNoVariants is returned when the maps directory holds no variant besides
// the base map.
var ErrNoVariants = errors.New("no changes to merge")

// LoadFunc reads one raster from disk. raster.Load and (*raster.Cache).Load
// both satisfy it.
type LoadFunc func(path string) (*raster.Raster, error)

// Merge is the in-memory result of a merge, before anything is written.
type Merge struct {
	Base    *raster.Raster
	Sets    []changeset.Set
	Result  *classify.Result
	Output  *render.Output
	Palette render.Palette
	Summary *Summary
}

// Run performs a complete merge described by cfg and writes its outputs.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Summary, error) {
	m, err := Prepare(ctx, cfg, logger, raster.Load)
	if err != nil {
		return nil, err
	}
	if err := m.Write(cfg, logger); err != nil {
		return nil, err
	}
	return m.Summary, nil
}

// Prepare loads, extracts, classifies and renders without writing any file.
// A nil load uses raster.Load.
func Prepare(ctx context.Context, cfg *config.Config, logger *slog.Logger, load LoadFunc) (*Merge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if load == nil {
		load = raster.Load
	}
	palette, err := render.ParsePalette(cfg.Palette)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing the base map.", "path", cfg.BasePath())
	base, err := load(cfg.BasePath())
	if err != nil {
		return nil, fmt.Errorf("loading base map: %w", err)
	}
	if cfg.Width != 0 && (base.Width() != cfg.Width || base.Height() != cfg.Height) {
		return nil, fmt.Errorf("base map %s: %w: want %dx%d, got %dx%d",
			cfg.BasePath(), raster.ErrDimensionMismatch, cfg.Width, cfg.Height, base.Width(), base.Height())
	}

	paths, err := raster.Discover(cfg.MapsDir, cfg.BaseFile, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoVariants
	}

	named := make([]changeset.Named, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := filepath.Base(p)
		logger.Info(fmt.Sprintf("Initializing %s.", name), "variant", name)
		v, err := load(p)
		if err != nil {
			return nil, fmt.Errorf("loading variant: %w", err)
		}
		if err := raster.CheckDimensions(base, v); err != nil {
			return nil, fmt.Errorf("variant %s: %w", name, err)
		}
		named = append(named, changeset.Named{Name: name, Raster: v})
	}

	sets, err := changeset.ExtractAll(ctx, base, named, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("extracting changes: %w", err)
	}
	for _, s := range sets {
		logger.Debug("extracted changes", "variant", s.Name, "changes", s.Len())
	}

	opts := classify.Options{Tolerance: cfg.Tolerance, Workers: cfg.Workers}
	if cfg.Verbose {
		opts.Reporter = pairReporter(logger, cfg.Tolerance)
	}
	result, err := classify.Classify(ctx, sets, opts)
	if err != nil {
		return nil, fmt.Errorf("classifying changes: %w", err)
	}

	out, err := render.Render(base, sets, result, palette)
	if err != nil {
		return nil, fmt.Errorf("rendering: %w", err)
	}

	m := &Merge{
		Base:    base,
		Sets:    sets,
		Result:  result,
		Output:  out,
		Palette: palette,
	}
	m.Summary = newSummary(cfg, m)
	logger.Info("merge complete",
		"variants", len(sets),
		"conflicted", m.Summary.Conflicted,
		"near_miss", m.Summary.NearMiss,
		"clean", m.Summary.Clean)
	return m, nil
}

// pairReporter logs each pair comparison, and the pair's minimum distance
// when it is below tolerance.
func pairReporter(logger *slog.Logger, tolerance float64) func(classify.PairReport) {
	return func(r classify.PairReport) {
		logger.Info(fmt.Sprintf("Comparing proximity for %s and %s.", r.A, r.B),
			"a", r.A, "b", r.B, "conflicted", r.Conflicted, "near_miss", r.NearMiss)
		if r.MinDistance < tolerance {
			logger.Info(fmt.Sprintf("%s and %s have a pixel distance of %g.", r.A, r.B, r.MinDistance),
				"a", r.A, "b", r.B, "distance", r.MinDistance)
		}
	}
}

type pendingOutput struct {
	path  string
	write func(path string) error
}

// Write saves the merged and diagnostic maps plus any optional outputs named
// in cfg. Each output is first written to a temporary file beside its
// destination; the temporary files are renamed into place only after all of
// them were written, and removed if any write fails.
func (m *Merge) Write(cfg *config.Config, logger *slog.Logger) error {
	pending := []pendingOutput{
		{cfg.OutputPath(cfg.MergedFile), func(p string) error { return raster.Save(p, m.Output.Merged) }},
		{cfg.OutputPath(cfg.LogFile), func(p string) error { return raster.Save(p, m.Output.Diagnostic) }},
	}

	if cfg.OverlayFile != "" {
		img, err := render.Overlay(m.Base, m.Output.Diagnostic, m.Palette, cfg.OverlayOpacity)
		if err != nil {
			return fmt.Errorf("building overlay: %w", err)
		}
		pending = append(pending, pendingOutput{cfg.OutputPath(cfg.OverlayFile), func(p string) error { return raster.SaveImage(p, img) }})
	}

	var region *Region
	if cfg.ReviewCropFile != "" {
		flagged := append(m.Result.Conflicted.Sorted(), m.Result.NearMiss.Sorted()...)
		if r, ok := raster.ReviewRegion(m.Base, flagged, cfg.CropMargin); ok {
			img, err := raster.Crop(m.Output.Diagnostic, r, cfg.CropScale)
			if err != nil {
				return fmt.Errorf("building review crop: %w", err)
			}
			pending = append(pending, pendingOutput{cfg.OutputPath(cfg.ReviewCropFile), func(p string) error { return raster.SaveImage(p, img) }})
			region = &Region{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
		} else {
			logger.Info("no flagged pixels, skipping review crop")
		}
	}

	summary := *m.Summary
	summary.ReviewRegion = region
	summary.Outputs = nil
	for _, p := range pending {
		summary.Outputs = append(summary.Outputs, p.path)
	}
	if path := cfg.OutputPath(cfg.SummaryFile); path != "" {
		summary.Outputs = append(summary.Outputs, path)
		pending = append(pending, pendingOutput{path, summary.WriteFile})
	}

	if err := commit(pending); err != nil {
		return err
	}
	for _, p := range pending {
		logger.Debug("wrote output", "path", p.path)
	}
	*m.Summary = summary
	return nil
}

// commit writes every output to a temporary sibling file, then renames them
// all into place. On failure no temporary file is left behind.
func commit(outputs []pendingOutput) error {
	staged := make([]string, 0, len(outputs))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, o := range outputs {
		tmp, err := tempSibling(o.path)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmp)
		if err := o.write(tmp); err != nil {
			cleanup()
			return fmt.Errorf("writing output %s: %w", o.path, err)
		}
	}

	for i, o := range outputs {
		if err := os.Rename(staged[i], o.path); err != nil {
			cleanup()
			return fmt.Errorf("writing output %s: %w", o.path, err)
		}
	}
	return nil
}

// tempSibling reserves a hidden file next to path. The extension is kept
// because the image encoder is chosen from it.
func tempSibling(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	f, err := os.CreateTemp(dir, "."+stem+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary output: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to create temporary output: %w", err)
	}
	return name, nil
}
