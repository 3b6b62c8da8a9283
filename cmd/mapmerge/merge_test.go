package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ironsheep/mapmerge/internal/config"
	"github.com/ironsheep/mapmerge/internal/pipeline"
	"github.com/ironsheep/mapmerge/internal/render"
)

func parseMergeFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("merge", pflag.ContinueOnError)
	addMergeFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("failed to parse %v: %v", args, err)
	}
	return f
}

func TestMergeConfig_Defaults(t *testing.T) {
	cfg, err := mergeConfig(parseMergeFlags(t))
	if err != nil {
		t.Fatalf("mergeConfig failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Default()) {
		t.Errorf("without flags the config should equal Default():\n got %+v", cfg)
	}
}

func TestMergeConfig_Flags(t *testing.T) {
	cfg, err := mergeConfig(parseMergeFlags(t,
		"--maps", "/data/maps",
		"-t", "0",
		"-v",
		"--exclude", "unused,old.bmp",
		"--width", "5632", "--height", "2048",
		"--summary", "summary.json",
	))
	if err != nil {
		t.Fatalf("mergeConfig failed: %v", err)
	}
	if cfg.MapsDir != "/data/maps" || cfg.Tolerance != 0 || !cfg.Verbose {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Exclude, []string{"unused", "old.bmp"}) {
		t.Errorf("Exclude: got %v", cfg.Exclude)
	}
	if cfg.Width != 5632 || cfg.Height != 2048 || cfg.SummaryFile != "summary.json" {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestMergeConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapmerge.yaml")
	body := "maps_dir: /from/file\ntolerance: 30\nmerged_file: merged.png\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := mergeConfig(parseMergeFlags(t, "--config", path, "--tolerance", "12"))
	if err != nil {
		t.Fatalf("mergeConfig failed: %v", err)
	}
	if cfg.MapsDir != "/from/file" || cfg.MergedFile != "merged.png" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Tolerance != 12 {
		t.Errorf("Tolerance: got %g, want flag value 12", cfg.Tolerance)
	}
}

func TestMergeConfig_MissingFile(t *testing.T) {
	if _, err := mergeConfig(parseMergeFlags(t, "--config", "/nonexistent.yaml")); err == nil {
		t.Error("mergeConfig should fail for a missing config file")
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &pipeline.Summary{
		Base:       "maps/base.bmp",
		Width:      10,
		Height:     8,
		Variants:   []pipeline.VariantSummary{{Name: "a.bmp", Changes: 3}},
		Conflicted: 1,
		NearMiss:   0,
		Clean:      2,
		Render:     render.Stats{Visited: 3, Applied: 2, Skipped: 1},
		Outputs:    []string{"output_map.bmp", "output_log.bmp"},
	})

	out := buf.String()
	for _, want := range []string{
		"Merged 1 variant(s) into maps/base.bmp (10x8)",
		"a.bmp",
		"Conflicted: 1  Near miss: 0  Clean: 2",
		"Applied 2 of 3 change(s), skipped 1",
		"Wrote output_log.bmp",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
