package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ironsheep/mapmerge/internal/config"
	"github.com/ironsheep/mapmerge/internal/pipeline"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge every variant in the maps directory into the base map",
	Args:  cobra.NoArgs,
	RunE:  runMerge,
}

func init() {
	addMergeFlags(mergeCmd.Flags())
	rootCmd.AddCommand(mergeCmd)
}

func addMergeFlags(f *pflag.FlagSet) {
	def := config.Default()
	f.StringP("config", "c", "", "YAML configuration file; flags override its values")
	f.StringP("maps", "m", def.MapsDir, "Directory holding the base map and its variants")
	f.StringP("base", "b", def.BaseFile, "Base map file name inside the maps directory")
	f.StringSlice("exclude", def.Exclude, "Entry names in the maps directory that are not variants")
	f.StringP("out", "o", def.OutputDir, "Directory receiving the outputs")
	f.String("merged", def.MergedFile, "Merged map file name")
	f.String("log", def.LogFile, "Diagnostic map file name")
	f.Float64P("tolerance", "t", def.Tolerance, "Exclusive near-miss distance in pixels")
	f.Int("width", 0, "Required map width (0 takes the base map's)")
	f.Int("height", 0, "Required map height (0 takes the base map's)")
	f.BoolP("verbose", "v", false, "Log every pair comparison")
	f.IntP("workers", "w", def.Workers, "Concurrent extraction and pair analysis workers")
	f.String("overlay", "", "Optional overlay file name: diagnostic colors blended over the base map")
	f.Float64("opacity", def.OverlayOpacity, "Overlay opacity in [0, 1]")
	f.String("summary", "", "Optional JSON summary file name")
	f.String("review-crop", "", "Optional file name for an enlarged crop around every flagged pixel")
	f.Int("crop-margin", def.CropMargin, "Pixels of context around the review crop")
	f.Float64("crop-scale", def.CropScale, "Enlargement factor of the review crop")
}

// mergeConfig loads the config file, if any, and applies every flag the user
// set explicitly on top of it.
func mergeConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var err error
	flags.Visit(func(fl *pflag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "maps":
			cfg.MapsDir, err = flags.GetString(fl.Name)
		case "base":
			cfg.BaseFile, err = flags.GetString(fl.Name)
		case "exclude":
			cfg.Exclude, err = flags.GetStringSlice(fl.Name)
		case "out":
			cfg.OutputDir, err = flags.GetString(fl.Name)
		case "merged":
			cfg.MergedFile, err = flags.GetString(fl.Name)
		case "log":
			cfg.LogFile, err = flags.GetString(fl.Name)
		case "tolerance":
			cfg.Tolerance, err = flags.GetFloat64(fl.Name)
		case "width":
			cfg.Width, err = flags.GetInt(fl.Name)
		case "height":
			cfg.Height, err = flags.GetInt(fl.Name)
		case "verbose":
			cfg.Verbose, err = flags.GetBool(fl.Name)
		case "workers":
			cfg.Workers, err = flags.GetInt(fl.Name)
		case "overlay":
			cfg.OverlayFile, err = flags.GetString(fl.Name)
		case "opacity":
			cfg.OverlayOpacity, err = flags.GetFloat64(fl.Name)
		case "summary":
			cfg.SummaryFile, err = flags.GetString(fl.Name)
		case "review-crop":
			cfg.ReviewCropFile, err = flags.GetString(fl.Name)
		case "crop-margin":
			cfg.CropMargin, err = flags.GetInt(fl.Name)
		case "crop-scale":
			cfg.CropScale, err = flags.GetFloat64(fl.Name)
		}
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := mergeConfig(cmd.Flags())
	if err != nil {
		return err
	}

	logger := config.NewLogger()
	summary, err := pipeline.Run(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), summary)
	return nil
}

func printSummary(w io.Writer, s *pipeline.Summary) {
	fmt.Fprintf(w, "Merged %d variant(s) into %s (%dx%d)\n", len(s.Variants), s.Base, s.Width, s.Height)
	for _, v := range s.Variants {
		fmt.Fprintf(w, "  %-24s %d change(s)\n", v.Name, v.Changes)
	}
	fmt.Fprintf(w, "Conflicted: %d  Near miss: %d  Clean: %d\n", s.Conflicted, s.NearMiss, s.Clean)
	fmt.Fprintf(w, "Applied %d of %d change(s), skipped %d\n", s.Render.Applied, s.Render.Visited, s.Render.Skipped)
	for _, out := range s.Outputs {
		fmt.Fprintf(w, "Wrote %s\n", out)
	}
}
