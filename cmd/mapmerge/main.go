package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/mapmerge/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mapmerge",
	Short: "Merge edited variants of a raster map and flag conflicting edits",
	Long: `mapmerge applies the edits of every variant map in a directory to the
shared base map. Pixels two variants change to different colors are left at
the base color; edits closer than the tolerance to another variant's edit are
applied but flagged. A diagnostic map records the outcome of every edit.

Environment variables:
  MAPMERGE_LOG_LEVEL=debug    Enable debug logging`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrNoVariants):
		fmt.Fprintln(os.Stderr, err)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
