package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/mapmerge/internal/config"
	"github.com/ironsheep/mapmerge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server on stdin/stdout",
	Long: `serve exposes the merge tools over the Model Context Protocol. Requests
are read from stdin and responses written to stdout; logs go to stderr.
Configure it in your MCP client (e.g., Claude Desktop).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := config.NewLogger()
	logger.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)

	return server.New(Version, logger).Run(cmd.Context())
}
