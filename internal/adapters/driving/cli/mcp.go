package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the assistant to MCP clients",
	Long: `Run a Model Context Protocol server offering the "ask" and
"answer_pending" tools and the pending question resources.

Stdio is used unless --http is given:
  ncdb mcp
  ncdb mcp --http 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, closeFn, err := newQuestions(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise question service: %w", err)
	}
	defer closeFn()

	server, err := mcp.NewServer(&mcp.Ports{Asker: svc, Questions: svc})
	if err != nil {
		return err
	}
	if mcpHTTPAddr != "" {
		return server.RunHTTP(ctx, mcpHTTPAddr)
	}
	return server.Run(ctx)
}
