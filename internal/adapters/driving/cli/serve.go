package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driven/vector/flat"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/server"
	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the query service",
	Long: `Starts the TCP query service. Each connection carries one UTF-8
question and receives one answer, after which the connection is closed.

The service starts even without a knowledge base and answers in degraded
mode until one is built. With --watch the index bundle is reloaded when
"ncdb ingest" replaces it.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the index when the bundle changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stack, err := newAnswers(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise answer service: %w", err)
	}
	defer stack.close()

	srv := server.New(stack.answers, server.Config{
		Addr:             cfg.ServerAddr(),
		MaxRequestBytes:  cfg.Server.MaxRequestBytes,
		MaxResponseBytes: cfg.Server.MaxResponseBytes,
	})
	if err := srv.Listen(ctx); err != nil {
		if errors.Is(err, domain.ErrAlreadyRunning) {
			return fmt.Errorf("another query service is already listening on %s: %w", cfg.ServerAddr(), err)
		}
		return err
	}

	if serveWatch && stack.handle != nil {
		if err := startWatcher(ctx, stack.handle, cfg.Index.Path); err != nil {
			logger.Warn("Index watch disabled: %v", err)
		}
	}

	cmd.Printf("Query service listening on %s\n", srv.Addr())
	return srv.Serve(ctx)
}

func startWatcher(ctx context.Context, handle *flat.Handle, path string) error {
	w, err := flat.NewWatcher(handle, path)
	if err != nil {
		return err
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			logger.Warn("Index watcher stopped: %v", err)
		}
	}()
	logger.Info("Watching %s for new bundles", path)
	return nil
}
