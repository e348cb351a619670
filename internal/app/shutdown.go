package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"job-links/internal/observability"
)

// GracefulShutdown returns a context that is cancelled on SIGINT or SIGTERM.
// The crawl has no resume point, so cancelling simply aborts the run.
func GracefulShutdown(parent context.Context, logger *observability.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Warn("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
