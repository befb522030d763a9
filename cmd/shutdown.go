package cmd

import (
	"context"
	"os"
	"os/signal"
)

// setupShutdownHandler returns a context that is canceled when one of
// shutdownSignals arrives. The session stops at the next category or row
// boundary; whatever was already exported stays.
func setupShutdownHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, shutdownSignals...)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
