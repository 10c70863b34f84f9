package server

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Serve runs srv for the lifetime of the fx application and shuts the
// application down when the client closes the input stream.
func Serve(srv *Server, log *zap.Logger, lifecycle fx.Lifecycle, shutdowner fx.Shutdowner) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("mcp server starting", zap.Strings("tools", ToolNames()))
			go func() {
				defer close(done)
				if err := srv.Run(ctx); err != nil {
					log.Error("mcp server stopped", zap.Error(err))
				}
				if err := shutdowner.Shutdown(); err != nil {
					log.Warn("shutdown failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			// Run may be blocked on a read that never returns.
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
