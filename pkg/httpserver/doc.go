// Package httpserver runs an http.Handler with sane timeouts and graceful,
// context-driven shutdown.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns nil after a clean shutdown. Listen failures wrap ErrStart and
// shutdown failures wrap ErrShutdown. HealthHandler serves liveness and
// readiness probes; LogRequests is a request logging middleware for chi.
package httpserver
