package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthrecord-api/internal/aggregate"
	"healthrecord-api/internal/config"
	"healthrecord-api/internal/handler"
	"healthrecord-api/internal/logger"
	"healthrecord-api/internal/middleware"
	"healthrecord-api/internal/store"
)

func main() {
	log := logger.New("healthrecord-api")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store")
	}
	defer func() { _ = st.Close() }()
	if err := st.HealthCheck(ctx); err != nil {
		log.Fatal().Err(err).Msg("store health check")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("store ready")

	agg := aggregate.New(st, cfg.RecentHistoryLimit)
	h := handler.New(st, agg, cfg.JWTSecret)
	rl := middleware.NewRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: h.Router(log, rl),
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
