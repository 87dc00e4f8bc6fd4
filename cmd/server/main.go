package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"flipfight/internal/config"
	"flipfight/internal/game"
	"flipfight/internal/handlers"
	"flipfight/internal/logging"
	"flipfight/pkg/realtime"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env loaded: %v", err)
	}

	cfg, err := config.Load(os.Getenv("FLIPFIGHT_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	store := game.NewStore(nil, nil)
	defer store.Close()

	hub := realtime.NewHub(cfg.WS.SendBuffer)
	emitter := handlers.NewHubEmitter(hub, logger.Named("emit"))
	svc := game.NewService(store, emitter, game.Config{
		MismatchHideDelay: cfg.Game.MismatchHideDelay,
		FreezeDuration:    cfg.Game.FreezeDuration,
	}, logger.Named("game"))

	homeHandler := handlers.NewHomeHandler(store)
	gameHandler := handlers.NewGameHandler(svc, hub, emitter, cfg.WS, cfg.Server.AllowedOrigins, logger.Named("ws"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		homeHandler.RegisterRoutes(r)
	})
	gameHandler.RegisterRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       0,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
