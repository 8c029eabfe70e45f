package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	loadstate "github.com/focushive/loadstate/pkg"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := loadstate.LoadConfig("")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	store := loadstate.NewStatusStore(redisClient, logger)
	store.RecentCap = cfg.RecentCap
	broadcaster := loadstate.NewBroadcaster(redisClient, logger)

	service := loadstate.NewService(store, broadcaster, logger,
		loadstate.WithSuccessTTL(cfg.SuccessTTL),
		loadstate.WithExpiryPolicy(cfg.Policy()),
	)

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	go service.Run(runCtx)

	httpHandler := loadstate.NewHTTPHandler(service, logger)
	webSocketHandler := loadstate.NewWebSocketHandler(broadcaster, logger)

	r := http.NewServeMux()
	r.HandleFunc("GET /ws", webSocketHandler.ServeWebSocket)
	r.HandleFunc("GET /loading", httpHandler.AggregateLoading)
	r.HandleFunc("GET /operations", httpHandler.ListStatuses)
	r.HandleFunc("GET /operations/status", httpHandler.GetStatus)
	r.HandleFunc("GET /operations/recent", httpHandler.RecentUpdates)
	r.HandleFunc("DELETE /operations/status", httpHandler.ForgetStatus)
	r.HandleFunc("POST /operations/loading", httpHandler.SetLoading)
	r.HandleFunc("POST /operations/error", httpHandler.SetError)
	r.HandleFunc("POST /operations/success", httpHandler.SetSuccess)
	r.HandleFunc("POST /operations/clear", httpHandler.ClearState)
	r.HandleFunc("POST /operations/clear-all", httpHandler.ClearAllStates)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.ListenAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	srv.Shutdown(ctx)

	logger.Info("Shutting down")
}
