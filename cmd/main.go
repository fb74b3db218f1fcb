package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taxidispatch/api"
	"taxidispatch/config"
	"taxidispatch/pkg/bot"
	"taxidispatch/pkg/logger"
	"taxidispatch/service"
	"taxidispatch/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	pgStore, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	notifier := service.NopNotifier()
	if cfg.TelegramBotToken != "" {
		rdb := bot.NewRedisClient(cfg)
		defer rdb.Close()

		n, err := bot.NewNotifier(cfg, pgStore, bot.NewDispatchStore(rdb), log)
		if err != nil {
			log.Error("failed to initialize telegram notifier", logger.Error(err))
			os.Exit(1)
		}
		notifier = n
		log.Info("telegram notifier enabled", logger.Int64("channel_id", cfg.DriverChannelID))
	} else {
		log.Info("no telegram token configured, notifications disabled")
	}

	svc := service.New(pgStore, log, notifier, service.Fees{
		PerSeat:     cfg.FeePerSeat,
		LuggageFlat: cfg.LuggageFlatFee,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.AppPort),
		Handler: api.NewRouter(svc, log),
	}

	go func() {
		log.Info("dispatch API listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", logger.Error(err))
	}
}
