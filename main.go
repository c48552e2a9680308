package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/townbeat/townbeat-go/config"
	"github.com/townbeat/townbeat-go/indexer"
	"github.com/townbeat/townbeat-go/logger"
	"github.com/townbeat/townbeat-go/middleware"
	"github.com/townbeat/townbeat-go/rabbitmq"
	"github.com/townbeat/townbeat-go/routes"
)

func main() {
	defer logger.L.Sync()
	log := logger.WithComponent("main")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	if err := cfg.Search.Ensure(context.Background()); err != nil {
		log.Fatal("search index setup failed", zap.Error(err))
	}

	// Mirror pipeline: event.* messages into the search index.
	consumer, err := rabbitmq.NewConsumer(cfg.AMQPURL)
	if err != nil {
		log.Fatal("rabbitmq consumer failed", zap.Error(err))
	}
	msgs, err := consumer.Consume()
	if err != nil {
		log.Fatal("rabbitmq consume failed", zap.Error(err))
	}
	idx := indexer.New(cfg.Collection("events"), cfg.Search)
	idx.Start(msgs)

	// Nightly safety net for anything the mirror pipeline missed.
	cr := cron.New()
	if _, err := cr.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := idx.Resync(ctx); err != nil {
			log.Warn("scheduled resync failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("resync schedule failed", zap.Error(err))
	}
	cr.Start()

	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	routes.SetupRoutes(r, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()
	log.Info("listening", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv.Shutdown(ctx)
	cr.Stop()
	consumer.Close()
	cfg.Close(ctx)
	log.Info("shutdown complete")
}
