package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"compliancehub/training/internal/config"
	"compliancehub/training/internal/directory"
	internalhttp "compliancehub/training/internal/http"
	"compliancehub/training/internal/jobs"
	"compliancehub/training/internal/persist"
	"compliancehub/training/internal/render"
	"compliancehub/training/internal/store"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dir internalhttp.Directory
	if cfg.DatabaseURL != "" {
		pool, err := directory.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connection failed: %v", err)
		}
		defer pool.Close()
		dir = directory.NewStore(pool)
	}

	var persister store.Persister
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		persister = persist.NewRedis(redisClient, cfg.SheetNamespace)
	}

	sheetStore := store.New(persister)
	if err := sheetStore.Restore(ctx); err != nil {
		log.Fatalf("restore failed: %v", err)
	}

	server := internalhttp.NewServer(cfg, sheetStore, render.New(cfg.IssuerDomain), dir)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	jobs.StartReminderJob(ctx, cfg, sheetStore)

	go func() {
		log.Printf("training http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
