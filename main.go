package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"dtv-fixtures/internal/config"
	"dtv-fixtures/internal/jobs"
	"dtv-fixtures/internal/pkg/db"
	"dtv-fixtures/internal/pkg/log"
	"dtv-fixtures/internal/repository"
	"dtv-fixtures/internal/service"
	"dtv-fixtures/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error.Fatalf("config: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)

	var store service.PersonStore
	if cfg.SeedDB {
		pool, err := db.NewPool(cfg.DatabaseURL)
		if err != nil {
			log.Error.Fatalf("db: %v", err)
		}
		defer pool.Close()
		store = repository.NewPgPersonaRepo(pool)
	}

	if cfg.LoginPass == "" {
		log.Info.Println("LOGIN_PASS not set, web UI runs without login")
	}

	jobStore := jobs.NewStore()
	h := web.NewHandler(cfg, service.NewFixtureService(cfg, store), jobStore)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           web.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info.Printf("fixtures server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error.Printf("shutdown: %v", err)
	}
	jobStore.Wait()
}
