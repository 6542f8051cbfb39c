package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ceasor-elvis/stem-management-system/internal/auth"
	"github.com/ceasor-elvis/stem-management-system/internal/config"
	"github.com/ceasor-elvis/stem-management-system/internal/handler"
	"github.com/ceasor-elvis/stem-management-system/internal/httpmiddleware"
	"github.com/ceasor-elvis/stem-management-system/internal/photostore"
	"github.com/ceasor-elvis/stem-management-system/internal/queue"
	"github.com/ceasor-elvis/stem-management-system/internal/record"
	"github.com/ceasor-elvis/stem-management-system/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	var (
		records  record.Store
		accounts auth.Accounts
		db       *store.DB
	)

	if cfg.StoreBackend == "memory" {
		log.Println("using in-memory stores (dev mode)")
		records = record.NewMemoryStore()
		mem := auth.NewMemoryAccounts()
		if err := mem.Seed(auth.Account{
			ID:    "dev-admin",
			Email: "admin@example.com",
			Name:  "Dev Admin",
			Role:  auth.RoleAdmin,
		}, "admin"); err != nil {
			return err
		}
		accounts = mem
	} else {
		var err error
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		records = record.NewPostgresStore(db.Client)
		accounts = auth.NewPostgresAccounts(db.Client)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var events queue.Queue
	if cfg.QueueBackend == "memory" {
		events = queue.NewInMemory(64)
	} else {
		events = queue.NewRedisQueue(redisClient.Client, "stem:lifecycle")
	}

	// Cloudinary client (nil when not configured)
	var uploader photostore.Uploader
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		uploader = photostore.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	lifecycle := record.NewService(records, uploader, cfg.UploadConcurrency, cfg.UploadTimeout)

	h := &handler.Handler{
		Lifecycle:     lifecycle,
		Queries:       record.NewQueries(records),
		Accounts:      accounts,
		Uploader:      uploader,
		Events:        events,
		JWTIssuer:     cfg.JWTIssuer,
		JWTSigningKey: cfg.JWTSigningKey,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		DBHealthy: func(ctx context.Context) bool {
			return db == nil || db.Client.PingContext(ctx) == nil
		},
		RedisHealthy: redisClient.Healthy,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.CORS())
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
