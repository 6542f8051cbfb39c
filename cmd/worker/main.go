package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ceasor-elvis/stem-management-system/internal/audit"
	"github.com/ceasor-elvis/stem-management-system/internal/config"
	"github.com/ceasor-elvis/stem-management-system/internal/queue"
	"github.com/ceasor-elvis/stem-management-system/internal/store"
)

// Worker consumes lifecycle events and writes the audit trail.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var events queue.Queue
	if cfg.QueueBackend == "memory" {
		events = queue.NewInMemory(64)
	} else {
		events = queue.NewRedisQueue(redisClient.Client, "stem:lifecycle")
	}

	trail := audit.NewTrail(db.Client)

	messages, err := events.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for lifecycle events...")
	for evt := range messages {
		if evt.Action != "checkin" && evt.Action != "checkout" {
			continue
		}
		if err := trail.Append(ctx, evt); err != nil {
			log.Printf("audit append failed for record %s: %v", evt.RecordID, err)
			continue
		}
		log.Printf("audited %s for record %s (student %s)", evt.Action, evt.RecordID, evt.StudentID)
	}

	log.Println("worker stopped")
}
