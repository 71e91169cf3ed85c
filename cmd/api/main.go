package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/gorillago3318/portal/internal/config"
	"github.com/gorillago3318/portal/internal/database"
	"github.com/gorillago3318/portal/internal/database/migrations"
	"github.com/gorillago3318/portal/internal/jobs"
	"github.com/gorillago3318/portal/internal/queue"
	"github.com/gorillago3318/portal/internal/routes"
	"github.com/gorillago3318/portal/internal/services/whatsapp"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// The Redis front is optional; without it the queue falls back to
	// database polling.
	var jobQueue queue.QueueInterface
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		jobQueue = queue.NewRedisQueue(redis.NewClient(opts), db)
		log.Println("Job queue using Redis")
	} else {
		jobQueue = queue.NewQueue(db)
		log.Println("Job queue using database polling")
	}

	waClient := whatsapp.NewClient(cfg.WhatsApp)
	jobs.RegisterLeadNotificationJobHandlers(jobQueue, db, waClient)
	jobs.RegisterPasswordResetJobHandlers(jobQueue, db, waClient)

	jobQueue.StartProcessing()
	defer jobQueue.StopProcessing()

	if dbQueue, ok := jobQueue.(*queue.Queue); ok {
		worker := queue.NewWorker(db, dbQueue)
		worker.Start()
		defer worker.Stop()
	}

	routes.RegisterRoutes(router, db, cfg, jobQueue)

	fmt.Printf("Portal API server running on port %s\n", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
