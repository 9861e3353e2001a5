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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/saif-raza-001/pharmastream/config"
	"github.com/saif-raza-001/pharmastream/engine"
	"github.com/saif-raza-001/pharmastream/models"
)

const defaultPort = "8080"

func main() {
	godotenv.Load()

	logger := config.NewLogger()

	db := config.OpenDatabaseWithRetry(config.DatabaseConfigFromEnv())
	if err := models.MigrateTables(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	eng := engine.New(db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Outbox dispatcher: publishes committed document events after commit.
	// Redis and Pub/Sub are both optional in local dev.
	_, locker := config.NewRedisLocker()
	if topic := config.NewPubSubTopic(ctx); topic != nil {
		dispatcher := engine.NewOutboxDispatcher(db, logger, &engine.PubSubPublisher{Topic: topic}, locker)
		go dispatcher.Run(ctx)
	} else {
		log.Printf("pubsub not configured; outbox rows accumulate unpublished")
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Correlation-Id"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(correlationMiddleware())

	registerRoutes(router, eng)

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// correlationMiddleware tags every request with an id that flows into logs.
func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Correlation-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("correlation_id", id)
		c.Writer.Header().Set("X-Correlation-Id", id)
		c.Next()
	}
}
