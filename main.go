package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chatly-service/internal/auth"
	"chatly-service/internal/db"
	"chatly-service/internal/handlers"
	"chatly-service/internal/middleware"
	"chatly-service/internal/observability"
	"chatly-service/internal/presence"
	"chatly-service/internal/rabbitmq"
	"chatly-service/internal/repositories"
	"chatly-service/internal/telemetry"
	"chatly-service/internal/ws"
)

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracer := telemetry.InitTracer("chatly-service", getEnv("OTLP_ENDPOINT", ""))
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "chatly.events"))
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))
	if reason := rabbitmq.PublisherNoopReason(publisher); reason != "" {
		log.Printf("audit publisher degraded: %s", reason)
	}

	observability.SetPublisher(publisher)

	emitter := telemetry.NewAuditEmitter(
		publisher,
		getEnv("AUDIT_ROUTING_KEY", "audit.chatly"),
		"chatly-service",
		getEnv("ENVIRONMENT", "dev"),
	)

	verifier := auth.NewVerifier(getEnv("JWT_SECRET", "dev-secret"))

	userRepo := repositories.NewUserRepo(database)
	requestRepo := repositories.NewRequestRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub()
	tracker := presence.NewTracker(getEnv("REDIS_ADDR", ""), "chatly", 5*time.Minute)

	requestHandler := handlers.NewRequestHandler(requestRepo, messageRepo, userRepo, hub)
	messageHandler := handlers.NewMessageHandler(requestRepo, messageRepo, hub)
	userHandler := handlers.NewUserHandler(userRepo)
	wsHandler := ws.NewHandler(hub, verifier, tracker)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("chatly-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)
	writeLimit := middleware.RateLimit(120, 30)

	router.GET("/users", authMiddleware, userHandler.ListUsers)

	router.POST("/requests", authMiddleware, writeLimit, requestHandler.SendRequest)
	router.POST("/requests/:request_id/accept", authMiddleware, writeLimit, requestHandler.Accept)
	router.POST("/requests/:request_id/reject", authMiddleware, writeLimit, requestHandler.Reject)
	router.GET("/requests/pending", authMiddleware, requestHandler.ListPending)

	router.POST("/messages", authMiddleware, writeLimit, messageHandler.Send)
	router.GET("/messages/:user_id/:other_id", authMiddleware, messageHandler.History)
	router.POST("/messages/reset/:user_id/:other_id", authMiddleware, writeLimit, messageHandler.Reset)

	router.GET("/ws", wsHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, emitter, hub, getEnv("DEBUG_ENDPOINTS", "") == "true")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
