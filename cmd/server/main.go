package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/roomcast/roomcast/internal/audit"
	"github.com/roomcast/roomcast/internal/broker"
	"github.com/roomcast/roomcast/internal/config"
	"github.com/roomcast/roomcast/internal/database"
	"github.com/roomcast/roomcast/internal/handler"
	"github.com/roomcast/roomcast/internal/hub"
	"github.com/roomcast/roomcast/internal/middleware"
	"github.com/roomcast/roomcast/internal/repository"
	"github.com/roomcast/roomcast/internal/service"
	"github.com/roomcast/roomcast/pkg/logger"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	if err := logger.Init(cfg.Environment == "development"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Moderation audit trail
	auditLog, err := audit.NewLog(cfg.AuditLogPath)
	if err != nil {
		log.Fatalf("Failed to initialize audit log: %v", err)
	}
	defer auditLog.Close()

	// Redis event broker: the seam between moderation and fan-out
	redisBroker, err := broker.NewRedisEventBroker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize Redis broker: %v", err)
	}
	defer redisBroker.Close()

	// Initialize repositories
	roomRepo := repository.NewRoomRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)

	// Initialize services
	roomService := service.NewRoomService(roomRepo, redisBroker, nil)
	presenceService := service.NewPresenceService(userRepo, redisBroker)
	userService := service.NewUserService(userRepo, roomRepo, redisBroker, presenceService)
	moderationService := service.NewModerationService(messageRepo, roomRepo, redisBroker, auditLog)

	// Room session broadcaster
	sessionHub := hub.NewHub()
	events, err := redisBroker.Subscribe()
	if err != nil {
		log.Fatalf("Failed to subscribe to broker: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessionHub.Run(ctx, events)

	// Initialize handlers
	roomHandler := handler.NewRoomHandler(roomService, userService)
	messageHandler := handler.NewMessageHandler(moderationService)
	wsHandler := handler.NewWebSocketHandler(sessionHub, roomService, userService, moderationService, presenceService)

	// Setup Gin router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.HSTS(cfg.Environment == "production"))

	// Health check
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"message":   "roomcast backend running",
			"timestamp": time.Now().UTC(),
		})
	})

	// Room management; token-guarded when ADMIN_JWT_SECRET is set
	managed := router.Group("/api/rooms")
	managed.Use(middleware.AdminAuth(cfg.AdminJWTSecret))
	{
		managed.POST("/create", roomHandler.CreateRoom)
	}

	router.POST("/api/rooms/join", roomHandler.JoinRoom)
	router.GET("/api/rooms/:roomCode/pending-users", roomHandler.PendingUsers)
	router.PATCH("/api/rooms/approve-user/:userId", roomHandler.ApproveUser)
	router.GET("/api/rooms/:roomCode/all-users", roomHandler.AllUsers)

	router.DELETE("/api/messages/delete/:messageId", messageHandler.DeleteMessage)

	// WebSocket connection
	router.GET("/ws", wsHandler.HandleWebSocket)

	// Start server
	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
