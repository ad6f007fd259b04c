package main

import (
	"context"
	"log"
	"net/http"

	"chatline/backend/internal/api/handler"
	"chatline/backend/internal/chathub"
	"chatline/backend/internal/config"
	"chatline/backend/internal/models"
	"chatline/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(config.PostgresDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: config.RedisAddr(),
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Chat{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Chatline backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewService(db, rdb)

	hub := chathub.NewHub(s)
	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, s)

	r.GET("/auth/token", h.GetToken)
	r.GET("/ws", h.ServeWebSocket)

	r.POST("/messages", h.CreateMessage)
	r.GET("/messages/:chatId", h.GetMessages)
	r.GET("/messages/:chatId/unread", h.GetUnreadMessages)
	r.PATCH("/messages/:chatId/:messageId/read", h.MarkMessageRead)
	r.PATCH("/messages/:chatId/:messageId", h.UpdateMessage)
	r.DELETE("/messages/:messageId", h.RemoveMessage)

	r.POST("/chats", h.CreateChat)
	r.GET("/chats", h.GetChats)
	r.GET("/chats/:chatId", h.GetChat)
	r.DELETE("/chats/:chatId", h.DeleteChat)
	r.POST("/chats/:chatId/read", h.ResetUnread)

	server := &http.Server{
		Addr:           config.ListenAddr(),
		Handler:        r,
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
