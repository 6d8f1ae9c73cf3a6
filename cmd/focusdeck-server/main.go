package main

import (
	"log"
	"os"

	"github.com/focusdeck/focusdeck/internal/logger"
	"github.com/focusdeck/focusdeck/server"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://localhost:5432/focusdeck?sslmode=disable"
	}

	logConfig := logger.DefaultConfig()
	logConfig.Level = logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	logConfig.Console = true
	if err := logger.Init(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	srv, err := server.New(server.Config{
		DatabaseURL: dbURL,
		CheckoutURL: os.Getenv("CHECKOUT_URL"),
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("FocusDeck sync server starting on :%s", port)
	if err := srv.Start(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
