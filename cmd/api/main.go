package main

import (
	"fmt"
	"log"
	"receipts/internal/config"
	"receipts/internal/ledger"
	"receipts/internal/routes"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := ledger.OpenStore(cfg.DatabaseURL, cfg.LedgerPath)
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}

	router := routes.SetupRouter(store, cfg)

	serverAddr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Printf("Starting server on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
