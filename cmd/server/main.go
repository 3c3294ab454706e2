package main

import (
	"flag"
	"fmt"
	"log"

	"planora-api/internal/config"
	"planora-api/internal/database"
	"planora-api/internal/realtime"
	"planora-api/internal/routes"
)

func main() {
	configPath := flag.String("config", "planora.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to init database: ", err)
	}

	hub := realtime.NewHub()
	ginRoutes := routes.Setup(cfg, db, hub)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Planora API starting on %s (db=%s)", addr, cfg.Database.Path)

	if err := ginRoutes.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
