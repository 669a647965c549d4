package main

import (
	"log"
	"os"
	"path/filepath"

	"todo-tracker-api/internal/config"
	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/discord"
	"todo-tracker-api/internal/jobs"
	"todo-tracker-api/internal/notify"
	"todo-tracker-api/internal/realtime"
	"todo-tracker-api/internal/resolver"
	"todo-tracker-api/internal/routes"
)

func main() {
	cfg := config.Load()

	// Make sure the database directory exists
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal("Failed to create data directory: ", err)
		}
	}

	// Init database
	database.InitDB(cfg.DatabasePath)
	db := database.GetDB()

	res := resolver.New(db)
	discordClient := discord.New(cfg)
	hub := realtime.NewHub()

	notifier := notify.Multi{
		&notify.DiscordDispatcher{
			Client:          discordClient,
			Resolver:        res,
			NotifyChannelID: cfg.NotifyChannelID,
			PanelChannelID:  cfg.PanelChannelID,
			Timezone:        cfg.Timezone,
		},
		&notify.HubDispatcher{Hub: hub},
	}

	runner := jobs.NewRunner(db, res, notifier, cfg)
	if err := runner.Start(); err != nil {
		log.Fatal("Failed to start background jobs: ", err)
	}
	defer runner.Stop()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(routes.Deps{
		Cfg:      cfg,
		Resolver: res,
		Discord:  discordClient,
		Notifier: notifier,
		Hub:      hub,
	})

	addr := ":" + cfg.Port
	log.Printf("Server starting on %s", addr)
	if err := ginRoutes.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
