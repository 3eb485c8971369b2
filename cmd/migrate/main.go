// Command migrate applies or reports the schema migrations without starting
// the API.
//
//	migrate up      apply pending migrations
//	migrate status  print the state of every migration
package main

import (
	"fmt"
	"os"

	"trailhaven/internal/config"
	"trailhaven/internal/database"
	"trailhaven/internal/logger"
	"trailhaven/migrations"

	"go.uber.org/zap"
)

func main() {
	log := logger.NewWithDefaults()
	defer log.Sync()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	dbService, err := database.New(config.Load().Backend)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	switch command {
	case "up":
		err = database.RunMigrations(dbService.DB(), migrations.FS, log)
	case "status":
		err = database.GetMigrationStatus(dbService.DB(), migrations.FS)
	default:
		fmt.Fprintf(os.Stderr, "usage: migrate [up|status]\n")
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}
