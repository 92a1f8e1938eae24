package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/donamatch/donamatch/internal/adapters/postgres"
	"github.com/donamatch/donamatch/internal/pkg/config"
	"github.com/donamatch/donamatch/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|status>")
	}

	cfg, err := config.Load("donamatch-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		applied, err := db.Migrate(ctx, migrations.FS)
		for _, f := range applied {
			fmt.Printf("OK  %s\n", f)
		}
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		if len(applied) == 0 {
			log.Println("schema up to date")
			return
		}
		log.Println("all migrations applied")
	case "status":
		files, err := postgres.PendingOrder(migrations.FS)
		if err != nil {
			log.Fatalf("list: %v", err)
		}
		applied, err := db.AppliedVersions(ctx)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		for _, f := range files {
			state := "pending"
			if applied[f] {
				state = "applied"
			}
			fmt.Printf("%-8s %s\n", state, f)
		}
	case "down":
		log.Fatal("down migrations are not supported; restore from a backup")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
