package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go-hiring-backend/config"
	"go-hiring-backend/internal/migrate"
	"go-hiring-backend/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	list := flag.Bool("list", false, "print the embedded migration versions and exit")
	flag.Parse()

	if *list {
		versions, err := migrate.Versions()
		if err != nil {
			log.Fatalf("read migrations: %v", err)
		}
		for _, v := range versions {
			fmt.Println(v)
		}
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	applied, err := migrate.Run(ctx, db)
	if err != nil {
		logger.Log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("migrations complete", "applied", applied)
}
