package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"mangashelf/internal/records"
	"mangashelf/pkg/config"
	"mangashelf/pkg/database"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("MANGASHELF_CONFIG"), "path to a .yaml or .toml config file")
		in         = flag.String("in", "data/mangas.csv", "input CSV path")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Open(database.Config{Path: cfg.Database.Path, BusyTimeout: cfg.Database.BusyTimeout.Duration})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open %s: %v", *in, err)
	}
	defer f.Close()

	res, err := records.NewRepo(db).ImportCSV(ctx, f)
	if err != nil {
		log.Fatalf("import failed after %d records: %v", res.Created, err)
	}

	log.Printf("imported %d records from %s (%d already present)", res.Created, *in, res.Skipped)
}
