package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"mangashelf/internal/records"
	"mangashelf/pkg/config"
	"mangashelf/pkg/database"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("MANGASHELF_CONFIG"), "path to a .yaml or .toml config file")
		out        = flag.String("out", "data/mangas.csv", "output CSV path")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(database.Config{Path: cfg.Database.Path, BusyTimeout: cfg.Database.BusyTimeout.Duration})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create %s: %v", *out, err)
	}

	n, err := records.NewRepo(db).ExportCSV(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}

	log.Printf("exported %d records to %s", n, *out)
}
