package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"mangashelf/internal/apperr"
	"mangashelf/internal/catalog"
	"mangashelf/internal/records"
	"mangashelf/pkg/config"
	"mangashelf/pkg/database"
)

// Snapshots the catalog detail document of every record on the shelf, in the
// format mirror-server serves.
func main() {
	var (
		configPath = flag.String("config", os.Getenv("MANGASHELF_CONFIG"), "path to a .yaml or .toml config file")
		outPath    = flag.String("out", "data/mirror.json", "output JSON path")
		delay      = flag.Duration("delay", 400*time.Millisecond, "pause between catalog requests")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Open(database.Config{Path: cfg.Database.Path, BusyTimeout: cfg.Database.BusyTimeout.Duration})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	ctx := context.Background()
	items, err := records.NewRepo(db).List(ctx)
	if err != nil {
		log.Fatalf("list records: %v", err)
	}

	client := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout.Duration, nil)

	docs := make([]json.RawMessage, 0, len(items))
	for i, m := range items {
		if i > 0 {
			time.Sleep(*delay)
		}
		raw, err := client.GetDetails(ctx, m.ExternalID)
		if errors.Is(err, apperr.ErrNotFound) {
			log.Printf("skip %q: catalog id %d not found", m.Name, m.ExternalID)
			continue
		}
		if err != nil {
			log.Fatalf("fetch %q: %v", m.Name, err)
		}
		docs = append(docs, raw)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("mkdir failed: %v", err)
	}
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		log.Fatalf("marshal failed: %v", err)
	}
	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		log.Fatalf("write failed: %v", err)
	}

	log.Printf("exported %d catalog entries to %s", len(docs), *outPath)
}
