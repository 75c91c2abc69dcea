package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/catalog"
	"mangashelf/internal/logging"
)

func main() {
	var (
		dataPath = flag.String("data", "data/mirror.json", "JSON array of catalog detail documents")
		addr     = flag.String("addr", ":9000", "listen address")
		prefix   = flag.String("prefix", "/v4/manga", "path the catalog base URL points at")
	)
	flag.Parse()

	logger, _, err := logging.New(logging.Options{Level: "info", Format: "text"})
	if err != nil {
		log.Fatal(err)
	}

	mirror, err := catalog.LoadMirror(*dataPath)
	if err != nil {
		log.Fatalf("load mirror: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.Middleware(logger))
	mirror.RegisterRoutes(router.Group(*prefix))

	logger.Info("catalog mirror listening", "addr", *addr, "entries", mirror.Len(),
		"base_url", "http://localhost"+*addr+*prefix)
	if err := router.Run(*addr); err != nil {
		log.Fatal(err)
	}
}
