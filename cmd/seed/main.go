// Command seed populates the document store with demo posts.
package main

import (
	"flag"
	"log"

	"newsdesk/internal/config"
	"newsdesk/internal/middleware"
	"newsdesk/internal/seed"
	"newsdesk/internal/storage"
)

func main() {
	count := flag.Int("count", 20, "number of posts to generate")
	maxDays := flag.Int("max-days", 90, "spread createdAt over this many days")
	dryRun := flag.Bool("dry-run", false, "build posts without writing them")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store := storage.New(cfg.DataFile, middleware.Logger)
	factory := seed.NewFactory(store, seed.Options{
		Count:   *count,
		MaxDays: *maxDays,
		DryRun:  *dryRun,
	})

	n, err := factory.SeedPosts()
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d posts into %s", n, cfg.DataFile)
}
