// Command seed imports a YAML shop catalog into one guild.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"guild-economy-api/internal/catalog"
	"guild-economy-api/internal/config"
	"guild-economy-api/internal/repository"
	"guild-economy-api/internal/service"
	"guild-economy-api/pkg/logger"
)

func main() {
	guildID := flag.String("guild", "", "Guild id to seed")
	path := flag.String("file", "shop.yaml", "Path to the catalog file")
	dryRun := flag.Bool("dry-run", false, "Validate the catalog without writing")
	flag.Parse()

	if *guildID == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -guild <id> [-file shop.yaml] [-dry-run]")
		os.Exit(2)
	}

	cfg := config.MustLoad()
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	cat, err := catalog.Load(*path)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Infof("Loaded %d item(s) from %s", len(cat.Items), *path)
	if *dryRun {
		return
	}

	repo, err := repository.Open(cfg.Store, log)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	eco, err := service.NewEconomy(repo, service.NewOptions(cfg, log))
	if err != nil {
		_ = repo.Close()
		log.Fatalf("Failed to initialize economy: %v", err)
	}
	defer eco.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	items, err := catalog.Import(ctx, eco.Shop, *guildID, cat)
	if err != nil {
		log.Errorf("Import stopped after %d item(s): %v", len(items), err)
		_ = eco.Close()
		os.Exit(1)
	}
	for _, it := range items {
		log.Infof("#%d %s (%d)", it.ID, it.Name, it.Cost)
	}
	log.Infof("Seeded guild %s", *guildID)
}
