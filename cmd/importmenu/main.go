// cmd/importmenu/main.go: loads the default menu, or a JSON file of items,
// into the menu_items table. Existing ids are overwritten.
// Usage: go run ./cmd/importmenu [-file menu.json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"messpos/internal/config"
	"messpos/internal/infra"
	"messpos/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	file := flag.String("file", "", "JSON array of menu items (default: built-in menu)")
	flag.Parse()

	items := defaultMenu()
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("read menu file")
		}
		items = nil
		if err := json.Unmarshal(raw, &items); err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("parse menu file")
		}
		for i := range items {
			items[i].Active = true
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	if err := repository.NewMenuRepository(db).Upsert(context.Background(), items); err != nil {
		log.Fatal().Err(err).Msg("menu import failed")
	}
	log.Info().Int("items", len(items)).Msg("menu imported")
}
