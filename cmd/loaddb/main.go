// Command loaddb loads converted season dump files into the per-season card
// tables. Reloading the same file is safe: rows upsert on id.
//
//	loaddb -config config.toml -data ./data -seasons S1,S2,S3,S4
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/kractero/cardex/cardex"
	"github.com/kractero/cardex/cardex/database"
	"github.com/kractero/cardex/cardex/database/models"
	"github.com/kractero/cardex/cardex/dump"
	"github.com/kractero/cardex/cardex/logger"
)

const batchSize = 500

func main() {
	slog.SetDefault(slog.New(logger.NewHandler("loaddb")))

	configPath := flag.String("config", "config.toml", "path to config")
	dataDir := flag.String("data", ".", "directory containing cardlist_S<N>.jsonl files")
	seasons := flag.String("seasons", "S1,S2,S3,S4", "comma-separated seasons to load")
	flag.Parse()

	cfg, err := cardex.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	failed := false
	for _, season := range strings.Split(*seasons, ",") {
		season = strings.TrimSpace(season)
		if season == "" {
			continue
		}

		path := filepath.Join(*dataDir, fmt.Sprintf("cardlist_%s.jsonl", season))
		loaded, err := loadSeason(ctx, db, season, path)
		if err != nil {
			logger.LogError("Season load failed", err, slog.String("season", season))
			failed = true
			continue
		}
		slog.Info("Loaded season dump",
			slog.String("season", season),
			slog.String("table", models.SeasonTable(season)),
			slog.Int("cards", loaded))
	}
	if failed {
		os.Exit(1)
	}
}

func loadSeason(ctx context.Context, db *database.DB, season, path string) (int, error) {
	records, err := dump.ReadFile(path)
	if err != nil {
		return 0, err
	}

	cards := make([]*models.Card, 0, len(records))
	for _, record := range records {
		cards = append(cards, record.Card(season))
	}

	table := models.SeasonTable(season)
	total := 0

	// Batched upserts keep a full-season reload from holding one giant
	// statement open against the pool.
	for i := 0; i < len(cards); i += batchSize {
		end := i + batchSize
		if end > len(cards) {
			end = len(cards)
		}
		batch := cards[i:end]

		start := time.Now()
		res, err := db.BunDB().NewInsert().
			Model(&batch).
			ModelTableExpr("? AS c", bun.Ident(table)).
			On("CONFLICT (id) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("season = EXCLUDED.season").
			Set("type = EXCLUDED.type").
			Set("motto = EXCLUDED.motto").
			Set("category = EXCLUDED.category").
			Set("region = EXCLUDED.region").
			Set("flag = EXCLUDED.flag").
			Set("cardcategory = EXCLUDED.cardcategory").
			Set("population = EXCLUDED.population").
			Set("description = EXCLUDED.description").
			Set("badges = EXCLUDED.badges").
			Set("trophies = EXCLUDED.trophies").
			Exec(ctx)
		logger.LogQuery(fmt.Sprintf("upsert %d cards into %s", len(batch), table), time.Since(start), err)
		if err != nil {
			return total, err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += int(affected)
	}
	return total, nil
}
