package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/cache"
	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
	"github.com/andresuchdata/replenish/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey{}, sqlx.NewDb(db, "pgx"))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*sqlx.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sqlx.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*sqlx.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database is not initialized")
	}
	return db, nil
}

func runImport(c *cli.Context) error {
	cfg := config.Load()

	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	records, suppliers, err := readSnapshot(c, cfg)
	if err != nil {
		return err
	}

	store := postgres.Wrap(db)
	svc := service.NewReplenishmentService(
		repository.NewInventoryRepository(db),
		postgres.NewPORepository(store),
		newEngine(cfg),
		service.WithCache(importCache(cfg)),
		service.WithSnapshots(postgres.NewSnapshotRepository(store)),
	)

	stats, err := svc.ImportSnapshot(c.Context, suppliers, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "imported %d suppliers and %d items\n", stats.Suppliers, stats.Items)
	return nil
}

// importCache connects to the cache the server reads from so an import can
// drop its stale entries.
func importCache(cfg *config.Config) cache.ReplenishmentCache {
	if !cfg.Cache.Enabled {
		return cache.NewNoopReplenishmentCache()
	}
	c, err := cache.NewReplenishmentCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, cached alerts may be stale until they expire")
		return cache.NewNoopReplenishmentCache()
	}
	return c
}

func runDBDrafts(c *cli.Context) error {
	cfg := config.Load()

	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	now := evaluationTime(c)
	svc := service.NewReplenishmentService(
		repository.NewInventoryRepository(db),
		postgres.NewPORepository(postgres.Wrap(db)),
		newEngine(cfg),
		service.WithClock(func() time.Time { return now }),
	)

	filter := domain.InventoryFilter{StoreIDs: c.Int64Slice("store-id")}

	var drafts []replenishment.DraftPurchaseOrder
	if c.Bool("save") {
		drafts, err = svc.ConfirmDrafts(c.Context, filter, nil)
	} else {
		drafts, err = svc.GetDraftPurchaseOrders(c.Context, filter)
	}
	if err != nil {
		return err
	}

	return exportDrafts(c, cfg, drafts, now)
}
