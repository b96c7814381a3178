package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// ImportSnapshot upserts suppliers and inventory items in a single
// transaction. Rows are matched by id; items missing from the snapshot are
// left untouched.
func (r *snapshotRepository) ImportSnapshot(ctx context.Context, suppliers []domain.Supplier, records []domain.InventoryRecord) (repository.ImportStats, error) {
	var stats repository.ImportStats

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		supplierStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO suppliers (id, name, lead_time_days)
			VALUES ($1, $2, $3)
			ON CONFLICT (id)
			DO UPDATE SET
				name = EXCLUDED.name,
				lead_time_days = EXCLUDED.lead_time_days
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare supplier statement: %w", err)
		}
		defer supplierStmt.Close()

		for _, s := range suppliers {
			if s.ID == "" {
				continue
			}
			name := s.Name
			if name == "" {
				name = s.ID
			}
			if _, err := supplierStmt.ExecContext(ctx, s.ID, name, max(s.LeadTimeDays, 0)); err != nil {
				return fmt.Errorf("failed to upsert supplier %s: %w", s.ID, err)
			}
			stats.Suppliers++
		}

		itemStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO inventory_items (
				id, store_id, name, sku, current_stock, min_stock, max_stock,
				reorder_point, reorder_qty, avg_daily_sales, unit_cost,
				supplier_id, lead_time_days
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id)
			DO UPDATE SET
				store_id = EXCLUDED.store_id,
				name = EXCLUDED.name,
				sku = EXCLUDED.sku,
				current_stock = EXCLUDED.current_stock,
				min_stock = EXCLUDED.min_stock,
				max_stock = EXCLUDED.max_stock,
				reorder_point = EXCLUDED.reorder_point,
				reorder_qty = EXCLUDED.reorder_qty,
				avg_daily_sales = EXCLUDED.avg_daily_sales,
				unit_cost = EXCLUDED.unit_cost,
				supplier_id = EXCLUDED.supplier_id,
				lead_time_days = EXCLUDED.lead_time_days
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare item statement: %w", err)
		}
		defer itemStmt.Close()

		for _, rec := range records {
			_, err := itemStmt.ExecContext(
				ctx,
				rec.ID,
				rec.StoreID,
				rec.Name,
				rec.SKU,
				rec.CurrentStock,
				rec.MinStock,
				rec.MaxStock,
				rec.ReorderPoint,
				rec.ReorderQty,
				rec.AvgDailySales,
				rec.UnitCost,
				nullIfEmpty(rec.SupplierID),
				rec.LeadTimeDays,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert item %s: %w", rec.ID, err)
			}
			stats.Items++
		}

		return nil
	})
	if err != nil {
		return repository.ImportStats{}, err
	}

	log.Info().Int("suppliers", stats.Suppliers).Int("items", stats.Items).Msg("snapshot imported")
	return stats, nil
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
