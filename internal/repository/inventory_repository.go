package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// InventoryRepository loads read-only inventory snapshots and supplier metadata.
type InventoryRepository interface {
	ListInventory(ctx context.Context, filter domain.InventoryFilter) ([]domain.InventoryRecord, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	ListStoreIDs(ctx context.Context) ([]int64, error)
}

type inventoryRepository struct {
	db *sqlx.DB
}

func NewInventoryRepository(db *sqlx.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) ListInventory(ctx context.Context, filter domain.InventoryFilter) ([]domain.InventoryRecord, error) {
	query := `
		SELECT
			i.id,
			i.name,
			i.sku,
			i.store_id,
			i.current_stock,
			i.min_stock,
			i.max_stock,
			i.reorder_point,
			i.reorder_qty,
			i.avg_daily_sales,
			i.unit_cost,
			COALESCE(i.supplier_id, '') AS supplier_id,
			i.lead_time_days
		FROM inventory_items i
		WHERE 1=1
	`

	where, args := buildInventoryConditions(filter)
	if len(where) > 0 {
		query += " AND " + strings.Join(where, " AND ")
	}
	// Stable ordering keeps alert ties and draft lines deterministic.
	query += " ORDER BY i.store_id, i.id"

	records := make([]domain.InventoryRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("error listing inventory: %w", err)
	}

	return records, nil
}

func buildInventoryConditions(filter domain.InventoryFilter) ([]string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
		argCounter = 1
	)

	if len(filter.StoreIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("i.store_id = ANY($%d::bigint[])", argCounter))
		args = append(args, pq.Array(filter.StoreIDs))
		argCounter++
	}

	if len(filter.SupplierIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("i.supplier_id = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.SupplierIDs))
		argCounter++
	}

	if len(filter.SKUs) > 0 {
		conditions = append(conditions, fmt.Sprintf("i.sku = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.SKUs))
	}

	return conditions, args
}

func (r *inventoryRepository) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	query := `
		SELECT id, name, lead_time_days
		FROM suppliers
		ORDER BY id
	`

	suppliers := make([]domain.Supplier, 0)
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, fmt.Errorf("error listing suppliers: %w", err)
	}

	return suppliers, nil
}

func (r *inventoryRepository) ListStoreIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT store_id
		FROM inventory_items
		ORDER BY store_id
	`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("error listing stores: %w", err)
	}

	return ids, nil
}
