package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
)

const upsertDraftHeaderQuery = `
	INSERT INTO purchase_order_drafts (
		id, supplier_id, unassigned, lead_time_days, estimated_total,
		expected_delivery_date, urgency, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	ON CONFLICT (id)
	DO UPDATE SET
		supplier_id = EXCLUDED.supplier_id,
		unassigned = EXCLUDED.unassigned,
		lead_time_days = EXCLUDED.lead_time_days,
		estimated_total = EXCLUDED.estimated_total,
		expected_delivery_date = EXCLUDED.expected_delivery_date,
		urgency = EXCLUDED.urgency,
		updated_at = NOW()
`

const insertDraftLineQuery = `
	INSERT INTO purchase_order_draft_lines (
		draft_id, line_number, item_id, sku, name,
		quantity, unit_cost, line_total, urgency
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type poRepository struct {
	db *DB
}

func NewPORepository(db *DB) repository.PurchaseOrderRepository {
	return &poRepository{db: db}
}

// SaveDrafts stores draft orders and their lines. Draft IDs are deterministic,
// so saving the same evaluation twice replaces the earlier copy.
func (r *poRepository) SaveDrafts(ctx context.Context, orders []replenishment.DraftPurchaseOrder) error {
	if len(orders) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		lineStmt, err := tx.PrepareContext(ctx, insertDraftLineQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare line statement: %w", err)
		}
		defer lineStmt.Close()

		for _, order := range orders {
			// 1. Upsert the header
			if _, err := tx.ExecContext(ctx, upsertDraftHeaderQuery, draftHeaderArgs(order)...); err != nil {
				return fmt.Errorf("failed to upsert draft %s: %w", order.ID, err)
			}

			// 2. Replace its lines
			if _, err := tx.ExecContext(ctx, `DELETE FROM purchase_order_draft_lines WHERE draft_id = $1`, order.ID); err != nil {
				return fmt.Errorf("failed to clear lines for draft %s: %w", order.ID, err)
			}

			for i, args := range draftLineArgs(order) {
				if _, err := lineStmt.ExecContext(ctx, args...); err != nil {
					return fmt.Errorf("failed to insert line %d of draft %s: %w", i+1, order.ID, err)
				}
			}
		}

		return nil
	})
}

// draftHeaderArgs binds upsertDraftHeaderQuery. The unassigned bucket is
// stored with a NULL supplier.
func draftHeaderArgs(order replenishment.DraftPurchaseOrder) []any {
	supplierID := sql.NullString{}
	if !order.Unassigned {
		supplierID = nullIfEmpty(order.SupplierID)
	}

	return []any{
		order.ID,
		supplierID,
		order.Unassigned,
		order.LeadTimeDays,
		order.EstimatedTotal,
		order.ExpectedDeliveryDate,
		order.Urgency.String(),
	}
}

// draftLineArgs binds insertDraftLineQuery once per line. Line numbers start
// at 1 and follow the draft's line order.
func draftLineArgs(order replenishment.DraftPurchaseOrder) [][]any {
	rows := make([][]any, 0, len(order.Lines))
	for i, line := range order.Lines {
		rows = append(rows, []any{
			order.ID,
			i + 1,
			line.ItemID,
			line.SKU,
			line.Name,
			line.Quantity,
			line.UnitCost,
			line.LineTotal,
			line.Urgency.String(),
		})
	}
	return rows
}
