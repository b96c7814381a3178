package repository

import (
	"context"

	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
)

// PurchaseOrderRepository persists draft purchase orders a user has confirmed.
type PurchaseOrderRepository interface {
	SaveDrafts(ctx context.Context, orders []replenishment.DraftPurchaseOrder) error
}
