package repository

import (
	"context"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// ImportStats counts the rows written by a snapshot import.
type ImportStats struct {
	Suppliers int `json:"suppliers"`
	Items     int `json:"items"`
}

// SnapshotRepository loads supplier and inventory snapshots into the store
// read by InventoryRepository.
type SnapshotRepository interface {
	ImportSnapshot(ctx context.Context, suppliers []domain.Supplier, records []domain.InventoryRecord) (ImportStats, error)
}
