package replenishment

import "github.com/andresuchdata/replenish/backend-go/internal/domain"

// Classify maps a record to its stock health. It never fails: negative stock
// is clamped to zero and an inverted threshold configuration is reported as
// critical so a misconfigured item stays visible.
func Classify(record domain.InventoryRecord) StockStatus {
	stock := clampedStock(record)

	switch {
	case stock == 0:
		return StatusOutOfStock
	case !thresholdsConsistent(record):
		return StatusCritical
	case stock <= record.MinStock:
		return StatusCritical
	case stock <= record.ReorderPoint:
		return StatusLow
	default:
		return StatusHealthy
	}
}

func clampedStock(record domain.InventoryRecord) int {
	return max(record.CurrentStock, 0)
}

// thresholdsConsistent reports whether 0 <= min <= reorder point <= max holds.
func thresholdsConsistent(record domain.InventoryRecord) bool {
	return record.MinStock >= 0 &&
		record.MinStock <= record.ReorderPoint &&
		record.ReorderPoint <= record.MaxStock
}
