package replenishment

import (
	"fmt"
	"slices"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// GenerateAlerts classifies and projects every record and emits at most one
// alert per item. Alerts are ordered Critical, Warning, Info; items with the
// same severity keep their input order.
func (e *Engine) GenerateAlerts(records []domain.InventoryRecord) []StockAlert {
	alerts := make([]StockAlert, 0, len(records))
	for _, record := range records {
		if alert, ok := alertFor(record, Classify(record), Project(record)); ok {
			alerts = append(alerts, alert)
		}
	}

	slices.SortStableFunc(alerts, func(a, b StockAlert) int {
		return CompareSeverity(a.Severity, b.Severity)
	})
	return alerts
}

func alertFor(record domain.InventoryRecord, status StockStatus, projection StockoutProjection) (StockAlert, bool) {
	alert := StockAlert{
		ItemID: record.ID,
		SKU:    record.SKU,
		Name:   record.Name,
	}
	label := displayName(record)

	switch status {
	case StatusOutOfStock:
		alert.Severity = SeverityCritical
		alert.Kind = KindOutOfStock
		alert.Message = fmt.Sprintf("%s is out of stock", label)
	case StatusCritical:
		alert.Severity = SeverityCritical
		alert.Kind = KindLowStock
		alert.Message = fmt.Sprintf("%s is at a critical level: %d units left, %s",
			label, clampedStock(record), describeRunway(projection))
	case StatusLow:
		alert.Severity = SeverityWarning
		alert.Kind = KindBelowReorderPoint
		alert.Message = fmt.Sprintf("%s is below its reorder point: %d units on hand, reorder point %d",
			label, clampedStock(record), record.ReorderPoint)
	default:
		return StockAlert{}, false
	}

	return alert, true
}

func describeRunway(projection StockoutProjection) string {
	days, ok := projection.DaysRemaining()
	if !ok {
		return "no recent sales"
	}
	if days == 1 {
		return "about 1 day remaining"
	}
	return fmt.Sprintf("about %d days remaining", days)
}

func displayName(record domain.InventoryRecord) string {
	switch {
	case record.Name != "" && record.SKU != "":
		return fmt.Sprintf("%s (%s)", record.Name, record.SKU)
	case record.Name != "":
		return record.Name
	case record.SKU != "":
		return record.SKU
	default:
		return record.ID
	}
}
