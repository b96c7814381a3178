package replenishment

import (
	"slices"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnassignedSupplierID is the supplier ID of the bucket collecting reorder
// lines whose supplier is missing or unknown.
const UnassignedSupplierID = "unassigned"

// draftNamespace seeds deterministic draft IDs.
var draftNamespace = uuid.MustParse("6f1c1e3a-6a55-4f0e-9d7c-3f5b8d0a2c41")

// Consolidate groups every item that needs a reorder into one draft purchase
// order per supplier.
//
// Lines keep the relative order of the input records. Orders are sorted by
// their most urgent line; orders with equal urgency keep the order in which
// their supplier first appears in the input. now is the evaluation time used
// for expected delivery dates.
func (e *Engine) Consolidate(records []domain.InventoryRecord, leadTimes LeadTimes, now time.Time) []DraftPurchaseOrder {
	var (
		orders = make([]DraftPurchaseOrder, 0)
		index  = make(map[string]int)
	)

	for _, ev := range e.Evaluate(records, leadTimes) {
		if !ev.Suggestion.ShouldReorder {
			continue
		}

		supplierID, known := resolveSupplier(ev.Record, leadTimes)
		i, ok := index[supplierID]
		if !ok {
			i = len(orders)
			index[supplierID] = i
			orders = append(orders, DraftPurchaseOrder{
				SupplierID:     supplierID,
				Unassigned:     !known,
				LeadTimeDays:   ev.LeadTimeDays,
				Lines:          make([]DraftLine, 0, 1),
				EstimatedTotal: decimal.Zero,
				Urgency:        UrgencyNone,
			})
		}

		order := &orders[i]
		order.Lines = append(order.Lines, DraftLine{
			ItemID:    ev.Record.ID,
			SKU:       ev.Record.SKU,
			Name:      ev.Record.Name,
			Quantity:  ev.Suggestion.SuggestedQty,
			UnitCost:  unitCost(ev.Record),
			LineTotal: ev.Suggestion.EstimatedCost,
			Urgency:   ev.Suggestion.Urgency,
		})
		order.EstimatedTotal = order.EstimatedTotal.Add(ev.Suggestion.EstimatedCost)
		order.Urgency = min(order.Urgency, ev.Suggestion.Urgency)
		// The unassigned bucket has no supplier lead time; it arrives with its slowest line.
		order.LeadTimeDays = max(order.LeadTimeDays, ev.LeadTimeDays)
	}

	for i := range orders {
		orders[i].ExpectedDeliveryDate = now.AddDate(0, 0, orders[i].LeadTimeDays)
		orders[i].ID = draftID(orders[i], now)
	}

	slices.SortStableFunc(orders, func(a, b DraftPurchaseOrder) int {
		return int(a.Urgency) - int(b.Urgency)
	})
	return orders
}

// resolveSupplier returns the bucket a record belongs to and whether its
// supplier is known.
func resolveSupplier(record domain.InventoryRecord, leadTimes LeadTimes) (string, bool) {
	if record.SupplierID == "" {
		return UnassignedSupplierID, false
	}
	if _, ok := leadTimes[record.SupplierID]; !ok {
		return UnassignedSupplierID, false
	}
	return record.SupplierID, true
}

// leadTimeFor prefers the supplier's lead time and falls back to the record's own.
func leadTimeFor(record domain.InventoryRecord, leadTimes LeadTimes) int {
	if days, ok := leadTimes[record.SupplierID]; ok && record.SupplierID != "" {
		return max(days, 0)
	}
	return max(record.LeadTimeDays, 0)
}

// draftID names a draft by its supplier, evaluation time and the set of items
// it orders. Re-evaluating the same snapshot reproduces the ID; drafts for the
// same supplier over different items never share one.
func draftID(order DraftPurchaseOrder, now time.Time) uuid.UUID {
	items := make([]string, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, line.ItemID)
	}
	slices.Sort(items)

	name := order.SupplierID + "|" + now.UTC().Format(time.RFC3339Nano) + "|" + strings.Join(items, "\x00")
	return uuid.NewSHA1(draftNamespace, []byte(name))
}
