package replenishment

import (
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	defaultUrgentWithinDays = 3
	defaultSoonWithinDays   = 7
)

// Policy holds the day thresholds used to bucket reorder urgency.
type Policy struct {
	UrgentWithinDays int // days remaining at or below which a reorder is urgent
	SoonWithinDays   int // days remaining at or below which a reorder is due soon
}

// DefaultPolicy returns the standard 3/7 day urgency tiers.
func DefaultPolicy() Policy {
	return Policy{
		UrgentWithinDays: defaultUrgentWithinDays,
		SoonWithinDays:   defaultSoonWithinDays,
	}
}

func (p Policy) normalized() Policy {
	if p.UrgentWithinDays <= 0 || p.SoonWithinDays < p.UrgentWithinDays {
		return DefaultPolicy()
	}
	return p
}

// Engine runs the replenishment rules over inventory snapshots. It holds
// only its policy, so a single Engine may be shared across goroutines.
type Engine struct {
	policy Policy
}

// NewEngine creates an engine. An invalid policy falls back to DefaultPolicy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy.normalized()}
}

// Policy returns the effective policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Advise decides whether an item should be reordered now, and how much.
//
// A reorder triggers when the projected stockout falls within the lead time
// or when stock is at or below the reorder point. The suggested quantity tops
// the item up to its max stock but never drops below the configured batch.
func (e *Engine) Advise(record domain.InventoryRecord, projection StockoutProjection, leadTimeDays int) ReorderSuggestion {
	stock := clampedStock(record)

	runsOutBeforeDelivery := projection.Within(max(leadTimeDays, 0))
	atReorderPoint := stock <= record.ReorderPoint
	if !runsOutBeforeDelivery && !atReorderPoint {
		return ReorderSuggestion{
			Urgency:       UrgencyNone,
			EstimatedCost: decimal.Zero,
		}
	}

	qty := max(record.ReorderQty, record.MaxStock-stock, 0)

	return ReorderSuggestion{
		ShouldReorder: true,
		SuggestedQty:  qty,
		Urgency:       e.urgency(projection),
		EstimatedCost: unitCost(record).Mul(decimal.NewFromInt(int64(qty))),
	}
}

func (e *Engine) urgency(projection StockoutProjection) Urgency {
	switch {
	case projection.Within(e.policy.UrgentWithinDays):
		return UrgencyUrgent
	case projection.Within(e.policy.SoonWithinDays):
		return UrgencySoon
	default:
		return UrgencyPlanned
	}
}

// unitCost guards the valuation against negative costs from upstream data.
func unitCost(record domain.InventoryRecord) decimal.Decimal {
	if record.UnitCost.IsNegative() {
		return decimal.Zero
	}
	return record.UnitCost
}
