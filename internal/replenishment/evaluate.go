package replenishment

import (
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Evaluate runs the classifier, projector and advisor for every record, in
// input order. Lead times come from the record's supplier when known and from
// the record itself otherwise.
func (e *Engine) Evaluate(records []domain.InventoryRecord, leadTimes LeadTimes) []Evaluation {
	evaluations := make([]Evaluation, 0, len(records))
	for _, record := range records {
		projection := Project(record)
		leadTime := leadTimeFor(record, leadTimes)

		evaluations = append(evaluations, Evaluation{
			Record:       record,
			Status:       Classify(record),
			Projection:   projection,
			LeadTimeDays: leadTime,
			Suggestion:   e.Advise(record, projection, leadTime),
		})
	}
	return evaluations
}

// Summarize aggregates a snapshot into dashboard counters.
func (e *Engine) Summarize(records []domain.InventoryRecord, leadTimes LeadTimes) Summary {
	summary := Summary{
		TotalItems:       len(records),
		ByStatus:         make(map[StockStatus]int, 4),
		ReorderByUrgency: make(map[Urgency]int, 3),
		ReorderValue:     decimal.Zero,
	}

	for _, ev := range e.Evaluate(records, leadTimes) {
		summary.ByStatus[ev.Status]++

		switch ev.Status {
		case StatusOutOfStock, StatusCritical:
			summary.CriticalAlerts++
		case StatusLow:
			summary.WarningAlerts++
		}

		if ev.Suggestion.ShouldReorder {
			summary.ReorderCount++
			summary.ReorderByUrgency[ev.Suggestion.Urgency]++
			summary.ReorderValue = summary.ReorderValue.Add(ev.Suggestion.EstimatedCost)
		}
	}

	return summary
}
