package replenishment

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockStatus is the health of a single item. Lower values are more severe.
type StockStatus int

const (
	StatusOutOfStock StockStatus = iota
	StatusCritical
	StatusLow
	StatusHealthy
)

var stockStatusNames = [...]string{"out_of_stock", "critical", "low", "healthy"}

func (s StockStatus) String() string {
	if s < StatusOutOfStock || s > StatusHealthy {
		return "unknown"
	}
	return stockStatusNames[s]
}

func (s StockStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *StockStatus) UnmarshalText(text []byte) error {
	v, err := parseEnum("stock status", string(text), stockStatusNames[:])
	if err != nil {
		return err
	}
	*s = StockStatus(v)
	return nil
}

// Urgency buckets how soon a reorder is needed. Lower values are more urgent.
type Urgency int

const (
	UrgencyUrgent Urgency = iota
	UrgencySoon
	UrgencyPlanned
	UrgencyNone
)

var urgencyNames = [...]string{"urgent", "soon", "planned", "none"}

func (u Urgency) String() string {
	if u < UrgencyUrgent || u > UrgencyNone {
		return "unknown"
	}
	return urgencyNames[u]
}

func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Urgency) UnmarshalText(text []byte) error {
	v, err := parseEnum("urgency", string(text), urgencyNames[:])
	if err != nil {
		return err
	}
	*u = Urgency(v)
	return nil
}

// Severity ranks alerts. Critical sorts first.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityWarning
	SeverityInfo
)

var severityNames = [...]string{"critical", "warning", "info"}

func (s Severity) String() string {
	if s < SeverityCritical || s > SeverityInfo {
		return "unknown"
	}
	return severityNames[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := parseEnum("severity", string(text), severityNames[:])
	if err != nil {
		return err
	}
	*s = Severity(v)
	return nil
}

// CompareSeverity orders severities Critical, Warning, Info. It returns a
// negative number when a is more severe than b, zero when equal and a
// positive number otherwise.
func CompareSeverity(a, b Severity) int {
	return int(a) - int(b)
}

// AlertKind describes what triggered an alert.
type AlertKind int

const (
	KindOutOfStock AlertKind = iota
	KindLowStock
	KindBelowReorderPoint
)

var alertKindNames = [...]string{"out_of_stock", "low_stock", "below_reorder_point"}

func (k AlertKind) String() string {
	if k < KindOutOfStock || k > KindBelowReorderPoint {
		return "unknown"
	}
	return alertKindNames[k]
}

func (k AlertKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *AlertKind) UnmarshalText(text []byte) error {
	v, err := parseEnum("alert kind", string(text), alertKindNames[:])
	if err != nil {
		return err
	}
	*k = AlertKind(v)
	return nil
}

func parseEnum(what, raw string, names []string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for i, name := range names {
		if name == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, raw)
}

// LeadTimes maps a supplier ID to its fulfillment lead time in days.
type LeadTimes map[string]int

// LeadTimesFromSuppliers builds a LeadTimes lookup from supplier metadata.
// Suppliers with an empty ID are skipped; negative lead times become zero.
func LeadTimesFromSuppliers(suppliers []domain.Supplier) LeadTimes {
	lt := make(LeadTimes, len(suppliers))
	for _, s := range suppliers {
		if s.ID == "" {
			continue
		}
		lt[s.ID] = max(s.LeadTimeDays, 0)
	}
	return lt
}

// ReorderSuggestion is the advisor's decision for one item.
type ReorderSuggestion struct {
	ShouldReorder bool            `json:"should_reorder"`
	SuggestedQty  int             `json:"suggested_qty"`
	Urgency       Urgency         `json:"urgency"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

// StockAlert is a single monitoring alert. Alerts are produced fresh per
// evaluation and never stored by the engine.
type StockAlert struct {
	ItemID   string    `json:"item_id"`
	SKU      string    `json:"sku"`
	Name     string    `json:"name"`
	Severity Severity  `json:"severity"`
	Kind     AlertKind `json:"kind"`
	Message  string    `json:"message"`
}

// DraftLine is one item on a draft purchase order.
type DraftLine struct {
	ItemID    string          `json:"item_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LineTotal decimal.Decimal `json:"line_total"`
	Urgency   Urgency         `json:"urgency"`
}

// DraftPurchaseOrder groups reorder lines for a single supplier.
type DraftPurchaseOrder struct {
	ID                   uuid.UUID       `json:"id"`
	SupplierID           string          `json:"supplier_id"`
	Unassigned           bool            `json:"unassigned"`
	LeadTimeDays         int             `json:"lead_time_days"`
	Lines                []DraftLine     `json:"lines"`
	EstimatedTotal       decimal.Decimal `json:"estimated_total"`
	ExpectedDeliveryDate time.Time       `json:"expected_delivery_date"`
	Urgency              Urgency         `json:"urgency"`
}

// Evaluation bundles the per-item outputs of the classifier, projector and advisor.
type Evaluation struct {
	Record       domain.InventoryRecord `json:"record"`
	Status       StockStatus            `json:"status"`
	Projection   StockoutProjection     `json:"projection"`
	LeadTimeDays int                    `json:"lead_time_days"`
	Suggestion   ReorderSuggestion      `json:"suggestion"`
}

// Summary aggregates an evaluation for dashboards.
type Summary struct {
	TotalItems       int                 `json:"total_items"`
	ByStatus         map[StockStatus]int `json:"by_status"`
	CriticalAlerts   int                 `json:"critical_alerts"`
	WarningAlerts    int                 `json:"warning_alerts"`
	ReorderCount     int                 `json:"reorder_count"`
	ReorderByUrgency map[Urgency]int     `json:"reorder_by_urgency"`
	ReorderValue     decimal.Decimal     `json:"reorder_value"`
}
