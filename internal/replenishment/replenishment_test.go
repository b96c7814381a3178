package replenishment

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

func record(id string, stock, minStock, reorderPoint, maxStock int, velocity float64) domain.InventoryRecord {
	return domain.InventoryRecord{
		ID:            id,
		Name:          "Item " + id,
		SKU:           "SKU-" + id,
		CurrentStock:  stock,
		MinStock:      minStock,
		ReorderPoint:  reorderPoint,
		MaxStock:      maxStock,
		ReorderQty:    10,
		AvgDailySales: velocity,
		UnitCost:      decimal.NewFromInt(2),
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name   string
		rec    domain.InventoryRecord
		expect StockStatus
	}{
		{"zero stock", record("a", 0, 30, 50, 200, 3.8), StatusOutOfStock},
		{"negative stock is clamped", record("a", -4, 30, 50, 200, 1), StatusOutOfStock},
		{"at min stock", record("a", 30, 30, 50, 200, 1), StatusCritical},
		{"below min stock", record("a", 15, 20, 30, 100, 4.2), StatusCritical},
		{"just above min", record("a", 31, 30, 50, 200, 1), StatusLow},
		{"at reorder point", record("a", 50, 30, 50, 200, 1), StatusLow},
		{"above reorder point", record("a", 180, 50, 100, 400, 5.2), StatusHealthy},
		{"reorder point above max", record("a", 500, 10, 300, 200, 1), StatusCritical},
		{"min above reorder point", record("a", 500, 60, 50, 1000, 1), StatusCritical},
		{"negative min stock", record("a", 500, -1, 50, 1000, 1), StatusCritical},
		{"inverted but empty", record("a", 0, 60, 50, 10, 1), StatusOutOfStock},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.rec); got != tc.expect {
				t.Errorf("expected %s, got %s", tc.expect, got)
			}
		})
	}
}

func TestClassify_MonotonicInStock(t *testing.T) {
	prev := StatusOutOfStock
	for stock := 0; stock <= 120; stock++ {
		got := Classify(record("m", stock, 20, 50, 100, 1))
		if got < prev {
			t.Fatalf("status regressed from %s to %s at stock %d", prev, got, stock)
		}
		prev = got
	}
	if prev != StatusHealthy {
		t.Errorf("expected healthy at the top of the range, got %s", prev)
	}
}

func TestProject(t *testing.T) {
	testCases := []struct {
		name      string
		stock     int
		velocity  float64
		days      int
		unbounded bool
	}{
		{"out of stock", 0, 3.8, 0, false},
		{"floor division", 15, 4.2, 3, false},
		{"exact division", 100, 5, 20, false},
		{"fractional velocity", 1, 0.3, 3, false},
		{"zero velocity", 40, 0, 0, true},
		{"zero velocity and stock", 0, 0, 0, true},
		{"negative velocity", 40, -2, 0, true},
		{"nan velocity", 40, math.NaN(), 0, true},
		{"tiny velocity caps", 1_000_000, 1e-9, math.MaxInt32, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Project(record("p", tc.stock, 1, 2, 3, tc.velocity))
			days, bounded := p.DaysRemaining()
			if bounded == tc.unbounded {
				t.Fatalf("expected unbounded=%v, got projection %s", tc.unbounded, p)
			}
			if !tc.unbounded && days != tc.days {
				t.Errorf("expected %d days, got %d", tc.days, days)
			}
		})
	}
}

func TestStockoutProjection_JSON(t *testing.T) {
	for _, p := range []StockoutProjection{Unbounded(), DaysLeft(0), DaysLeft(12)} {
		payload, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal %s: %v", p, err)
		}
		var decoded StockoutProjection
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", payload, err)
		}
		if decoded != p {
			t.Errorf("expected %s after round trip, got %s", p, decoded)
		}
	}

	if string(mustJSON(t, Unbounded())) != `"unbounded"` {
		t.Errorf("unexpected unbounded encoding %s", mustJSON(t, Unbounded()))
	}

	var p StockoutProjection
	if err := json.Unmarshal([]byte(`"forever"`), &p); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestAdvise(t *testing.T) {
	engine := NewEngine(DefaultPolicy())

	t.Run("out of stock is urgent", func(t *testing.T) {
		rec := record("1", 0, 30, 50, 200, 3.8)
		got := engine.Advise(rec, Project(rec), 5)
		if !got.ShouldReorder || got.Urgency != UrgencyUrgent {
			t.Fatalf("expected urgent reorder, got %+v", got)
		}
		if got.SuggestedQty != 200 {
			t.Errorf("expected qty 200, got %d", got.SuggestedQty)
		}
	})

	t.Run("healthy item is left alone", func(t *testing.T) {
		rec := record("2", 180, 50, 100, 400, 5.2)
		rec.ReorderQty = 150
		got := engine.Advise(rec, Project(rec), 7)
		if got.ShouldReorder || got.SuggestedQty != 0 || got.Urgency != UrgencyNone {
			t.Fatalf("expected no reorder, got %+v", got)
		}
		if !got.EstimatedCost.IsZero() {
			t.Errorf("expected zero cost, got %s", got.EstimatedCost)
		}
	})

	t.Run("both rules fire", func(t *testing.T) {
		rec := record("3", 15, 20, 30, 100, 4.2)
		rec.ReorderQty = 40
		rec.UnitCost = decimal.RequireFromString("1.25")
		got := engine.Advise(rec, Project(rec), 7)
		if !got.ShouldReorder || got.Urgency != UrgencyUrgent || got.SuggestedQty != 85 {
			t.Fatalf("expected urgent reorder of 85, got %+v", got)
		}
		if !got.EstimatedCost.Equal(decimal.RequireFromString("106.25")) {
			t.Errorf("expected cost 106.25, got %s", got.EstimatedCost)
		}
	})

	t.Run("reorder point boundary is inclusive", func(t *testing.T) {
		rec := record("4", 50, 30, 50, 200, 0)
		got := engine.Advise(rec, Project(rec), 3)
		if !got.ShouldReorder {
			t.Fatal("expected reorder at the reorder point")
		}
		if got.Urgency != UrgencyPlanned {
			t.Errorf("expected planned urgency for unbounded runway, got %s", got.Urgency)
		}
	})

	t.Run("lead time trigger above reorder point", func(t *testing.T) {
		rec := record("5", 60, 10, 20, 100, 10) // 6 days left
		got := engine.Advise(rec, Project(rec), 6)
		if !got.ShouldReorder || got.Urgency != UrgencySoon {
			t.Fatalf("expected soon reorder, got %+v", got)
		}
		if got := engine.Advise(rec, Project(rec), 5); got.ShouldReorder {
			t.Errorf("expected no reorder with a shorter lead time, got %+v", got)
		}
	})

	t.Run("unbounded never triggers on lead time", func(t *testing.T) {
		rec := record("6", 60, 10, 20, 100, 0)
		if got := engine.Advise(rec, Project(rec), 10_000); got.ShouldReorder {
			t.Errorf("expected no reorder, got %+v", got)
		}
	})

	t.Run("reorder qty floor", func(t *testing.T) {
		rec := record("7", 95, 10, 100, 100, 1)
		rec.ReorderQty = 25
		got := engine.Advise(rec, Project(rec), 0)
		if got.SuggestedQty != 25 {
			t.Errorf("expected batch floor of 25, got %d", got.SuggestedQty)
		}
	})

	t.Run("negative unit cost valued at zero", func(t *testing.T) {
		rec := record("8", 0, 10, 20, 100, 1)
		rec.UnitCost = decimal.NewFromInt(-3)
		got := engine.Advise(rec, Project(rec), 0)
		if !got.EstimatedCost.IsZero() {
			t.Errorf("expected zero cost, got %s", got.EstimatedCost)
		}
	})
}

func TestAdvise_SuggestedQtyFloor(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	for stock := -5; stock <= 250; stock += 5 {
		rec := record("q", stock, 20, 60, 200, 4)
		rec.ReorderQty = 35
		got := engine.Advise(rec, Project(rec), 7)
		if got.ShouldReorder && got.SuggestedQty < rec.ReorderQty {
			t.Fatalf("stock %d: qty %d below batch %d", stock, got.SuggestedQty, rec.ReorderQty)
		}
	}
}

func TestNewEngine_NormalizesPolicy(t *testing.T) {
	testCases := []struct {
		name   string
		policy Policy
		expect Policy
	}{
		{"zero value", Policy{}, DefaultPolicy()},
		{"inverted tiers", Policy{UrgentWithinDays: 10, SoonWithinDays: 5}, DefaultPolicy()},
		{"custom tiers", Policy{UrgentWithinDays: 2, SoonWithinDays: 14}, Policy{UrgentWithinDays: 2, SoonWithinDays: 14}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewEngine(tc.policy).Policy(); got != tc.expect {
				t.Errorf("expected %+v, got %+v", tc.expect, got)
			}
		})
	}
}

func TestGenerateAlerts(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	records := []domain.InventoryRecord{
		record("healthy", 180, 50, 100, 400, 5.2),
		record("low-1", 40, 30, 50, 200, 2),
		record("empty", 0, 30, 50, 200, 3.8),
		record("low-2", 45, 30, 50, 200, 0),
		record("critical", 15, 20, 30, 100, 4.2),
		record("stale", 5, 20, 30, 100, 0),
	}

	alerts := engine.GenerateAlerts(records)

	wantOrder := []string{"empty", "critical", "stale", "low-1", "low-2"}
	if len(alerts) != len(wantOrder) {
		t.Fatalf("expected %d alerts, got %d", len(wantOrder), len(alerts))
	}
	for i, id := range wantOrder {
		if alerts[i].ItemID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, alerts[i].ItemID)
		}
	}

	if alerts[0].Kind != KindOutOfStock || alerts[0].Severity != SeverityCritical {
		t.Errorf("unexpected out of stock alert %+v", alerts[0])
	}
	if alerts[1].Kind != KindLowStock || !strings.Contains(alerts[1].Message, "about 3 days remaining") {
		t.Errorf("unexpected critical alert %+v", alerts[1])
	}
	if !strings.Contains(alerts[2].Message, "no recent sales") {
		t.Errorf("expected unbounded runway message, got %q", alerts[2].Message)
	}
	if alerts[3].Kind != KindBelowReorderPoint || alerts[3].Severity != SeverityWarning {
		t.Errorf("unexpected low stock alert %+v", alerts[3])
	}
}

func TestGenerateAlerts_CriticalBeforeWarning(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	var records []domain.InventoryRecord
	for stock := 0; stock < 60; stock++ {
		records = append(records, record("r", 59-stock, 20, 40, 100, 1))
	}

	alerts := engine.GenerateAlerts(records)
	seenWarning := false
	for _, a := range alerts {
		if a.Severity == SeverityWarning {
			seenWarning = true
		}
		if a.Severity == SeverityCritical && seenWarning {
			t.Fatal("critical alert found after a warning")
		}
	}
}

func TestGenerateAlerts_Empty(t *testing.T) {
	alerts := NewEngine(DefaultPolicy()).GenerateAlerts(nil)
	if alerts == nil || len(alerts) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", alerts)
	}
}

func TestConsolidate(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	planned := record("p1", 45, 30, 50, 200, 0) // reorder point only
	planned.SupplierID = "acme"
	urgent := record("u1", 2, 30, 50, 200, 1)
	urgent.SupplierID = "acme"
	otherPlanned := record("o1", 48, 30, 50, 100, 0)
	otherPlanned.SupplierID = "globex"
	healthy := record("h1", 180, 50, 100, 400, 5.2)
	healthy.SupplierID = "globex"
	orphan := record("x1", 0, 5, 10, 20, 1)
	orphan.SupplierID = "missing"
	orphan.LeadTimeDays = 9

	leadTimes := LeadTimes{"acme": 5, "globex": 12}
	records := []domain.InventoryRecord{otherPlanned, planned, healthy, urgent, orphan}

	orders := engine.Consolidate(records, leadTimes, now)
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}

	// acme and the unassigned bucket both hold urgent lines; acme appears first in the input.
	if orders[0].SupplierID != "acme" || orders[1].SupplierID != UnassignedSupplierID || orders[2].SupplierID != "globex" {
		t.Fatalf("unexpected order sequence %s, %s, %s", orders[0].SupplierID, orders[1].SupplierID, orders[2].SupplierID)
	}

	acme := orders[0]
	if len(acme.Lines) != 2 || acme.Lines[0].ItemID != "p1" || acme.Lines[1].ItemID != "u1" {
		t.Fatalf("expected acme lines p1, u1 in input order, got %+v", acme.Lines)
	}
	if acme.Urgency != UrgencyUrgent {
		t.Errorf("expected acme urgency urgent, got %s", acme.Urgency)
	}
	// p1: max(10, 155) = 155, u1: max(10, 198) = 198, at 2 each.
	if !acme.EstimatedTotal.Equal(decimal.NewFromInt(706)) {
		t.Errorf("expected total 706, got %s", acme.EstimatedTotal)
	}
	if !acme.ExpectedDeliveryDate.Equal(now.AddDate(0, 0, 5)) {
		t.Errorf("unexpected delivery date %s", acme.ExpectedDeliveryDate)
	}

	unassigned := orders[1]
	if !unassigned.Unassigned || len(unassigned.Lines) != 1 || unassigned.Lines[0].ItemID != "x1" {
		t.Errorf("unexpected unassigned bucket %+v", unassigned)
	}
	if !unassigned.ExpectedDeliveryDate.Equal(now.AddDate(0, 0, 9)) {
		t.Errorf("expected unassigned delivery to use record lead time, got %s", unassigned.ExpectedDeliveryDate)
	}

	if orders[2].Urgency != UrgencyPlanned || len(orders[2].Lines) != 1 {
		t.Errorf("unexpected globex order %+v", orders[2])
	}
}

func TestConsolidate_Completeness(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	leadTimes := LeadTimes{"a": 3, "b": 10}
	suppliers := []string{"a", "b", "", "zzz"}

	var records []domain.InventoryRecord
	for i := 0; i < 80; i++ {
		rec := record(string(rune('A'+i%26))+string(rune('0'+i%10)), (i*7)%120, 20, 50, 150, float64(i%6))
		rec.SupplierID = suppliers[i%len(suppliers)]
		rec.LeadTimeDays = i % 4
		records = append(records, rec)
	}

	expected := 0
	for _, ev := range engine.Evaluate(records, leadTimes) {
		if ev.Suggestion.ShouldReorder {
			expected++
		}
	}

	lines := 0
	for _, order := range engine.Consolidate(records, leadTimes, time.Unix(0, 0)) {
		lines += len(order.Lines)
	}
	if lines != expected {
		t.Errorf("expected %d lines, got %d", expected, lines)
	}
}

func TestConsolidate_EmptyAndNoSuppliers(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	if orders := engine.Consolidate(nil, nil, time.Now()); orders == nil || len(orders) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", orders)
	}

	rec := record("n", 0, 1, 2, 3, 1)
	rec.SupplierID = "acme"
	orders := engine.Consolidate([]domain.InventoryRecord{rec}, nil, time.Now())
	if len(orders) != 1 || !orders[0].Unassigned {
		t.Errorf("expected a single unassigned order, got %+v", orders)
	}
}

func TestIdempotence(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	records := []domain.InventoryRecord{
		record("1", 0, 30, 50, 200, 3.8),
		record("2", 40, 30, 50, 200, 2),
		record("3", 15, 20, 30, 100, 4.2),
	}
	records[0].SupplierID = "s1"
	records[1].SupplierID = "s2"
	leadTimes := LeadTimes{"s1": 4, "s2": 8}

	first := mustJSON(t, engine.Consolidate(records, leadTimes, now))
	second := mustJSON(t, engine.Consolidate(records, leadTimes, now))
	if !bytes.Equal(first, second) {
		t.Errorf("consolidate is not idempotent:\n%s\n%s", first, second)
	}

	if !bytes.Equal(mustJSON(t, engine.GenerateAlerts(records)), mustJSON(t, engine.GenerateAlerts(records))) {
		t.Error("generate alerts is not idempotent")
	}
}

func TestConsolidate_DraftIDs(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	leadTimes := LeadTimes{"sup": 5}

	storeItem := func(id string, storeID int64) domain.InventoryRecord {
		rec := record(id, 0, 5, 10, 40, 1)
		rec.SupplierID = "sup"
		rec.StoreID = storeID
		return rec
	}

	store1 := engine.Consolidate([]domain.InventoryRecord{storeItem("store1-item", 1)}, leadTimes, now)
	store2 := engine.Consolidate([]domain.InventoryRecord{storeItem("store2-item", 2)}, leadTimes, now)
	if len(store1) != 1 || len(store2) != 1 {
		t.Fatalf("expected one draft per store, got %d and %d", len(store1), len(store2))
	}
	if store1[0].ID == store2[0].ID {
		t.Errorf("drafts over different items share ID %s", store1[0].ID)
	}

	again := engine.Consolidate([]domain.InventoryRecord{storeItem("store1-item", 1)}, leadTimes, now)
	if again[0].ID != store1[0].ID {
		t.Errorf("same input gave different IDs %s and %s", store1[0].ID, again[0].ID)
	}

	// Line order does not affect the ID.
	ab := engine.Consolidate([]domain.InventoryRecord{storeItem("a", 1), storeItem("b", 1)}, leadTimes, now)
	ba := engine.Consolidate([]domain.InventoryRecord{storeItem("b", 1), storeItem("a", 1)}, leadTimes, now)
	if ab[0].ID != ba[0].ID {
		t.Errorf("expected ID independent of line order, got %s and %s", ab[0].ID, ba[0].ID)
	}

	later := engine.Consolidate([]domain.InventoryRecord{storeItem("store1-item", 1)}, leadTimes, now.Add(time.Second))
	if later[0].ID == store1[0].ID {
		t.Error("expected a new ID for a later evaluation")
	}
}

func TestSummarize(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	records := []domain.InventoryRecord{
		record("1", 0, 30, 50, 200, 3.8),
		record("2", 40, 30, 50, 200, 2),
		record("3", 180, 50, 100, 400, 5.2),
	}

	s := engine.Summarize(records, nil)
	if s.TotalItems != 3 || s.CriticalAlerts != 1 || s.WarningAlerts != 1 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.ByStatus[StatusHealthy] != 1 || s.ByStatus[StatusOutOfStock] != 1 {
		t.Errorf("unexpected status breakdown %v", s.ByStatus)
	}
	if s.ReorderCount != 2 {
		t.Errorf("expected 2 reorders, got %d", s.ReorderCount)
	}
	// 200 + 160 units at 2 each
	if !s.ReorderValue.Equal(decimal.NewFromInt(720)) {
		t.Errorf("expected reorder value 720, got %s", s.ReorderValue)
	}

	payload := mustJSON(t, s)
	if !strings.Contains(string(payload), `"out_of_stock":1`) {
		t.Errorf("expected text keys in summary json, got %s", payload)
	}
}

func TestEnumText(t *testing.T) {
	var sev Severity
	if err := sev.UnmarshalText([]byte("Warning")); err != nil || sev != SeverityWarning {
		t.Errorf("expected warning, got %s (%v)", sev, err)
	}
	var u Urgency
	if err := u.UnmarshalText([]byte("later")); err == nil {
		t.Error("expected error for unknown urgency")
	}
	if CompareSeverity(SeverityCritical, SeverityInfo) >= 0 {
		t.Error("critical must sort before info")
	}
	if Urgency(42).String() != "unknown" {
		t.Error("expected unknown for out of range urgency")
	}
}

func TestLeadTimesFromSuppliers(t *testing.T) {
	lt := LeadTimesFromSuppliers([]domain.Supplier{
		{ID: "a", LeadTimeDays: 4},
		{ID: "", LeadTimeDays: 9},
		{ID: "b", LeadTimeDays: -2},
	})
	if len(lt) != 2 || lt["a"] != 4 || lt["b"] != 0 {
		t.Errorf("unexpected lead times %v", lt)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return payload
}
