package replenishment

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

const unboundedLabel = "unbounded"

// StockoutProjection estimates the whole days left before an item runs out.
// The zero value is a projection of zero days.
type StockoutProjection struct {
	days      int
	unbounded bool
}

// Unbounded is the projection for an item that is not selling.
func Unbounded() StockoutProjection {
	return StockoutProjection{unbounded: true}
}

// DaysLeft returns a bounded projection, clamping negatives to zero.
func DaysLeft(days int) StockoutProjection {
	return StockoutProjection{days: max(days, 0)}
}

// DaysRemaining returns the projected days and false when the projection is unbounded.
func (p StockoutProjection) DaysRemaining() (int, bool) {
	if p.unbounded {
		return 0, false
	}
	return p.days, true
}

// IsUnbounded reports whether the item has no sales velocity.
func (p StockoutProjection) IsUnbounded() bool {
	return p.unbounded
}

// Within reports whether the item runs out within the given number of days.
// An unbounded projection is never within any horizon.
func (p StockoutProjection) Within(days int) bool {
	return !p.unbounded && p.days <= days
}

func (p StockoutProjection) String() string {
	if p.unbounded {
		return unboundedLabel
	}
	return strconv.Itoa(p.days)
}

// MarshalJSON encodes the projection as an integer or the string "unbounded".
func (p StockoutProjection) MarshalJSON() ([]byte, error) {
	if p.unbounded {
		return json.Marshal(unboundedLabel)
	}
	return json.Marshal(p.days)
}

func (p *StockoutProjection) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		if label != unboundedLabel {
			return fmt.Errorf("invalid stockout projection %q", label)
		}
		*p = Unbounded()
		return nil
	}

	var days int
	if err := json.Unmarshal(data, &days); err != nil {
		return fmt.Errorf("invalid stockout projection: %w", err)
	}
	*p = DaysLeft(days)
	return nil
}

// Project applies a linear depletion model: floor(stock / avgDailySales).
// Zero, negative or NaN velocity yields Unbounded.
func Project(record domain.InventoryRecord) StockoutProjection {
	velocity := record.AvgDailySales
	if math.IsNaN(velocity) || velocity <= 0 {
		return Unbounded()
	}

	days := math.Floor(float64(clampedStock(record)) / velocity)
	if days >= math.MaxInt32 {
		return DaysLeft(math.MaxInt32)
	}
	return DaysLeft(int(days))
}
