package domain

import "github.com/shopspring/decimal"

// InventoryRecord is a single item in an inventory snapshot.
type InventoryRecord struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	SKU           string          `json:"sku" db:"sku"`
	StoreID       int64           `json:"store_id" db:"store_id"`
	CurrentStock  int             `json:"current_stock" db:"current_stock"`
	MinStock      int             `json:"min_stock" db:"min_stock"`
	MaxStock      int             `json:"max_stock" db:"max_stock"`
	ReorderPoint  int             `json:"reorder_point" db:"reorder_point"`
	ReorderQty    int             `json:"reorder_qty" db:"reorder_qty"`
	AvgDailySales float64         `json:"avg_daily_sales" db:"avg_daily_sales"`
	UnitCost      decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	SupplierID    string          `json:"supplier_id" db:"supplier_id"`
	LeadTimeDays  int             `json:"lead_time_days" db:"lead_time_days"`
}

// Supplier holds the procurement metadata the engine needs for a supplier.
type Supplier struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	LeadTimeDays int    `json:"lead_time_days" db:"lead_time_days"`
}

// InventoryFilter narrows an inventory snapshot query
type InventoryFilter struct {
	StoreIDs    []int64  `json:"store_ids"`
	SupplierIDs []string `json:"supplier_ids"`
	SKUs        []string `json:"skus"`
}
