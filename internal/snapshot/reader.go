package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for snapshot files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// Inventory snapshot columns. Headers are matched case-insensitively and
// spaces or dashes are treated as underscores.
const (
	colID            = "id"
	colName          = "name"
	colSKU           = "sku"
	colStoreID       = "store_id"
	colCurrentStock  = "current_stock"
	colMinStock      = "min_stock"
	colMaxStock      = "max_stock"
	colReorderPoint  = "reorder_point"
	colReorderQty    = "reorder_qty"
	colAvgDailySales = "avg_daily_sales"
	colUnitCost      = "unit_cost"
	colSupplierID    = "supplier_id"
	colLeadTimeDays  = "lead_time_days"
)

var requiredInventoryColumns = []string{colID, colCurrentStock}

// ReadInventoryFile loads an inventory snapshot from a .csv or .xlsx file.
func ReadInventoryFile(path string) ([]domain.InventoryRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
		}
		defer f.Close()
		return ReadInventoryCSV(f)
	case ".xlsx":
		return ReadInventoryXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadInventoryCSV parses an inventory snapshot with a header row.
func ReadInventoryCSV(r io.Reader) ([]domain.InventoryRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return parseInventoryRows(rows)
}

// ReadInventoryXLSX parses the first sheet of a workbook as an inventory snapshot.
func ReadInventoryXLSX(path string) ([]domain.InventoryRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	return parseInventoryRows(rows)
}

func parseInventoryRows(rows [][]string) ([]domain.InventoryRecord, error) {
	if len(rows) == 0 {
		return []domain.InventoryRecord{}, nil
	}

	header := indexHeader(rows[0])
	for _, col := range requiredInventoryColumns {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("snapshot is missing required column %q", col)
		}
	}

	records := make([]domain.InventoryRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		line := i + 2
		p := rowParser{header: header, row: row, line: line}
		rec := domain.InventoryRecord{
			ID:            p.str(colID),
			Name:          p.str(colName),
			SKU:           p.str(colSKU),
			StoreID:       p.int64Cell(colStoreID),
			CurrentStock:  p.intCell(colCurrentStock),
			MinStock:      p.intCell(colMinStock),
			MaxStock:      p.intCell(colMaxStock),
			ReorderPoint:  p.intCell(colReorderPoint),
			ReorderQty:    p.intCell(colReorderQty),
			AvgDailySales: p.floatCell(colAvgDailySales),
			UnitCost:      p.decimalCell(colUnitCost),
			SupplierID:    p.str(colSupplierID),
			LeadTimeDays:  p.intCell(colLeadTimeDays),
		}
		if p.err != nil {
			return nil, p.err
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, colID)
		}
		records = append(records, rec)
	}

	return records, nil
}

// ReadSuppliersCSV parses supplier metadata with id, name and lead_time_days columns.
func ReadSuppliersCSV(r io.Reader) ([]domain.Supplier, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read suppliers csv: %w", err)
	}
	if len(rows) == 0 {
		return []domain.Supplier{}, nil
	}

	header := indexHeader(rows[0])
	for _, col := range []string{colID, colLeadTimeDays} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("suppliers csv is missing required column %q", col)
		}
	}

	suppliers := make([]domain.Supplier, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		p := rowParser{header: header, row: row, line: i + 2}
		s := domain.Supplier{
			ID:           p.str(colID),
			Name:         p.str(colName),
			LeadTimeDays: p.intCell(colLeadTimeDays),
		}
		if p.err != nil {
			return nil, p.err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, nil
}

func indexHeader(row []string) map[string]int {
	header := make(map[string]int, len(row))
	for i, name := range row {
		key := normalizeColumn(name)
		if key == "" {
			continue
		}
		if _, dup := header[key]; !dup {
			header[key] = i
		}
	}
	return header
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// rowParser reads typed cells from one row and keeps the first error.
type rowParser struct {
	header map[string]int
	row    []string
	line   int
	err    error
}

func (p *rowParser) str(col string) string {
	i, ok := p.header[col]
	if !ok || i >= len(p.row) {
		return ""
	}
	return strings.TrimSpace(p.row[i])
}

func (p *rowParser) intCell(col string) int {
	raw := p.str(col)
	if raw == "" || p.err != nil {
		return 0
	}
	// Spreadsheets often export whole numbers as "12.0".
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.err = fmt.Errorf("line %d: invalid %s %q: %w", p.line, col, raw, err)
		return 0
	}
	return int(v)
}

func (p *rowParser) int64Cell(col string) int64 {
	raw := p.str(col)
	if raw == "" || p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.err = fmt.Errorf("line %d: invalid %s %q: %w", p.line, col, raw, err)
		return 0
	}
	return v
}

func (p *rowParser) floatCell(col string) float64 {
	raw := p.str(col)
	if raw == "" || p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.err = fmt.Errorf("line %d: invalid %s %q: %w", p.line, col, raw, err)
		return 0
	}
	return v
}

func (p *rowParser) decimalCell(col string) decimal.Decimal {
	raw := p.str(col)
	if raw == "" || p.err != nil {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		p.err = fmt.Errorf("line %d: invalid %s %q: %w", p.line, col, raw, err)
		return decimal.Zero
	}
	return v
}
