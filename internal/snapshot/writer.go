package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
)

const deliveryDateLayout = "2006-01-02"

// WriteDraftsCSV writes one row per draft order line.
func WriteDraftsCSV(w io.Writer, orders []replenishment.DraftPurchaseOrder) error {
	writer := csv.NewWriter(w)

	header := []string{
		"Draft ID", "Supplier", "Unassigned", "Expected Delivery", "Order Urgency",
		"Item ID", "SKU", "Name", "Quantity", "Unit Cost", "Line Total", "Line Urgency", "Order Total",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, order := range orders {
		for _, line := range order.Lines {
			record := []string{
				order.ID.String(),
				order.SupplierID,
				strconv.FormatBool(order.Unassigned),
				order.ExpectedDeliveryDate.Format(deliveryDateLayout),
				order.Urgency.String(),
				line.ItemID,
				line.SKU,
				line.Name,
				strconv.Itoa(line.Quantity),
				line.UnitCost.StringFixed(2),
				line.LineTotal.StringFixed(2),
				line.Urgency.String(),
				order.EstimatedTotal.StringFixed(2),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteAlertsTable renders alerts as an aligned plain-text table.
func WriteAlertsTable(w io.Writer, alerts []replenishment.StockAlert) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tKIND\tITEM\tMESSAGE")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Severity, a.Kind, a.ItemID, a.Message)
	}
	return tw.Flush()
}

// WriteSummary renders dashboard counters as plain text.
func WriteSummary(w io.Writer, s replenishment.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "items\t%d\n", s.TotalItems)
	for _, status := range []replenishment.StockStatus{
		replenishment.StatusOutOfStock,
		replenishment.StatusCritical,
		replenishment.StatusLow,
		replenishment.StatusHealthy,
	} {
		fmt.Fprintf(tw, "%s\t%d\n", status, s.ByStatus[status])
	}
	fmt.Fprintf(tw, "reorders\t%d\n", s.ReorderCount)
	for _, u := range []replenishment.Urgency{replenishment.UrgencyUrgent, replenishment.UrgencySoon, replenishment.UrgencyPlanned} {
		fmt.Fprintf(tw, "  %s\t%d\n", u, s.ReorderByUrgency[u])
	}
	fmt.Fprintf(tw, "reorder value\t%s\n", s.ReorderValue.StringFixed(2))
	return tw.Flush()
}
