// Package report renders order listings for terminals.
package report

import (
	"fmt"
	"io"
	"strconv"

	"food-delivery/internal/models"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// RenderOrders writes orders as a table followed by the order count and revenue
func RenderOrders(w io.Writer, orders []models.OrderSummary) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders yet.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Order ID", "Customer", "Restaurant", "Status", "Total", "Created At")

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.TotalAmount)
		err := table.Append([]string{
			strconv.FormatInt(o.OrderID, 10),
			o.CustomerName,
			o.RestaurantName,
			string(o.Status),
			o.TotalAmount.StringFixed(2),
			o.CreatedAt.UTC().Format("2006-01-02 15:04"),
		})
		if err != nil {
			return fmt.Errorf("append order %d: %w", o.OrderID, err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("render orders: %w", err)
	}

	_, err := fmt.Fprintf(w, "%d orders, revenue %s\n", len(orders), revenue.StringFixed(2))
	return err
}
